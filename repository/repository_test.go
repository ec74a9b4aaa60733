package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"movierec.app/models"
)

// Setup test database with in-memory SQLite
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Rating{}, &models.Like{}, &models.Comment{})
	assert.NoError(t, err)

	return db
}

func TestRatingRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRatingRepository(db)

	t.Run("FindByUser_Empty", func(t *testing.T) {
		ratings, err := repo.FindByUser(1)
		assert.NoError(t, err)
		assert.Empty(t, ratings)
	})

	t.Run("Upsert_CreatesNewRating", func(t *testing.T) {
		rating, err := repo.Upsert(1, 550, 4.5)
		assert.NoError(t, err)
		assert.NotNil(t, rating)
		assert.Equal(t, 4.5, rating.Rating)

		ratings, err := repo.FindByUser(1)
		assert.NoError(t, err)
		assert.Len(t, ratings, 1)
		assert.Equal(t, 550, ratings[0].MovieID)
	})

	t.Run("Upsert_UpdatesExistingRating", func(t *testing.T) {
		rating, err := repo.Upsert(1, 550, 3.0)
		assert.NoError(t, err)
		assert.Equal(t, 3.0, rating.Rating)

		ratings, err := repo.FindByUser(1)
		assert.NoError(t, err)
		assert.Len(t, ratings, 1)
		assert.Equal(t, 3.0, ratings[0].Rating)
	})

	t.Run("CountByUser", func(t *testing.T) {
		_, err := repo.Upsert(1, 278, 5.0)
		assert.NoError(t, err)

		count, err := repo.CountByUser(1)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)

		count, err = repo.CountByUser(99)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Delete", func(t *testing.T) {
		err := repo.Delete(1, 550)
		assert.NoError(t, err)

		rating, err := repo.FindByUserAndMovie(1, 550)
		assert.NoError(t, err)
		assert.Nil(t, rating)
	})

	t.Run("Delete_NonExistent", func(t *testing.T) {
		err := repo.Delete(42, 999)
		assert.NoError(t, err)
	})
}

func TestLikeRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)

	t.Run("FindMovieIDsByUser_Empty", func(t *testing.T) {
		ids, err := repo.FindMovieIDsByUser(1)
		assert.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("CreateAndFind", func(t *testing.T) {
		assert.NoError(t, repo.Create(1, 550))
		assert.NoError(t, repo.Create(1, 278))
		assert.NoError(t, repo.Create(2, 680))

		ids, err := repo.FindMovieIDsByUser(1)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []int{550, 278}, ids)
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := repo.Exists(1, 550)
		assert.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.Exists(1, 999)
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.NoError(t, repo.Delete(1, 550))

		exists, err := repo.Exists(1, 550)
		assert.NoError(t, err)
		assert.False(t, exists)

		// other user's like untouched
		ids, err := repo.FindMovieIDsByUser(2)
		assert.NoError(t, err)
		assert.Equal(t, []int{680}, ids)
	})
}

func TestCommentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)

	t.Run("CreateAndFindByMovie", func(t *testing.T) {
		comment := &models.Comment{
			UserID:  1,
			MovieID: 550,
			Content: "A modern classic",
		}
		assert.NoError(t, repo.Create(comment))
		assert.NotZero(t, comment.ID)

		comments, err := repo.FindByMovie(550)
		assert.NoError(t, err)
		assert.Len(t, comments, 1)
		assert.Equal(t, "A modern classic", comments[0].Content)
	})

	t.Run("FindByMovie_Empty", func(t *testing.T) {
		comments, err := repo.FindByMovie(999)
		assert.NoError(t, err)
		assert.Empty(t, comments)
	})
}
