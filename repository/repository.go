// Package repository implements data access layer for the application
package repository

import (
	"errors"
	"log"

	"gorm.io/gorm"
	"movierec.app/models"
)

// RatingRepository handles data access operations for movie ratings
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new repository for rating data
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// FindByUser retrieves all ratings stored for a user
func (r *RatingRepository) FindByUser(userID uint) ([]models.Rating, error) {
	log.Printf("[DEBUG] RatingRepository.FindByUser: userID=%d\n", userID)

	var ratings []models.Rating
	result := r.db.Where("user_id = ?", userID).Find(&ratings)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding ratings: %v\n", result.Error)
		return nil, result.Error
	}

	return ratings, nil
}

// FindByUserAndMovie retrieves a single rating, or nil when none exists
func (r *RatingRepository) FindByUserAndMovie(userID uint, movieID int) (*models.Rating, error) {
	var rating models.Rating
	result := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&rating)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding rating: %v\n", result.Error)
		return nil, result.Error
	}

	return &rating, nil
}

// Upsert creates a rating or updates the existing one for the same user/movie pair
func (r *RatingRepository) Upsert(userID uint, movieID int, value float64) (*models.Rating, error) {
	log.Printf("[DEBUG] RatingRepository.Upsert: userID=%d, movieID=%d, rating=%.1f\n", userID, movieID, value)

	existing, err := r.FindByUserAndMovie(userID, movieID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Rating = value
		if result := r.db.Save(existing); result.Error != nil {
			return nil, result.Error
		}
		return existing, nil
	}

	rating := models.Rating{
		UserID:  userID,
		MovieID: movieID,
		Rating:  value,
	}
	if result := r.db.Create(&rating); result.Error != nil {
		return nil, result.Error
	}

	return &rating, nil
}

// Delete removes a user's rating for a movie
func (r *RatingRepository) Delete(userID uint, movieID int) error {
	result := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&models.Rating{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when deleting rating: %v\n", result.Error)
		return result.Error
	}
	return nil
}

// CountByUser returns the number of ratings stored for a user
func (r *RatingRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	result := r.db.Model(&models.Rating{}).Where("user_id = ?", userID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// LikeRepository handles data access operations for movie likes
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository for like data
func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// FindMovieIDsByUser retrieves the ids of all movies liked by a user
func (r *LikeRepository) FindMovieIDsByUser(userID uint) ([]int, error) {
	log.Printf("[DEBUG] LikeRepository.FindMovieIDsByUser: userID=%d\n", userID)

	var movieIDs []int
	result := r.db.Model(&models.Like{}).Where("user_id = ?", userID).Pluck("movie_id", &movieIDs)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding likes: %v\n", result.Error)
		return nil, result.Error
	}

	return movieIDs, nil
}

// Exists reports whether a user has liked a movie
func (r *LikeRepository) Exists(userID uint, movieID int) (bool, error) {
	var count int64
	result := r.db.Model(&models.Like{}).Where("user_id = ? AND movie_id = ?", userID, movieID).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// Create persists a new like
func (r *LikeRepository) Create(userID uint, movieID int) error {
	log.Printf("[DEBUG] LikeRepository.Create: userID=%d, movieID=%d\n", userID, movieID)

	like := models.Like{
		UserID:  userID,
		MovieID: movieID,
	}
	result := r.db.Create(&like)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating like: %v\n", result.Error)
		return result.Error
	}
	return nil
}

// Delete removes a user's like for a movie
func (r *LikeRepository) Delete(userID uint, movieID int) error {
	result := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&models.Like{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when deleting like: %v\n", result.Error)
		return result.Error
	}
	return nil
}

// CommentRepository handles data access operations for movie comments
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new repository for comment data
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create persists a new comment
func (r *CommentRepository) Create(comment *models.Comment) error {
	log.Printf("[DEBUG] CommentRepository.Create: %+v\n", comment)

	result := r.db.Create(comment)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating comment: %v\n", result.Error)
		return result.Error
	}
	return nil
}

// FindByMovie retrieves comments for a movie, newest first
func (r *CommentRepository) FindByMovie(movieID int) ([]models.Comment, error) {
	var comments []models.Comment
	result := r.db.Where("movie_id = ?", movieID).Order("created_at DESC").Find(&comments)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding comments: %v\n", result.Error)
		return nil, result.Error
	}
	return comments, nil
}
