package recommender

import (
	"context"

	"movierec.app/models"
)

// MLClientInterface defines the raw wire operations against the ranking service
type MLClientInterface interface {
	GetRecommendations(userID uint, ratings []models.Rating, likedMovies []int, limit int) (*models.ScoringResult, error)
	GetSimilarMovies(movieID, limit int) (*models.ScoringResult, error)
	GetCollaborativeRecommendations(userID uint, ratings []models.Rating, limit int) (*models.ScoringResult, error)
	Health() (map[string]interface{}, error)
}

// PreferenceSource provides read access to a user's stored preference signals
type PreferenceSource interface {
	RatingsByUser(userID uint) ([]models.Rating, error)
	LikedMovieIDsByUser(userID uint) ([]int, error)
}

// MetadataProvider fetches descriptive movie metadata by id
type MetadataProvider interface {
	GetMovieDetails(ctx context.Context, movieID int) (models.EnrichedMovie, error)
}

// ScoringProvider is the consumer-facing contract of the scoring layer.
// Operations never return an error; degraded results carry an explanatory
// method tag instead.
type ScoringProvider interface {
	GetPersonalizedRecommendations(userID uint, limit int) *models.ScoringResult
	GetSimilarMovies(movieID, limit int) *models.ScoringResult
	GetCollaborativeRecommendations(userID uint, limit int) *models.ScoringResult
	InvalidateUser(userID uint)
	CheckHealth() map[string]interface{}
}
