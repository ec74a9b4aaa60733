package service

import (
	"context"

	"movierec.app/models"
)

// RecommendationServiceInterface defines the consumer-facing recommendation operations
type RecommendationServiceInterface interface {
	GetRecommendations(ctx context.Context, userID uint, limit int) *models.RecommendationsResponse
	GetSimilarMovies(ctx context.Context, movieID, limit int) *models.RecommendationsResponse
	GetCollaborativeRecommendations(ctx context.Context, userID uint, limit int) *models.RecommendationsResponse
	CheckMLHealth() map[string]interface{}
}

// PreferenceServiceInterface defines preference mutation operations
type PreferenceServiceInterface interface {
	LikeMovie(userID uint, movieID int) error
	UnlikeMovie(userID uint, movieID int) error
	RateMovie(userID uint, movieID int, rating float64) error
	RemoveRating(userID uint, movieID int) error
	AddComment(userID uint, movieID int, content string) (*models.Comment, error)
	GetComments(movieID int) ([]models.Comment, error)
}

// Invalidator purges a user's cached recommendation entries
type Invalidator interface {
	InvalidateUser(userID uint)
}

// RatingRepositoryInterface defines rating data access used by services
type RatingRepositoryInterface interface {
	FindByUser(userID uint) ([]models.Rating, error)
	Upsert(userID uint, movieID int, value float64) (*models.Rating, error)
	Delete(userID uint, movieID int) error
}

// LikeRepositoryInterface defines like data access used by services
type LikeRepositoryInterface interface {
	FindMovieIDsByUser(userID uint) ([]int, error)
	Exists(userID uint, movieID int) (bool, error)
	Create(userID uint, movieID int) error
	Delete(userID uint, movieID int) error
}

// CommentRepositoryInterface defines comment data access used by services
type CommentRepositoryInterface interface {
	Create(comment *models.Comment) error
	FindByMovie(movieID int) ([]models.Comment, error)
}
