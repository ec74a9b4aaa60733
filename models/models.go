// Package models defines data structures used throughout the application
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Username  string         `json:"username" gorm:"uniqueIndex;not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Rating represents a user's numeric rating for a movie
type Rating struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index:idx_ratings_user_movie,unique;not null"`
	MovieID   int            `json:"movie_id" gorm:"index:idx_ratings_user_movie,unique;not null"`
	Rating    float64        `json:"rating" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Like represents a user's like of a movie
type Like struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index:idx_likes_user_movie,unique;not null"`
	MovieID   int            `json:"movie_id" gorm:"index:idx_likes_user_movie,unique;not null"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Comment represents a user's comment on a movie
type Comment struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	MovieID   int            `json:"movie_id" gorm:"index;not null"`
	Content   string         `json:"content" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Scoring method tags attached to every ScoringResult
const (
	MethodHybrid            = "hybrid"
	MethodFallback          = "fallback"
	MethodNoData            = "no_data"
	MethodContentSimilarity = "content_similarity"
	MethodCollaborative     = "collaborative_filtering"
)

// ScoringResult is a ranked list of movie ids with index-aligned scores.
// Scores[i] always corresponds to MovieIDs[i].
type ScoringResult struct {
	MovieIDs []int     `json:"movie_ids"`
	Scores   []float64 `json:"scores"`
	Method   string    `json:"method"`
}

// EnrichedMovie is a movie detail payload from the metadata service with a
// score field attached under a caller-chosen name.
type EnrichedMovie map[string]interface{}

// Score field names used when enriching ranked results
const (
	ScoreFieldRecommendation = "recommendation_score"
	ScoreFieldSimilarity     = "similarity_score"
	ScoreFieldPredicted      = "predicted_rating"
)

// RatingRequest represents data required to rate a movie
type RatingRequest struct {
	Rating float64 `json:"rating" binding:"required,rating_range"`
}

// CommentRequest represents data required to comment on a movie
type CommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// RecommendationsResponse is the enriched payload returned to consumers
type RecommendationsResponse struct {
	Movies []EnrichedMovie `json:"movies"`
	Count  int             `json:"count"`
	Method string          `json:"method"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
