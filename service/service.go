package service

import (
	"context"
	"log"

	"movierec.app/errors"
	"movierec.app/models"
	"movierec.app/recommender"
)

// RecommendationService orchestrates scoring and metadata enrichment
type RecommendationService struct {
	scoring    recommender.ScoringProvider
	aggregator *recommender.EnrichmentAggregator
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(scoring recommender.ScoringProvider, aggregator *recommender.EnrichmentAggregator) *RecommendationService {
	return &RecommendationService{
		scoring:    scoring,
		aggregator: aggregator,
	}
}

// GetRecommendations returns enriched personalized recommendations for a user
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID uint, limit int) *models.RecommendationsResponse {
	result := s.scoring.GetPersonalizedRecommendations(userID, limit)
	movies, count := s.aggregator.Enrich(ctx, result, models.ScoreFieldRecommendation)

	return &models.RecommendationsResponse{
		Movies: movies,
		Count:  count,
		Method: result.Method,
	}
}

// GetSimilarMovies returns enriched content-similar movies for a seed movie
func (s *RecommendationService) GetSimilarMovies(ctx context.Context, movieID, limit int) *models.RecommendationsResponse {
	result := s.scoring.GetSimilarMovies(movieID, limit)
	movies, count := s.aggregator.Enrich(ctx, result, models.ScoreFieldSimilarity)

	return &models.RecommendationsResponse{
		Movies: movies,
		Count:  count,
		Method: result.Method,
	}
}

// GetCollaborativeRecommendations returns enriched collaborative recommendations
func (s *RecommendationService) GetCollaborativeRecommendations(ctx context.Context, userID uint, limit int) *models.RecommendationsResponse {
	result := s.scoring.GetCollaborativeRecommendations(userID, limit)
	movies, count := s.aggregator.Enrich(ctx, result, models.ScoreFieldPredicted)

	return &models.RecommendationsResponse{
		Movies: movies,
		Count:  count,
		Method: result.Method,
	}
}

// CheckMLHealth reports the ranking service health status
func (s *RecommendationService) CheckMLHealth() map[string]interface{} {
	return s.scoring.CheckHealth()
}

// PreferenceService handles preference mutations and triggers cache invalidation
type PreferenceService struct {
	ratingRepo  RatingRepositoryInterface
	likeRepo    LikeRepositoryInterface
	commentRepo CommentRepositoryInterface
	invalidator Invalidator
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(
	ratingRepo RatingRepositoryInterface,
	likeRepo LikeRepositoryInterface,
	commentRepo CommentRepositoryInterface,
	invalidator Invalidator,
) *PreferenceService {
	return &PreferenceService{
		ratingRepo:  ratingRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		invalidator: invalidator,
	}
}

// LikeMovie records a like and invalidates the user's cached recommendations
func (s *PreferenceService) LikeMovie(userID uint, movieID int) error {
	log.Printf("[DEBUG] PreferenceService.LikeMovie: userID=%d, movieID=%d\n", userID, movieID)

	if movieID < 1 {
		return errors.NewValidationError("movie id must be positive")
	}

	exists, err := s.likeRepo.Exists(userID, movieID)
	if err != nil {
		return errors.NewDatabaseError("failed to check existing like", err)
	}
	if exists {
		return errors.NewAlreadyExistsError("movie already liked")
	}

	if err := s.likeRepo.Create(userID, movieID); err != nil {
		return errors.NewDatabaseError("failed to create like", err)
	}

	s.invalidator.InvalidateUser(userID)
	return nil
}

// UnlikeMovie removes a like and invalidates the user's cached recommendations
func (s *PreferenceService) UnlikeMovie(userID uint, movieID int) error {
	log.Printf("[DEBUG] PreferenceService.UnlikeMovie: userID=%d, movieID=%d\n", userID, movieID)

	if err := s.likeRepo.Delete(userID, movieID); err != nil {
		return errors.NewDatabaseError("failed to delete like", err)
	}

	s.invalidator.InvalidateUser(userID)
	return nil
}

// RateMovie stores a rating and invalidates the user's cached recommendations
func (s *PreferenceService) RateMovie(userID uint, movieID int, rating float64) error {
	log.Printf("[DEBUG] PreferenceService.RateMovie: userID=%d, movieID=%d, rating=%.1f\n", userID, movieID, rating)

	if movieID < 1 {
		return errors.NewValidationError("movie id must be positive")
	}
	if rating < 0.5 || rating > 5.0 {
		return errors.NewValidationError("rating must be between 0.5 and 5.0")
	}

	if _, err := s.ratingRepo.Upsert(userID, movieID, rating); err != nil {
		return errors.NewDatabaseError("failed to store rating", err)
	}

	s.invalidator.InvalidateUser(userID)
	return nil
}

// RemoveRating deletes a rating and invalidates the user's cached recommendations
func (s *PreferenceService) RemoveRating(userID uint, movieID int) error {
	log.Printf("[DEBUG] PreferenceService.RemoveRating: userID=%d, movieID=%d\n", userID, movieID)

	if err := s.ratingRepo.Delete(userID, movieID); err != nil {
		return errors.NewDatabaseError("failed to delete rating", err)
	}

	s.invalidator.InvalidateUser(userID)
	return nil
}

// AddComment stores a comment. Comments do not feed the ranking service, so no
// invalidation is triggered.
func (s *PreferenceService) AddComment(userID uint, movieID int, content string) (*models.Comment, error) {
	if movieID < 1 {
		return nil, errors.NewValidationError("movie id must be positive")
	}
	if content == "" {
		return nil, errors.NewValidationError("comment content cannot be empty")
	}

	comment := &models.Comment{
		UserID:  userID,
		MovieID: movieID,
		Content: content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, errors.NewDatabaseError("failed to create comment", err)
	}

	return comment, nil
}

// GetComments retrieves comments for a movie
func (s *PreferenceService) GetComments(movieID int) ([]models.Comment, error) {
	comments, err := s.commentRepo.FindByMovie(movieID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to load comments", err)
	}
	return comments, nil
}

// PreferenceAdapter exposes stored preference rows to the scoring layer
type PreferenceAdapter struct {
	ratingRepo RatingRepositoryInterface
	likeRepo   LikeRepositoryInterface
}

// NewPreferenceAdapter creates a preference source over the given repositories
func NewPreferenceAdapter(ratingRepo RatingRepositoryInterface, likeRepo LikeRepositoryInterface) *PreferenceAdapter {
	return &PreferenceAdapter{
		ratingRepo: ratingRepo,
		likeRepo:   likeRepo,
	}
}

// RatingsByUser reads a user's ratings fresh from storage
func (a *PreferenceAdapter) RatingsByUser(userID uint) ([]models.Rating, error) {
	return a.ratingRepo.FindByUser(userID)
}

// LikedMovieIDsByUser reads the ids of a user's liked movies fresh from storage
func (a *PreferenceAdapter) LikedMovieIDsByUser(userID uint) ([]int, error) {
	return a.likeRepo.FindMovieIDsByUser(userID)
}
