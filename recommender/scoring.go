package recommender

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"movierec.app/errors"
	"movierec.app/metrics"
	"movierec.app/models"
	"movierec.app/recommender/cache"
)

// fallbackMovieIDs is the fixed ranked list of well-known popular movies
// served when the ranking service cannot be reached.
var fallbackMovieIDs = []int{550, 278, 680, 155, 13, 423, 769, 24428, 329, 107}

const (
	fallbackTopScore  = 0.90
	fallbackScoreStep = 0.05
)

// ScoringService fronts the ranking service with a TTL cache and deterministic
// degradation paths. Its operations never return an error: every call yields a
// well-formed ScoringResult whose method tag explains how it was produced.
type ScoringService struct {
	client      MLClientInterface
	cache       cache.ScoringCacheInterface
	preferences PreferenceSource
	recTTL      time.Duration
	simTTL      time.Duration
	upstream    *metrics.UpstreamMetricsCollector
}

// NewScoringService creates a scoring service over the given client, cache and
// preference source
func NewScoringService(
	client MLClientInterface,
	scoringCache cache.ScoringCacheInterface,
	preferences PreferenceSource,
	recTTL time.Duration,
	simTTL time.Duration,
) *ScoringService {
	return &ScoringService{
		client:      client,
		cache:       scoringCache,
		preferences: preferences,
		recTTL:      recTTL,
		simTTL:      simTTL,
		upstream:    metrics.GetUpstreamMetrics(),
	}
}

// GetPersonalizedRecommendations returns hybrid recommendations for a user.
// Cache hits are served directly; on a miss the ranking service is called and
// the live result cached. On any upstream failure a static popular-movies
// fallback is returned and never cached, so the next call retries the service.
func (s *ScoringService) GetPersonalizedRecommendations(userID uint, limit int) *models.ScoringResult {
	cacheKey := personalizedCacheKey(userID, limit)

	if cached, found := s.cache.Get(cacheKey); found {
		slog.Info("recommendation cache hit", "user_id", userID, "limit", limit)
		return cached
	}

	slog.Info("recommendation cache miss", "user_id", userID, "limit", limit)

	ratings, likedMovies := s.loadPreferences(userID)

	start := time.Now()
	result, err := s.client.GetRecommendations(userID, ratings, likedMovies, limit)
	s.upstream.RecordLatency("recommendations", time.Since(start).Seconds())
	if err != nil {
		slog.Warn("ranking service failed, serving static fallback", "user_id", userID, "error", err)
		s.upstream.RecordRequest("recommendations", failureOutcome(err))
		return staticFallback(limit)
	}

	s.upstream.RecordRequest("recommendations", metrics.OutcomeSuccess)
	s.cache.Set(cacheKey, result, s.recTTL)
	return result
}

// GetSimilarMovies returns content-similar movies for a seed movie.
// Upstream failure yields an empty result tagged fallback; only live results
// are cached.
func (s *ScoringService) GetSimilarMovies(movieID, limit int) *models.ScoringResult {
	cacheKey := similarCacheKey(movieID, limit)

	if cached, found := s.cache.Get(cacheKey); found {
		slog.Info("similarity cache hit", "movie_id", movieID, "limit", limit)
		return cached
	}

	slog.Info("similarity cache miss", "movie_id", movieID, "limit", limit)

	start := time.Now()
	result, err := s.client.GetSimilarMovies(movieID, limit)
	s.upstream.RecordLatency("similar", time.Since(start).Seconds())
	if err != nil {
		slog.Warn("similarity request failed, serving empty fallback", "movie_id", movieID, "error", err)
		s.upstream.RecordRequest("similar", failureOutcome(err))
		return emptyResult(models.MethodFallback)
	}

	s.upstream.RecordRequest("similar", metrics.OutcomeSuccess)
	s.cache.Set(cacheKey, result, s.simTTL)
	return result
}

// GetCollaborativeRecommendations returns collaborative-filtering
// recommendations. A user with no stored ratings short-circuits with a no_data
// result without contacting the ranking service. Collaborative results are
// never cached.
func (s *ScoringService) GetCollaborativeRecommendations(userID uint, limit int) *models.ScoringResult {
	ratings, err := s.preferences.RatingsByUser(userID)
	if err != nil {
		slog.Error("failed to load ratings for collaborative scoring", "user_id", userID, "error", err)
		s.upstream.RecordRequest("collaborative", metrics.OutcomeFallback)
		return emptyResult(models.MethodFallback)
	}

	if len(ratings) == 0 {
		slog.Info("no ratings stored, skipping collaborative scoring", "user_id", userID)
		s.upstream.RecordRequest("collaborative", metrics.OutcomeNoData)
		return emptyResult(models.MethodNoData)
	}

	start := time.Now()
	result, err := s.client.GetCollaborativeRecommendations(userID, ratings, limit)
	s.upstream.RecordLatency("collaborative", time.Since(start).Seconds())
	if err != nil {
		slog.Warn("collaborative request failed, serving empty fallback", "user_id", userID, "error", err)
		s.upstream.RecordRequest("collaborative", failureOutcome(err))
		return emptyResult(models.MethodFallback)
	}

	s.upstream.RecordRequest("collaborative", metrics.OutcomeSuccess)
	return result
}

// InvalidateUser removes every cached scoring entry for a user. Called
// synchronously by preference mutations so the next request recomputes from
// current data. Invalidating a user with no cached entries is a no-op.
func (s *ScoringService) InvalidateUser(userID uint) {
	fragment := userKeyFragment(userID)
	s.cache.DeleteByPrefix(fragment)
	slog.Info("invalidated cached recommendations", "user_id", userID)
}

// CheckHealth probes the ranking service. On success the upstream payload is
// returned verbatim; on any failure a synthesized unhealthy status is returned
// instead of an error.
func (s *ScoringService) CheckHealth() map[string]interface{} {
	payload, err := s.client.Health()
	if err != nil {
		slog.Warn("ranking service health probe failed", "error", err)
		s.upstream.SetServiceUp(false)
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	}

	s.upstream.SetServiceUp(true)
	return payload
}

func (s *ScoringService) loadPreferences(userID uint) ([]models.Rating, []int) {
	ratings, err := s.preferences.RatingsByUser(userID)
	if err != nil {
		slog.Error("failed to load ratings, proceeding without them", "user_id", userID, "error", err)
		ratings = nil
	}

	likedMovies, err := s.preferences.LikedMovieIDsByUser(userID)
	if err != nil {
		slog.Error("failed to load likes, proceeding without them", "user_id", userID, "error", err)
		likedMovies = nil
	}

	return ratings, likedMovies
}

// staticFallback builds the deterministic popular-movies result: the fixed id
// list truncated to limit, scored 0.90 and stepping down 0.05 per rank.
func staticFallback(limit int) *models.ScoringResult {
	n := limit
	if n > len(fallbackMovieIDs) {
		n = len(fallbackMovieIDs)
	}
	if n < 0 {
		n = 0
	}

	movieIDs := make([]int, n)
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		movieIDs[i] = fallbackMovieIDs[i]
		scores[i] = fallbackTopScore - fallbackScoreStep*float64(i)
	}

	return &models.ScoringResult{
		MovieIDs: movieIDs,
		Scores:   scores,
		Method:   models.MethodFallback,
	}
}

// failureOutcome labels an upstream failure for the request counter
func failureOutcome(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Type == errors.UpstreamTimeoutError {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeUnavailable
}

func emptyResult(method string) *models.ScoringResult {
	return &models.ScoringResult{
		MovieIDs: []int{},
		Scores:   []float64{},
		Method:   method,
	}
}

func personalizedCacheKey(userID uint, limit int) string {
	return fmt.Sprintf("rec:user:%d:%d", userID, limit)
}

func similarCacheKey(movieID, limit int) string {
	return fmt.Sprintf("sim:movie:%d:%d", movieID, limit)
}

// userKeyFragment is the user-scoped key fragment matched by invalidation.
// The trailing colon keeps user 4 from matching user 42.
func userKeyFragment(userID uint) string {
	return fmt.Sprintf("user:%d:", userID)
}
