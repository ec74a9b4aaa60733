package recommender

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"movierec.app/errors"
	"movierec.app/models"
	"movierec.app/recommender/cache"
)

type stubMLClient struct {
	mu             sync.Mutex
	recommendCalls int
	similarCalls   int
	collabCalls    int
	healthCalls    int

	err           error
	result        *models.ScoringResult
	healthPayload map[string]interface{}
}

func (c *stubMLClient) GetRecommendations(userID uint, ratings []models.Rating, likedMovies []int, limit int) (*models.ScoringResult, error) {
	c.mu.Lock()
	c.recommendCalls++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func (c *stubMLClient) GetSimilarMovies(movieID, limit int) (*models.ScoringResult, error) {
	c.mu.Lock()
	c.similarCalls++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func (c *stubMLClient) GetCollaborativeRecommendations(userID uint, ratings []models.Rating, limit int) (*models.ScoringResult, error) {
	c.mu.Lock()
	c.collabCalls++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func (c *stubMLClient) Health() (map[string]interface{}, error) {
	c.mu.Lock()
	c.healthCalls++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.healthPayload, nil
}

type stubPreferences struct {
	ratings []models.Rating
	likes   []int
	err     error
}

func (p *stubPreferences) RatingsByUser(userID uint) ([]models.Rating, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.ratings, nil
}

func (p *stubPreferences) LikedMovieIDsByUser(userID uint) ([]int, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.likes, nil
}

func newTestScoringService(client MLClientInterface, prefs PreferenceSource) *ScoringService {
	return NewScoringService(client, cache.NewScoringCache(cache.NewMemoryCache()), prefs, time.Hour, 2*time.Hour)
}

func TestScoringService_GetPersonalizedRecommendations(t *testing.T) {
	t.Run("LiveResultCachedAndReused", func(t *testing.T) {
		client := &stubMLClient{result: &models.ScoringResult{
			MovieIDs: []int{550, 278},
			Scores:   []float64{0.91, 0.87},
			Method:   models.MethodHybrid,
		}}
		service := newTestScoringService(client, &stubPreferences{})

		first := service.GetPersonalizedRecommendations(42, 10)
		second := service.GetPersonalizedRecommendations(42, 10)

		assert.Equal(t, models.MethodHybrid, first.Method)
		assert.Equal(t, first.MovieIDs, second.MovieIDs)
		assert.Equal(t, 1, client.recommendCalls)
	})

	t.Run("FallbackIsDeterministic", func(t *testing.T) {
		client := &stubMLClient{err: errors.NewUpstreamTimeoutError("timed out", nil)}
		service := newTestScoringService(client, &stubPreferences{})

		result := service.GetPersonalizedRecommendations(7, 5)

		require.NotNil(t, result)
		assert.Equal(t, models.MethodFallback, result.Method)
		assert.Equal(t, []int{550, 278, 680, 155, 13}, result.MovieIDs)
		require.Len(t, result.Scores, 5)
		expected := []float64{0.90, 0.85, 0.80, 0.75, 0.70}
		for i, score := range expected {
			assert.InDelta(t, score, result.Scores[i], 1e-9)
		}
	})

	t.Run("FallbackIsNeverCached", func(t *testing.T) {
		client := &stubMLClient{err: errors.NewExternalAPIError("connection refused", nil)}
		service := newTestScoringService(client, &stubPreferences{})

		service.GetPersonalizedRecommendations(7, 5)
		service.GetPersonalizedRecommendations(7, 5)

		// each call retries the live service
		assert.Equal(t, 2, client.recommendCalls)
	})

	t.Run("FallbackTruncatedToAvailableIDs", func(t *testing.T) {
		client := &stubMLClient{err: errors.NewExternalAPIError("down", nil)}
		service := newTestScoringService(client, &stubPreferences{})

		result := service.GetPersonalizedRecommendations(7, 50)

		assert.Len(t, result.MovieIDs, len(fallbackMovieIDs))
		assert.Len(t, result.Scores, len(fallbackMovieIDs))
	})

	t.Run("PreferenceLoadFailureStillCallsService", func(t *testing.T) {
		client := &stubMLClient{result: &models.ScoringResult{
			MovieIDs: []int{680},
			Scores:   []float64{0.5},
			Method:   models.MethodHybrid,
		}}
		prefs := &stubPreferences{err: errors.NewDatabaseError("db down", nil)}
		service := newTestScoringService(client, prefs)

		result := service.GetPersonalizedRecommendations(42, 10)

		assert.Equal(t, models.MethodHybrid, result.Method)
		assert.Equal(t, 1, client.recommendCalls)
	})

	t.Run("ScoresAlwaysAlignedWithIDs", func(t *testing.T) {
		client := &stubMLClient{err: errors.NewExternalAPIError("down", nil)}
		service := newTestScoringService(client, &stubPreferences{})

		for _, limit := range []int{0, 1, 5, 10, 25} {
			result := service.GetPersonalizedRecommendations(1, limit)
			assert.Equal(t, len(result.MovieIDs), len(result.Scores))
		}
	})
}

func TestScoringService_GetSimilarMovies(t *testing.T) {
	t.Run("CacheReuse", func(t *testing.T) {
		client := &stubMLClient{result: &models.ScoringResult{
			MovieIDs: []int{278, 680},
			Scores:   []float64{0.8, 0.75},
			Method:   models.MethodContentSimilarity,
		}}
		service := newTestScoringService(client, &stubPreferences{})

		first := service.GetSimilarMovies(42, 10)
		second := service.GetSimilarMovies(42, 10)

		assert.Equal(t, first.MovieIDs, second.MovieIDs)
		assert.Equal(t, 1, client.similarCalls)
	})

	t.Run("DifferentLimitIsSeparateEntry", func(t *testing.T) {
		client := &stubMLClient{result: &models.ScoringResult{
			MovieIDs: []int{278},
			Scores:   []float64{0.8},
			Method:   models.MethodContentSimilarity,
		}}
		service := newTestScoringService(client, &stubPreferences{})

		service.GetSimilarMovies(42, 10)
		service.GetSimilarMovies(42, 5)

		assert.Equal(t, 2, client.similarCalls)
	})

	t.Run("FailureReturnsEmptyFallback", func(t *testing.T) {
		client := &stubMLClient{err: errors.NewUpstreamTimeoutError("timed out", nil)}
		service := newTestScoringService(client, &stubPreferences{})

		result := service.GetSimilarMovies(42, 10)

		assert.Equal(t, models.MethodFallback, result.Method)
		assert.Empty(t, result.MovieIDs)
		assert.Empty(t, result.Scores)

		// failures are not cached
		service.GetSimilarMovies(42, 10)
		assert.Equal(t, 2, client.similarCalls)
	})
}

func TestScoringService_GetCollaborativeRecommendations(t *testing.T) {
	t.Run("NoRatingsShortCircuits", func(t *testing.T) {
		client := &stubMLClient{result: &models.ScoringResult{
			MovieIDs: []int{13},
			Scores:   []float64{4.2},
			Method:   models.MethodCollaborative,
		}}
		service := newTestScoringService(client, &stubPreferences{ratings: nil})

		result := service.GetCollaborativeRecommendations(9, 10)

		assert.Equal(t, models.MethodNoData, result.Method)
		assert.Empty(t, result.MovieIDs)
		assert.Empty(t, result.Scores)
		// the ranking service is never contacted
		assert.Equal(t, 0, client.collabCalls)
	})

	t.Run("SuccessNeverCached", func(t *testing.T) {
		client := &stubMLClient{result: &models.ScoringResult{
			MovieIDs: []int{13, 423},
			Scores:   []float64{4.2, 3.9},
			Method:   models.MethodCollaborative,
		}}
		prefs := &stubPreferences{ratings: []models.Rating{{UserID: 9, MovieID: 550, Rating: 5}}}
		service := newTestScoringService(client, prefs)

		service.GetCollaborativeRecommendations(9, 10)
		service.GetCollaborativeRecommendations(9, 10)

		assert.Equal(t, 2, client.collabCalls)
	})

	t.Run("FailureReturnsEmptyFallback", func(t *testing.T) {
		client := &stubMLClient{err: errors.NewExternalAPIError("down", nil)}
		prefs := &stubPreferences{ratings: []models.Rating{{UserID: 9, MovieID: 550, Rating: 5}}}
		service := newTestScoringService(client, prefs)

		result := service.GetCollaborativeRecommendations(9, 10)

		assert.Equal(t, models.MethodFallback, result.Method)
		assert.Empty(t, result.MovieIDs)
	})

	t.Run("RatingsLoadFailureReturnsFallback", func(t *testing.T) {
		client := &stubMLClient{}
		prefs := &stubPreferences{err: errors.NewDatabaseError("db down", nil)}
		service := newTestScoringService(client, prefs)

		result := service.GetCollaborativeRecommendations(9, 10)

		assert.Equal(t, models.MethodFallback, result.Method)
		assert.Equal(t, 0, client.collabCalls)
	})
}

func TestScoringService_InvalidateUser(t *testing.T) {
	t.Run("RemovesOnlyThatUsersEntries", func(t *testing.T) {
		client := &stubMLClient{result: &models.ScoringResult{
			MovieIDs: []int{550},
			Scores:   []float64{0.9},
			Method:   models.MethodHybrid,
		}}
		service := newTestScoringService(client, &stubPreferences{})

		service.GetPersonalizedRecommendations(42, 10)
		service.GetPersonalizedRecommendations(7, 10)
		assert.Equal(t, 2, client.recommendCalls)

		service.InvalidateUser(42)

		// user 42 recomputes, user 7 is still served from cache
		service.GetPersonalizedRecommendations(42, 10)
		assert.Equal(t, 3, client.recommendCalls)
		service.GetPersonalizedRecommendations(7, 10)
		assert.Equal(t, 3, client.recommendCalls)
	})

	t.Run("DoesNotMatchPrefixOfLongerID", func(t *testing.T) {
		client := &stubMLClient{result: &models.ScoringResult{
			MovieIDs: []int{550},
			Scores:   []float64{0.9},
			Method:   models.MethodHybrid,
		}}
		service := newTestScoringService(client, &stubPreferences{})

		service.GetPersonalizedRecommendations(42, 10)
		service.InvalidateUser(4)

		service.GetPersonalizedRecommendations(42, 10)
		assert.Equal(t, 1, client.recommendCalls)
	})

	t.Run("NoEntriesIsNoOp", func(t *testing.T) {
		client := &stubMLClient{}
		service := newTestScoringService(client, &stubPreferences{})

		assert.NotPanics(t, func() {
			service.InvalidateUser(999)
		})
	})
}

func TestScoringService_CheckHealth(t *testing.T) {
	t.Run("HealthyPayloadPassedThrough", func(t *testing.T) {
		client := &stubMLClient{healthPayload: map[string]interface{}{
			"status":  "healthy",
			"version": "1.0.0",
		}}
		service := newTestScoringService(client, &stubPreferences{})

		status := service.CheckHealth()

		assert.Equal(t, "healthy", status["status"])
		assert.Equal(t, "1.0.0", status["version"])
	})

	t.Run("FailureSynthesizesUnhealthyStatus", func(t *testing.T) {
		client := &stubMLClient{err: errors.NewUpstreamTimeoutError("health probe timed out", nil)}
		service := newTestScoringService(client, &stubPreferences{})

		status := service.CheckHealth()

		assert.Equal(t, "unhealthy", status["status"])
		assert.Contains(t, status["error"], "health probe timed out")
	})
}
