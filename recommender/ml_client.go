package recommender

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"movierec.app/config"
	"movierec.app/errors"
	"movierec.app/models"
)

// MLClient issues requests to the external ranking service.
// Each operation class carries its own hard timeout; no retries.
type MLClient struct {
	baseURL         string
	recommendClient *http.Client
	similarClient   *http.Client
	healthClient    *http.Client
}

// NewMLClient creates a ranking service client from configuration
func NewMLClient(cfg *config.MLConfig) *MLClient {
	return &MLClient{
		baseURL:         cfg.BaseURL,
		recommendClient: &http.Client{Timeout: cfg.RecommendationTimeout()},
		similarClient:   &http.Client{Timeout: cfg.SimilarTimeout()},
		healthClient:    &http.Client{Timeout: cfg.HealthTimeout()},
	}
}

type ratingPayload struct {
	MovieID int     `json:"movie_id"`
	Rating  float64 `json:"rating"`
}

type recommendationRequest struct {
	UserID           uint            `json:"user_id"`
	Ratings          []ratingPayload `json:"ratings"`
	LikedMovies      []int           `json:"liked_movies"`
	NRecommendations int             `json:"n_recommendations"`
	Method           string          `json:"method"`
}

type similarMoviesRequest struct {
	MovieID          int `json:"movie_id"`
	NRecommendations int `json:"n_recommendations"`
}

type collaborativeRequest struct {
	UserID           uint            `json:"user_id"`
	Ratings          []ratingPayload `json:"ratings"`
	NRecommendations int             `json:"n_recommendations"`
}

type scoringResponse struct {
	MovieIDs []int     `json:"movie_ids"`
	Scores   []float64 `json:"scores"`
	Method   string    `json:"method"`
}

func toRatingPayloads(ratings []models.Rating) []ratingPayload {
	payloads := make([]ratingPayload, 0, len(ratings))
	for _, r := range ratings {
		payloads = append(payloads, ratingPayload{MovieID: r.MovieID, Rating: r.Rating})
	}
	return payloads
}

// GetRecommendations requests hybrid personalized recommendations
func (c *MLClient) GetRecommendations(userID uint, ratings []models.Rating, likedMovies []int, limit int) (*models.ScoringResult, error) {
	if likedMovies == nil {
		likedMovies = []int{}
	}

	request := recommendationRequest{
		UserID:           userID,
		Ratings:          toRatingPayloads(ratings),
		LikedMovies:      likedMovies,
		NRecommendations: limit,
		Method:           "hybrid",
	}

	return c.postScoring(c.recommendClient, "/api/ml/recommendations", request)
}

// GetSimilarMovies requests content-similar movies for a seed movie
func (c *MLClient) GetSimilarMovies(movieID, limit int) (*models.ScoringResult, error) {
	request := similarMoviesRequest{
		MovieID:          movieID,
		NRecommendations: limit,
	}

	return c.postScoring(c.similarClient, "/api/ml/similar", request)
}

// GetCollaborativeRecommendations requests collaborative-filtering recommendations
func (c *MLClient) GetCollaborativeRecommendations(userID uint, ratings []models.Rating, limit int) (*models.ScoringResult, error) {
	request := collaborativeRequest{
		UserID:           userID,
		Ratings:          toRatingPayloads(ratings),
		NRecommendations: limit,
	}

	return c.postScoring(c.recommendClient, "/api/ml/collaborative", request)
}

func (c *MLClient) postScoring(client *http.Client, path string, payload interface{}) (*models.ScoringResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to encode scoring request", err)
	}

	resp, err := client.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, classifyTransportError(path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(
			fmt.Sprintf("ranking service returned status code %d for %s", resp.StatusCode, path), nil)
	}

	var result scoringResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode scoring response", err)
	}

	if len(result.MovieIDs) != len(result.Scores) {
		return nil, errors.NewExternalAPIError(
			fmt.Sprintf("invalid scoring response: %d movie ids but %d scores", len(result.MovieIDs), len(result.Scores)), nil)
	}

	return &models.ScoringResult{
		MovieIDs: result.MovieIDs,
		Scores:   result.Scores,
		Method:   result.Method,
	}, nil
}

// Health probes the ranking service health endpoint and returns its payload
func (c *MLClient) Health() (map[string]interface{}, error) {
	resp, err := c.healthClient.Get(c.baseURL + "/health")
	if err != nil {
		return nil, classifyTransportError("/health", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(
			fmt.Sprintf("ranking service health returned status code %d", resp.StatusCode), nil)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode health payload", err)
	}

	return payload, nil
}

// classifyTransportError separates deadline expiry from connection failures
func classifyTransportError(path string, err error) *errors.AppError {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewUpstreamTimeoutError(fmt.Sprintf("ranking service request to %s timed out", path), err)
	}

	var urlErr *url.Error
	if stderrors.As(err, &urlErr) && urlErr.Timeout() {
		return errors.NewUpstreamTimeoutError(fmt.Sprintf("ranking service request to %s timed out", path), err)
	}

	return errors.NewExternalAPIError(fmt.Sprintf("ranking service request to %s failed", path), err)
}
