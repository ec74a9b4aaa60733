package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"movierec.app/config"
	"movierec.app/errors"
	"movierec.app/models"
)

// TMDBProvider implements MetadataProvider against the TMDB API
type TMDBProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTMDBProvider creates a new TMDB metadata provider
func NewTMDBProvider(cfg *config.TMDBConfig) *TMDBProvider {
	return &TMDBProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// GetMovieDetails retrieves the detail payload for a movie
func (p *TMDBProvider) GetMovieDetails(ctx context.Context, movieID int) (models.EnrichedMovie, error) {
	url := fmt.Sprintf("%s/movie/%d?api_key=%s", p.baseURL, movieID, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build metadata request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("failed to get metadata for movie %d", movieID), err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError(fmt.Sprintf("movie %d not found", movieID))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(
			fmt.Sprintf("metadata service returned status code %d for movie %d", resp.StatusCode, movieID), nil)
	}

	var detail models.EnrichedMovie
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode movie metadata", err)
	}

	// A JSON null body decodes into a nil map without error; callers write
	// score fields into the result, so never hand one back
	if detail == nil {
		return nil, errors.NewExternalAPIError(
			fmt.Sprintf("metadata service returned an empty payload for movie %d", movieID), nil)
	}

	return detail, nil
}
