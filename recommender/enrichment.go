package recommender

import (
	"context"
	"log/slog"
	"sync"

	"movierec.app/models"
)

// EnrichmentAggregator fans metadata fetches out over a ranked result.
// All fetches are dispatched before any is awaited, so end-to-end latency is
// bounded by the slowest single fetch.
type EnrichmentAggregator struct {
	metadata MetadataProvider
}

// NewEnrichmentAggregator creates an aggregator over the given metadata provider
func NewEnrichmentAggregator(metadata MetadataProvider) *EnrichmentAggregator {
	return &EnrichmentAggregator{
		metadata: metadata,
	}
}

// Enrich fetches metadata for every movie in the result concurrently and
// attaches the aligned score under scoreField. Movies whose metadata fetch
// fails are dropped; the survivors keep the original rank order. The returned
// count is the number of surviving movies.
func (a *EnrichmentAggregator) Enrich(ctx context.Context, result *models.ScoringResult, scoreField string) ([]models.EnrichedMovie, int) {
	if result == nil || len(result.MovieIDs) == 0 {
		return []models.EnrichedMovie{}, 0
	}

	// indexed slots keep the score-to-movie alignment regardless of the order
	// in which fetches complete
	slots := make([]models.EnrichedMovie, len(result.MovieIDs))

	var wg sync.WaitGroup
	for i, movieID := range result.MovieIDs {
		wg.Add(1)
		go func(i, movieID int) {
			defer wg.Done()

			detail, err := a.metadata.GetMovieDetails(ctx, movieID)
			if err != nil {
				slog.Warn("metadata fetch failed, dropping movie from result", "movie_id", movieID, "error", err)
				return
			}
			// a nil map cannot take the score field below
			if detail == nil {
				slog.Warn("empty metadata payload, dropping movie from result", "movie_id", movieID)
				return
			}

			detail[scoreField] = result.Scores[i]
			slots[i] = detail
		}(i, movieID)
	}
	wg.Wait()

	enriched := make([]models.EnrichedMovie, 0, len(slots))
	for _, movie := range slots {
		if movie != nil {
			enriched = append(enriched, movie)
		}
	}

	if len(enriched) < len(result.MovieIDs) {
		slog.Info("partial enrichment", "requested", len(result.MovieIDs), "survived", len(enriched))
	}

	return enriched, len(enriched)
}
