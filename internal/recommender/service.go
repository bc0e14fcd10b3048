// internal/recommender/service.go

// Package recommender orchestrates the two-stage pipeline: acquire a raw
// batch, normalize it once, then evaluate queries against the shared
// normalized batch. The batch is read-only shared state; concurrent queries
// are safe because the matcher works on private copies of all per-row
// derived fields.
package recommender

import (
	"context"
	"time"

	"shoe-recommender/internal/common/config"
	"shoe-recommender/internal/common/logger"
	"shoe-recommender/internal/common/metrics"
	"shoe-recommender/internal/common/observability"
	"shoe-recommender/internal/models"
	"shoe-recommender/internal/pipeline/matcher"
	"shoe-recommender/internal/pipeline/normalizer"
)

// ProductSource supplies raw product batches (the acquisition collaborator).
type ProductSource interface {
	FetchProducts(ctx context.Context) ([]models.RawProduct, error)
}

// BatchCache stores normalized batches between requests.
type BatchCache interface {
	GetNormalized(ctx context.Context, partnerID int, category string) ([]models.NormalizedProduct, bool)
	SetNormalized(ctx context.Context, partnerID int, category string, products []models.NormalizedProduct)
}

type Service struct {
	source     ProductSource
	cache      BatchCache
	normalizer *normalizer.Normalizer
	matcher    *matcher.Matcher
	cfg        config.CatalogConfig
	recCfg     config.RecommendationConfig
	obs        *observability.Observability
	logger     logger.Logger
}

func NewService(
	source ProductSource,
	cache BatchCache,
	cfg config.CatalogConfig,
	recCfg config.RecommendationConfig,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		source:     source,
		cache:      cache,
		normalizer: normalizer.New(log),
		matcher:    matcher.New(log),
		cfg:        cfg,
		recCfg:     recCfg,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "recommender"}),
	}
}

// Products returns the normalized batch, preferring the cache and filling it
// after a repository fetch.
func (s *Service) Products(ctx context.Context) ([]models.NormalizedProduct, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetNormalized(ctx, s.cfg.PartnerID, s.cfg.Category); ok {
			return cached, nil
		}
	}

	raw, err := s.source.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	normalized := s.normalizer.Normalize(raw)
	metrics.RecommendationDuration.WithLabelValues("normalize").Observe(time.Since(start).Seconds())
	metrics.NormalizedBatchSize.Set(float64(len(normalized)))

	if s.cache != nil {
		s.cache.SetNormalized(ctx, s.cfg.PartnerID, s.cfg.Category, normalized)
	}

	return normalized, nil
}

// Recommend evaluates one query against the current normalized batch.
func (s *Service) Recommend(ctx context.Context, query models.Query) ([]models.ScoredProduct, error) {
	start := time.Now()

	if query.Limit > s.recCfg.MaxLimit {
		query.Limit = s.recCfg.MaxLimit
	}
	if query.Limit == 0 {
		query.Limit = s.recCfg.DefaultLimit
	}

	products, err := s.Products(ctx)
	if err != nil {
		s.recordOutcome(ctx, start, "error")
		return nil, err
	}

	matchStart := time.Now()
	results, err := s.matcher.Recommend(products, query)
	metrics.RecommendationDuration.WithLabelValues("match").Observe(time.Since(matchStart).Seconds())
	if err != nil {
		s.recordOutcome(ctx, start, "invalid")
		return nil, err
	}

	s.recordOutcome(ctx, start, "success")
	s.logger.Info("recommendation evaluated", map[string]interface{}{
		"gender":    query.Gender,
		"size":      query.Size,
		"width":     query.Width,
		"batchSize": len(products),
		"results":   len(results),
	})

	return results, nil
}

func (s *Service) recordOutcome(ctx context.Context, start time.Time, status string) {
	metrics.RecommendationRequests.WithLabelValues(status).Inc()
	if s.obs != nil {
		s.obs.RecordRequestProcessed(ctx, status)
		s.obs.RecordRequestDuration(ctx, time.Since(start), status)
	}
}
