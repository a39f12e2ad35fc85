// Package search orchestrates the pipeline behind /api/search: query
// understanding, deterministic filtering, the semantic fallback and
// relevance ranking.
package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/filter"
	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/observability"
	"github.com/haalarikone/haku-api/internal/rank"
	"github.com/haalarikone/haku-api/internal/taxonomy"
)

// Interpreter is the query-understanding stage.
type Interpreter interface {
	Interpret(ctx context.Context, locale models.Locale, query string) (*models.Interpretation, error)
}

// SemanticSearcher is the external approximate index behind the fallback.
type SemanticSearcher interface {
	Search(ctx context.Context, locale models.Locale, query string, limit int) ([]models.Record, error)
}

// DatasetStore serves the immutable per-locale record collections.
type DatasetStore interface {
	Records(locale models.Locale) ([]models.Record, error)
}

type Service struct {
	data        DatasetStore
	tax         *taxonomy.Taxonomy
	interpreter Interpreter
	semantic    SemanticSearcher
	slowQuery   *observability.SlowQueryDetector
	cfg         config.SearchConfig
	logger      *zap.Logger
}

func New(
	data DatasetStore,
	tax *taxonomy.Taxonomy,
	interpreter Interpreter,
	semantic SemanticSearcher,
	slowQuery *observability.SlowQueryDetector,
	cfg config.SearchConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		data:        data,
		tax:         tax,
		interpreter: interpreter,
		semantic:    semantic,
		slowQuery:   slowQuery,
		cfg:         cfg,
		logger:      logger,
	}
}

// Search runs the full pipeline. Stages execute strictly in order; each
// stage's output gates the next. Only interpretation failures and dataset
// load failures propagate — the semantic fallback fails soft.
func (s *Service) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	locale := models.ParseLocale(req.Locale)

	ctx, span := observability.StartSpan(ctx, "search.pipeline",
		attribute.String("locale", string(locale)),
	)
	defer span.End()

	trimmed := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(trimmed) < s.cfg.MinQueryLength {
		observability.SearchRequestsTotal.WithLabelValues("short_query").Inc()
		return emptyResponse(models.Filters{}, "", "none"), nil
	}

	in, err := s.interpreter.Interpret(ctx, locale, trimmed)
	if err != nil {
		observability.SearchRequestsTotal.WithLabelValues("error").Inc()
		observability.SearchRequestDuration.WithLabelValues("none", "error").Observe(time.Since(start).Seconds())
		return nil, err
	}

	if in.IsGibberish {
		s.logger.Debug("query flagged as gibberish",
			zap.String("locale", string(locale)),
			zap.String("request_id", req.RequestID),
		)
		observability.SearchRequestsTotal.WithLabelValues("gibberish").Inc()
		return emptyResponse(in.Filters, in.SemanticQuery, "none"), nil
	}

	records, err := s.data.Records(locale)
	if err != nil {
		observability.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	matched := filter.Apply(records, in, s.tax)
	source := "deterministic"

	if len(matched) > 0 {
		if strings.TrimSpace(in.SemanticQuery) != "" {
			matched = rank.ByRelevance(matched, in.SemanticQuery)
		} else {
			matched = rank.ByInstitution(matched)
		}
	} else {
		source = "semantic"
		candidates := s.semanticCandidates(ctx, locale, trimmed)
		matched = filter.Apply(candidates, in, s.tax)
		matched = rank.ByRelevance(matched, in.SemanticQuery)
	}

	resp := &models.SearchResponse{
		Results:       matched,
		TotalCount:    len(matched),
		Filters:       in.Filters,
		SemanticQuery: in.SemanticQuery,
		Source:        source,
	}
	if resp.Results == nil {
		resp.Results = []models.Record{}
	}

	duration := time.Since(start)
	observability.SearchRequestsTotal.WithLabelValues("success").Inc()
	observability.SearchRequestDuration.WithLabelValues(source, "success").Observe(duration.Seconds())
	if s.slowQuery != nil {
		s.slowQuery.Intercept(ctx, trimmed, string(locale), source, duration, resp.TotalCount)
	}

	return resp, nil
}

// semanticCandidates queries the fallback index. Unreachable service or an
// error is a legitimate "no results" outcome, never a request failure.
func (s *Service) semanticCandidates(ctx context.Context, locale models.Locale, query string) []models.Record {
	if s.semantic == nil {
		observability.SemanticFallbackTotal.WithLabelValues("unavailable").Inc()
		return nil
	}

	candidates, err := s.semantic.Search(ctx, locale, query, s.cfg.SemanticLimit)
	if err != nil {
		s.logger.Warn("semantic fallback failed, treating as no results",
			zap.String("locale", string(locale)),
			zap.Error(err),
		)
		observability.SemanticFallbackTotal.WithLabelValues("error").Inc()
		return nil
	}

	observability.SemanticFallbackTotal.WithLabelValues("success").Inc()
	return candidates
}

func emptyResponse(filters models.Filters, semanticQuery, source string) *models.SearchResponse {
	return &models.SearchResponse{
		Results:       []models.Record{},
		TotalCount:    0,
		Filters:       filters,
		SemanticQuery: semanticQuery,
		Source:        source,
	}
}
