package understand

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/observability"
	"github.com/haalarikone/haku-api/internal/taxonomy"
)

// Service orchestrates cache lookup, the color fast path and the slow-path
// extractor.
type Service struct {
	tax       *taxonomy.Taxonomy
	cache     InterpretationCache
	extractor Extractor
	logger    *zap.Logger
}

func NewService(tax *taxonomy.Taxonomy, cache InterpretationCache, extractor Extractor, logger *zap.Logger) *Service {
	return &Service{
		tax:       tax,
		cache:     cache,
		extractor: extractor,
		logger:    logger,
	}
}

// Interpret maps a trimmed, non-empty query to an interpretation. Cache
// failures degrade to a cache-less run; extractor failures are wrapped in
// ErrExtraction and abort the request.
func (s *Service) Interpret(ctx context.Context, locale models.Locale, query string) (*models.Interpretation, error) {
	trimmed := strings.TrimSpace(query)

	if s.cache != nil {
		cached, err := s.cache.GetInterpretation(ctx, locale, trimmed)
		if err != nil {
			s.logger.Warn("interpretation cache read failed", zap.Error(err))
		}
		if cached != nil {
			observability.ExtractionTotal.WithLabelValues("cache", "hit").Inc()
			return cached, nil
		}
	}

	in, ok := s.fastPath(trimmed)
	if ok {
		observability.ExtractionTotal.WithLabelValues("fast", "success").Inc()
	} else {
		var err error
		in, err = s.extractor.Extract(ctx, locale, trimmed)
		if err != nil {
			observability.ExtractionTotal.WithLabelValues("slow", "error").Inc()
			return nil, fmt.Errorf("%w: %s", ErrExtraction, err)
		}
		observability.ExtractionTotal.WithLabelValues("slow", "success").Inc()
	}

	if s.cache != nil {
		if err := s.cache.SetInterpretation(ctx, locale, trimmed, in); err != nil {
			s.logger.Warn("interpretation cache write failed", zap.Error(err))
		}
	}

	return in, nil
}

// fastPath short-circuits the common one-or-two word color query without
// touching the extractor. When both tokens are color words the first one
// wins; the other becomes leftover semantic text.
func (s *Service) fastPath(query string) (*models.Interpretation, bool) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 || len(tokens) > 2 {
		return nil, false
	}

	for i, tok := range tokens {
		if !s.tax.IsColorWord(tok) {
			continue
		}
		in := &models.Interpretation{
			Filters: models.Filters{Color: tok},
		}
		if len(tokens) == 2 {
			in.SemanticQuery = tokens[1-i]
		}
		return in, true
	}

	return nil, false
}
