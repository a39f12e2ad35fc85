// Package understand turns free-text search input into a structured filter
// set plus leftover semantic text. A fast path handles the common
// one-or-two word color query locally; everything else goes through a
// language-model extraction call. Results are cached per (locale, query).
package understand

import (
	"context"
	"errors"

	"github.com/haalarikone/haku-api/internal/models"
)

// ErrExtraction marks a failed or unusable slow-path extraction. Query
// understanding is mandatory, so callers surface this as a request failure.
var ErrExtraction = errors.New("query extraction failed")

// Extractor is the slow path of query understanding. The production
// implementation calls a remote language model; tests substitute a
// deterministic mapping.
type Extractor interface {
	Extract(ctx context.Context, locale models.Locale, query string) (*models.Interpretation, error)
}

// InterpretationCache memoizes interpretations keyed by (locale, normalized
// query). Read and write failures must be tolerated by callers.
type InterpretationCache interface {
	GetInterpretation(ctx context.Context, locale models.Locale, query string) (*models.Interpretation, error)
	SetInterpretation(ctx context.Context, locale models.Locale, query string, in *models.Interpretation) error
}
