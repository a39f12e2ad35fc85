package observability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/models"
)

// AnalyticsWriter receives query-performance events for searches that
// exceed the warning threshold.
type AnalyticsWriter interface {
	WriteQueryEvent(ctx context.Context, event *models.QueryEvent) error
}

// SlowQueryDetector logs and records searches slower than the configured
// thresholds. Fast queries return immediately with no overhead.
type SlowQueryDetector struct {
	warningThreshold  time.Duration
	criticalThreshold time.Duration
	logger            *zap.Logger
	analyticsWriter   AnalyticsWriter
}

func NewSlowQueryDetector(warning, critical time.Duration, logger *zap.Logger, aw AnalyticsWriter) *SlowQueryDetector {
	return &SlowQueryDetector{
		warningThreshold:  warning,
		criticalThreshold: critical,
		logger:            logger,
		analyticsWriter:   aw,
	}
}

func (sqd *SlowQueryDetector) Intercept(ctx context.Context, query, locale, source string, duration time.Duration, totalCount int) {
	if duration <= sqd.warningThreshold {
		return
	}

	traceID := TraceIDFromContext(ctx)
	severity := sqd.classifySeverity(duration)

	SlowQueryCounter.WithLabelValues(severity, source).Inc()

	sqd.logger.Warn("slow search detected",
		zap.String("trace_id", traceID),
		zap.String("query_hash", hashQueryForLog(query)),
		zap.String("locale", locale),
		zap.String("source", source),
		zap.Float64("duration_ms", float64(duration.Milliseconds())),
		zap.Int("total_count", totalCount),
		zap.String("severity", severity),
	)

	// Analytics write happens off the request path.
	if sqd.analyticsWriter != nil {
		event := &models.QueryEvent{
			QueryHash:  hashQueryForLog(query),
			Locale:     locale,
			Source:     source,
			DurationMs: float64(duration.Milliseconds()),
			TotalCount: int64(totalCount),
			Severity:   severity,
			TraceID:    traceID,
			Timestamp:  time.Now().UTC(),
		}
		go func() {
			writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := sqd.analyticsWriter.WriteQueryEvent(writeCtx, event); err != nil {
				sqd.logger.Error("failed to write query analytics",
					zap.String("trace_id", traceID),
					zap.Error(err),
				)
			}
		}()
	}
}

func (sqd *SlowQueryDetector) classifySeverity(d time.Duration) string {
	if d > sqd.criticalThreshold {
		return "critical"
	}
	if d > sqd.warningThreshold {
		return "warning"
	}
	return "normal"
}

// hashQueryForLog keeps raw query text out of logs and analytics.
func hashQueryForLog(q string) string {
	h := uint64(0)
	for _, c := range q {
		h = h*31 + uint64(c)
	}
	return fmt.Sprintf("%016x", h)
}
