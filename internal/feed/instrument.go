package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bakkerme/feedloader/internal/logx"
	"github.com/bakkerme/feedloader/internal/metrics"
)

type instrumented struct {
	next    Loader
	metrics *metrics.Metrics
}

// Instrument wraps next so that every delivered result is logged with the
// context logger and recorded in m. m may be nil.
func Instrument(next Loader, m *metrics.Metrics) Loader {
	return &instrumented{next: next, metrics: m}
}

func (l *instrumented) Load(ctx context.Context, completion func(Result)) {
	start := time.Now()
	logger := logx.FromContext(ctx)

	l.next.Load(ctx, func(result Result) {
		elapsed := time.Since(start)
		switch {
		case result.Err == nil:
			l.metrics.RecordLoad(metrics.ResultSuccess, elapsed)
			logger.Info("feed loaded", slog.Int("items", len(result.Items)), slog.Duration("elapsed", elapsed))
		case errors.Is(result.Err, InvalidData):
			l.metrics.RecordLoad(metrics.ResultInvalidData, elapsed)
			logger.Warn("feed load failed", slog.String("err", result.Err.Error()), slog.Duration("elapsed", elapsed))
		default:
			l.metrics.RecordLoad(metrics.ResultConnectivity, elapsed)
			logger.Warn("feed load failed", slog.String("err", result.Err.Error()), slog.Duration("elapsed", elapsed))
		}
		completion(result)
	})
}
