package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/metrics"
)

// BestEffort runs fn under its own timeout and absorbs any failure. It
// returns the value and true on success, or the zero value and false when fn
// errors, times out, or panics. Outcomes are logged and counted under name.
func BestEffort[T any](ctx context.Context, name string, timeout time.Duration, fn func(ctx context.Context) (T, error)) (val T, ok bool) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("best-effort fetch panicked",
				zap.String("source", name),
				zap.Any("panic", r),
			)
			metrics.FreeDataFetches.WithLabelValues(name, "panic").Inc()
			var zero T
			val, ok = zero, false
		}
	}()

	start := time.Now()
	v, err := fn(ctx)
	if err != nil {
		zap.L().Debug("best-effort fetch failed",
			zap.String("source", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		metrics.FreeDataFetches.WithLabelValues(name, "error").Inc()
		var zero T
		return zero, false
	}

	metrics.FreeDataFetches.WithLabelValues(name, "ok").Inc()
	return v, true
}
