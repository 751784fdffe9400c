package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from ctx cancellation.
// The logger bound to ctx is carried over. Errors and panics are logged
// with the task name and never propagate. The returned channel is closed
// once the handler has finished.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) <-chan struct{} {
	done := make(chan struct{})

	bgCtx := logging.With(context.WithoutCancel(ctx), logging.From(ctx).With("task", task))

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async task", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Warn("async task failed", "error", goerr.Unwrap(err))
		}
	}()

	return done
}
