package tool

import (
	"context"
	"fmt"
)

// Progress receives status lines from tools while the model waits on them
type Progress func(ctx context.Context, message string)

type progressKey struct{}

// WithProgress returns a context whose tool calls report to fn
func WithProgress(ctx context.Context, fn Progress) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// Report formats a status line and passes it to the Progress bound to ctx.
// Without one it does nothing.
func Report(ctx context.Context, format string, args ...any) {
	fn, ok := ctx.Value(progressKey{}).(Progress)
	if !ok || fn == nil {
		return
	}
	fn(ctx, fmt.Sprintf(format, args...))
}
