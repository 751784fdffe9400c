package tool_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/agent/tool"
)

func TestReport(t *testing.T) {
	var got []string
	ctx := tool.WithProgress(context.Background(), func(_ context.Context, msg string) {
		got = append(got, msg)
	})

	tool.Report(ctx, "step %d of %d", 1, 2)
	gt.Value(t, got).Equal([]string{"step 1 of 2"})

	// no Progress bound
	tool.Report(context.Background(), "ignored")
}
