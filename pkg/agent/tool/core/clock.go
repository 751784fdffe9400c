package core

import (
	"context"
	"time"

	"github.com/m-mizutani/gollem"
)

// currentTimeTool reports the local date and time
type currentTimeTool struct {
	clock func() time.Time
}

func (t *currentTimeTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__current_time",
		Description: "Get the current local date and time",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *currentTimeTool) Run(ctx context.Context, _ map[string]any) (map[string]any, error) {
	now := t.clock()
	return map[string]any{
		"time":     now.Format("03:04 PM"),
		"date":     now.Format("Monday, January 02, 2006"),
		"rfc3339":  now.Format(time.RFC3339),
		"timezone": now.Location().String(),
	}, nil
}
