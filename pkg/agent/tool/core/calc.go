package core

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/jarvis/pkg/agent/tool"
	"github.com/secmon-lab/jarvis/pkg/service/calc"
)

// calculateTool evaluates arithmetic with the same evaluator as the
// calculate command
type calculateTool struct{}

func (t *calculateTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__calculate",
		Description: "Evaluate an arithmetic expression with + - * / ^ and parentheses",
		Parameters: map[string]*gollem.Parameter{
			"expression": {
				Type:        gollem.TypeString,
				Description: "The expression to evaluate, e.g. (2+3)*4",
				Required:    true,
			},
		},
	}
}

func (t *calculateTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	expr, err := extractString(args, "expression")
	if err != nil {
		return nil, err
	}

	tool.Report(ctx, "Calculating %s...", expr)
	result, err := calc.Evaluate(expr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate expression", goerr.V("expression", expr))
	}

	return map[string]any{
		"expression": result.Expression,
		"result":     calc.FormatValue(result.Value),
	}, nil
}
