package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/service/calc"
	"github.com/secmon-lab/jarvis/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCalc() *cli.Command {
	return &cli.Command{
		Name:      "calc",
		Usage:     "Evaluate an arithmetic expression",
		ArgsUsage: "<expression>",
		Action: func(ctx context.Context, c *cli.Command) error {
			expr := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(expr) == "" {
				return goerr.New("expression is required")
			}

			result, err := calc.Evaluate(expr)
			if err != nil {
				fmt.Fprintln(c.Root().ErrWriter, usecase.UserMessage(err))
				return goerr.Wrap(err, "failed to evaluate expression", goerr.V("expression", expr))
			}

			fmt.Fprintln(c.Root().Writer, calc.FormatValue(result.Value))
			return nil
		},
	}
}
