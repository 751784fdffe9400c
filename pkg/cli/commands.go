package cli

import (
	"context"
	"fmt"

	"github.com/secmon-lab/jarvis/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCommands() *cli.Command {
	var assistantCfg assistantConfig

	return &cli.Command{
		Name:  "commands",
		Usage: "List the commands the assistant understands",
		Flags: assistantCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			assistant, closeAssistant, err := assistantCfg.build(ctx)
			if err != nil {
				return err
			}
			defer closeAssistant()

			printCommands(c, assistant.Registry())
			return nil
		},
	}
}

func printCommands(c *cli.Command, registry *usecase.Registry) {
	for _, cmd := range registry.Commands() {
		fmt.Fprintf(c.Root().Writer, "%-17s - %s\n", cmd.Usage, cmd.Description)
	}
}
