package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/cli/config"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdExports() *cli.Command {
	var exportCfg config.Export

	withSink := func(ctx context.Context, fn func(sink interfaces.ExportRepository) error) error {
		sink, err := exportCfg.Configure(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to initialize export repository")
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logging.Default().Error("failed to close export repository", "error", err.Error())
			}
		}()
		return fn(sink)
	}

	return &cli.Command{
		Name:  "exports",
		Usage: "Inspect saved conversations",
		Flags: exportCfg.Flags(),
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved conversations, newest first",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withSink(ctx, func(sink interfaces.ExportRepository) error {
						records, err := sink.List(ctx)
						if err != nil {
							return goerr.Wrap(err, "failed to list exports")
						}
						return printExports(c.Root().Writer, records, time.Now())
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Print a saved conversation",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, c *cli.Command) error {
					name := c.Args().First()
					if name == "" {
						return goerr.New("export name is required")
					}
					return withSink(ctx, func(sink interfaces.ExportRepository) error {
						record, err := sink.Get(ctx, name)
						if err != nil {
							return goerr.Wrap(err, "failed to get export", goerr.V(model.ExportNameKey, name))
						}
						_, err = io.WriteString(c.Root().Writer, record.Content)
						return err
					})
				},
			},
		},
	}
}

func printExports(w io.Writer, records []*model.ExportRecord, now time.Time) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No saved conversations")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENTRIES\tSIZE\tSAVED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			r.Name,
			r.EntryCount,
			humanize.Bytes(uint64(len(r.Content))),
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
		)
	}
	return tw.Flush()
}
