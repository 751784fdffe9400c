package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/jarvis/pkg/controller/http"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var maxSessions int
	var enableUI bool
	var assistantCfg assistantConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("JARVIS_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "max-sessions",
			Usage:       "Maximum number of conversations kept in memory",
			Value:       httpctrl.DefaultMaxSessions,
			Sources:     cli.EnvVars("JARVIS_MAX_SESSIONS"),
			Destination: &maxSessions,
		},
		&cli.BoolFlag{
			Name:        "web-ui",
			Usage:       "Serve the chat page at /",
			Value:       true,
			Sources:     cli.EnvVars("JARVIS_WEB_UI"),
			Destination: &enableUI,
		},
	}

	// Add shared config flags
	flags = append(flags, assistantCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			httpHandler, closeAssistant, err := newServeHandler(ctx, &assistantCfg,
				httpctrl.WithMaxSessions(maxSessions),
				httpctrl.WithWebUI(enableUI),
			)
			if err != nil {
				return err
			}
			defer closeAssistant()

			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr, "web_ui", enableUI)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}

// newServeHandler builds the assistant for the HTTP surface. Clients are
// anonymous, so host process launching is never wired here.
func newServeHandler(ctx context.Context, cfg *assistantConfig, opts ...httpctrl.Options) (http.Handler, func(), error) {
	assistant, closeAssistant, err := cfg.build(ctx)
	if err != nil {
		return nil, nil, err
	}

	handler, err := httpctrl.New(assistant, opts...)
	if err != nil {
		closeAssistant()
		return nil, nil, goerr.Wrap(err, "failed to create http server")
	}
	return handler, closeAssistant, nil
}
