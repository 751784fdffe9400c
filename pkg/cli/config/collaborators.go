package config

import (
	"log/slog"

	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/service/launcher"
	"github.com/secmon-lab/jarvis/pkg/service/wikipedia"
	"github.com/secmon-lab/jarvis/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Collaborators holds CLI flags for the services commands reach out to
type Collaborators struct {
	wikiLanguage    string
	disableWiki     bool
	disableLauncher bool
}

// Flags returns CLI flags for collaborator configuration
func (x *Collaborators) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "wikipedia-language",
			Category:    "Collaborators",
			Usage:       "Wikipedia language edition used by the wiki command",
			Value:       "en",
			Sources:     cli.EnvVars("JARVIS_WIKIPEDIA_LANGUAGE"),
			Destination: &x.wikiLanguage,
		},
		&cli.BoolFlag{
			Name:        "disable-wikipedia",
			Category:    "Collaborators",
			Usage:       "Disable the wiki command",
			Sources:     cli.EnvVars("JARVIS_DISABLE_WIKIPEDIA"),
			Destination: &x.disableWiki,
		},
		&cli.BoolFlag{
			Name:        "disable-launcher",
			Category:    "Collaborators",
			Usage:       "Disable opening applications and browsers from the chat command",
			Sources:     cli.EnvVars("JARVIS_DISABLE_LAUNCHER"),
			Destination: &x.disableLauncher,
		},
	}
}

func (x Collaborators) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("wikipedia_language", x.wikiLanguage),
		slog.Bool("wikipedia", !x.disableWiki),
		slog.Bool("launcher", !x.disableLauncher),
	)
}

// Encyclopedia returns the Wikipedia client, or nil when it is disabled
func (x *Collaborators) Encyclopedia() interfaces.Encyclopedia {
	if x.disableWiki {
		return nil
	}
	var wikiOpts []wikipedia.Option
	if x.wikiLanguage != "" {
		wikiOpts = append(wikiOpts, wikipedia.WithLanguage(x.wikiLanguage))
	}
	return wikipedia.New(wikiOpts...)
}

// Options returns assistant options for collaborators that are safe on any
// surface. Host process launching is not included; see HostOptions.
func (x *Collaborators) Options() []usecase.Option {
	var opts []usecase.Option
	if enc := x.Encyclopedia(); enc != nil {
		opts = append(opts, usecase.WithEncyclopedia(enc))
	}
	return opts
}

// HostOptions returns the process launcher and browser opener. Only the
// local chat command wires them; the HTTP server never does.
func (x *Collaborators) HostOptions() []usecase.Option {
	if x.disableLauncher {
		return nil
	}
	l := launcher.New()
	return []usecase.Option{
		usecase.WithProcessLauncher(l),
		usecase.WithBrowserOpener(l),
	}
}
