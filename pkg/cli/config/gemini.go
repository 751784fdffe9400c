package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/jarvis/pkg/service/completion"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini LLM client
type Gemini struct {
	projectID string
	location  string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Category:    "Gemini",
			Usage:       "Google Cloud project ID for Gemini API (enables the ask and ai commands)",
			Sources:     cli.EnvVars("JARVIS_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Category:    "Gemini",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("JARVIS_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	}
}

// IsConfigured reports whether a Gemini project is set
func (g *Gemini) IsConfigured() bool {
	return g.projectID != ""
}

// Configure creates a completion client backed by Gemini.
// Returns nil if projectID is not configured (completion commands will be disabled).
// tools are offered to the model while it composes a reply.
func (g *Gemini) Configure(ctx context.Context, assistantName string, tools ...gollem.Tool) (*completion.Client, error) {
	if !g.IsConfigured() {
		return nil, nil
	}

	llmClient, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	client, err := completion.New(llmClient,
		completion.WithAssistantName(assistantName),
		completion.WithTools(tools...),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create completion client")
	}

	return client, nil
}
