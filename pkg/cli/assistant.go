package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/agent/tool/core"
	"github.com/secmon-lab/jarvis/pkg/cli/config"
	"github.com/secmon-lab/jarvis/pkg/usecase"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// assistantConfig gathers the flags shared by commands that run the assistant
type assistantConfig struct {
	persona       config.Persona
	export        config.Export
	gemini        config.Gemini
	collaborators config.Collaborators
}

func (x *assistantConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.persona.Flags()...)
	flags = append(flags, x.export.Flags()...)
	flags = append(flags, x.gemini.Flags()...)
	flags = append(flags, x.collaborators.Flags()...)
	return flags
}

// build creates the assistant and its export sink. The returned function
// closes the sink.
func (x *assistantConfig) build(ctx context.Context, extra ...usecase.Option) (*usecase.Assistant, func(), error) {
	persona, err := x.persona.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load persona")
	}

	sink, err := x.export.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize export repository")
	}
	closer := func() {
		if err := sink.Close(); err != nil {
			logging.Default().Error("failed to close export repository", "error", err.Error())
		}
	}

	opts := []usecase.Option{
		usecase.WithPersona(persona),
		usecase.WithExportRepository(sink),
	}
	opts = append(opts, x.collaborators.Options()...)

	tools := core.New(time.Now, x.collaborators.Encyclopedia())
	completer, err := x.gemini.Configure(ctx, persona.Name, tools...)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to configure completion")
	}
	if completer != nil {
		opts = append(opts, usecase.WithCompleter(completer))
		logging.Default().Info("Completion commands enabled", "gemini", x.gemini.LogAttrs(), "tools", len(tools))
	}

	opts = append(opts, extra...)

	assistant, err := usecase.NewAssistant(opts...)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to create assistant")
	}

	logging.Default().Debug("Assistant ready",
		"persona", persona.Name,
		"export", x.export,
		"collaborators", x.collaborators,
		"commands", len(assistant.Registry().Keys()),
	)

	return assistant, closer, nil
}
