package core

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/jarvis/pkg/agent/tool"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
)

const encyclopediaSentences = 3

// searchEncyclopediaTool summarizes an encyclopedia article
type searchEncyclopediaTool struct {
	encyclopedia interfaces.Encyclopedia
}

func (t *searchEncyclopediaTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__search_encyclopedia",
		Description: "Look up a topic in the encyclopedia and return a short summary. Ambiguous topics return a list of candidate titles instead",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "Topic to look up",
				Required:    true,
			},
		},
	}
}

func (t *searchEncyclopediaTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, err := extractString(args, "query")
	if err != nil {
		return nil, err
	}

	tool.Report(ctx, "Looking up %q...", query)
	summary, err := t.encyclopedia.Summarize(ctx, query, encyclopediaSentences)
	if err != nil {
		var disambiguation *model.DisambiguationError
		switch {
		case errors.As(err, &disambiguation):
			return map[string]any{"query": query, "candidates": disambiguation.Options}, nil
		case errors.Is(err, interfaces.ErrNotFound):
			return map[string]any{"query": query, "found": false}, nil
		}
		return nil, goerr.Wrap(err, "failed to search encyclopedia", goerr.V("query", query))
	}

	return map[string]any{"query": query, "found": true, "summary": summary}, nil
}
