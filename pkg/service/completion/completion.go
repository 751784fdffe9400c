package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
)

// Client continues a chat transcript with an LLM
type Client struct {
	llmClient     gollem.LLMClient
	assistantName string
	systemPrompt  string
	tools         []gollem.Tool
}

var _ interfaces.Completer = &Client{}

// Option is a functional option for client configuration
type Option func(*Client)

// WithAssistantName sets the name the model answers as
func WithAssistantName(name string) Option {
	return func(c *Client) {
		c.assistantName = name
	}
}

// WithSystemPrompt replaces the generated system prompt
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

// WithTools lets the model call tools before it replies
func WithTools(tools ...gollem.Tool) Option {
	return func(c *Client) {
		c.tools = append(c.tools, tools...)
	}
}

// New creates a completion client on top of an LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (*Client, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{
		llmClient:     llmClient,
		assistantName: "Jarvis",
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.systemPrompt == "" {
		c.systemPrompt = buildSystemPrompt(c.assistantName)
	}

	return c, nil
}

func buildSystemPrompt(name string) string {
	return fmt.Sprintf(`You are %[1]s, a friendly personal assistant.
The user message is a chat transcript whose lines start with "You:" or "%[1]s:".
Write only the next reply of %[1]s. Keep it short and do not repeat the speaker label.`, name)
}

// Complete generates the continuation of promptContext. Every session is
// fresh; the caller carries the conversation in promptContext.
func (c *Client) Complete(ctx context.Context, promptContext string) (string, error) {
	var texts []string
	if len(c.tools) > 0 {
		agent := gollem.New(c.llmClient,
			gollem.WithSystemPrompt(c.systemPrompt),
			gollem.WithTools(c.tools...),
		)
		resp, err := agent.Execute(ctx, gollem.Text(promptContext))
		if err != nil {
			return "", goerr.Wrap(errors.Join(interfaces.ErrCollaborator, err), "failed to execute agent")
		}
		if resp != nil {
			texts = resp.Texts
		}
	} else {
		session, err := c.llmClient.NewSession(ctx,
			gollem.WithSessionSystemPrompt(c.systemPrompt),
		)
		if err != nil {
			return "", goerr.Wrap(errors.Join(interfaces.ErrCollaborator, err), "failed to create LLM session")
		}

		resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(promptContext)})
		if err != nil {
			return "", goerr.Wrap(errors.Join(interfaces.ErrCollaborator, err), "failed to generate content from LLM")
		}
		if resp != nil {
			texts = resp.Texts
		}
	}
	if len(texts) == 0 {
		return "", goerr.Wrap(interfaces.ErrCollaborator, "LLM returned no text")
	}

	reply := strings.TrimSpace(strings.Join(texts, "\n"))
	// Models sometimes echo the speaker label despite the instruction
	reply = strings.TrimSpace(strings.TrimPrefix(reply, c.assistantName+":"))

	return reply, nil
}
