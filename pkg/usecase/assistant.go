package usecase

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/domain/types"
	"github.com/secmon-lab/jarvis/pkg/service/intent"
	"github.com/secmon-lab/jarvis/pkg/utils/async"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
)

// Speech capture limits for Listen
const (
	ListenTimeout     = 10 * time.Second
	ListenPhraseLimit = 15 * time.Second
)

// Reply is the outcome of processing one input
type Reply struct {
	Text      string
	Timestamp time.Time
	Intent    model.IntentMatch

	// Exit is set when the input asked to end the conversation. The reply
	// is a farewell and is not recorded.
	Exit bool
}

// Assistant resolves input, runs the matching command or heuristic and
// records the exchange in the conversation. It holds no per conversation
// state and is shared between conversations.
type Assistant struct {
	persona  *model.Persona
	clock    func() time.Time
	picker   *picker
	registry *Registry
	resolver *intent.Resolver
	fallback *Responder

	sink         interfaces.ExportRepository
	encyclopedia interfaces.Encyclopedia
	launcher     interfaces.ProcessLauncher
	browser      interfaces.BrowserOpener
	completer    interfaces.Completer
	stt          interfaces.SpeechToText
	tts          interfaces.TextToSpeech
	host         func() HostInfo
}

// NewAssistant builds an assistant with the built-in commands registered
// and the registry frozen.
func NewAssistant(opts ...Option) (*Assistant, error) {
	o := newOptions(opts)

	if o.persona == nil {
		o.persona = model.DefaultPersona()
	}
	if err := o.persona.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid persona")
	}
	if o.clock == nil {
		o.clock = time.Now
	}

	a := &Assistant{
		persona:      o.persona,
		clock:        o.clock,
		picker:       newPicker(o.randSource),
		registry:     NewRegistry(),
		sink:         o.sink,
		encyclopedia: o.encyclopedia,
		launcher:     o.launcher,
		browser:      o.browser,
		completer:    o.completer,
		stt:          o.stt,
		tts:          o.tts,
		host:         o.host,
	}
	a.fallback = &Responder{persona: a.persona, clock: a.clock, picker: a.picker}

	for _, cmd := range a.builtinCommands() {
		if err := a.registry.Register(cmd); err != nil {
			return nil, goerr.Wrap(err, "failed to register built-in command")
		}
	}
	a.registry.Freeze()

	a.resolver = intent.New(a.registry)

	return a, nil
}

// Persona returns the persona in use
func (a *Assistant) Persona() *model.Persona {
	return a.persona
}

// Registry returns the frozen command registry
func (a *Assistant) Registry() *Registry {
	return a.registry
}

// VoiceAvailable reports whether any voice collaborator is configured
func (a *Assistant) VoiceAvailable() bool {
	return a.stt != nil || a.tts != nil
}

// NewConversation starts a conversation using the assistant's clock and name
func (a *Assistant) NewConversation() *Conversation {
	return NewConversation(
		WithConversationClock(a.clock),
		WithAssistantName(a.persona.Name),
	)
}

// Greeting returns a random greeting
func (a *Assistant) Greeting() string {
	return a.picker.pick(a.persona.Greetings)
}

// Process handles one input to completion. It never fails: errors are
// turned into reply text.
func (a *Assistant) Process(ctx context.Context, conv *Conversation, raw string) Reply {
	ctx = logging.With(ctx, logging.From(ctx).With("conversation_id", conv.ID().String()))
	match := a.resolver.Resolve(raw)

	var text string
	switch match.Kind {
	case types.IntentExit:
		text = a.picker.pick(a.persona.Farewells)
		a.speak(ctx, conv, text)
		return Reply{
			Text:      text,
			Timestamp: a.clock().Truncate(time.Second),
			Intent:    match,
			Exit:      true,
		}

	case types.IntentGreeting:
		text = a.Greeting()

	case types.IntentExact, types.IntentFuzzy:
		logging.From(ctx).Debug("dispatching command",
			"command", match.Command,
			"kind", match.Kind.String(),
		)
		text = a.registry.Dispatch(ctx, match.Command, Request{
			Args:         match.Args,
			Text:         argumentText(raw),
			Conversation: conv,
		})

	default:
		text = a.fallback.Respond(ctx, raw)
	}

	entry := conv.Record(raw, text)
	a.speak(ctx, conv, text)

	return Reply{
		Text:      text,
		Timestamp: entry.Timestamp,
		Intent:    match,
	}
}

// Listen captures one utterance when voice mode is on
func (a *Assistant) Listen(ctx context.Context, conv *Conversation) (string, error) {
	if !conv.VoiceEnabled() {
		return "", goerr.Wrap(ErrVoiceDisabled, "cannot listen",
			goerr.V(ConversationIDKey, conv.ID()))
	}
	if a.stt == nil {
		return "", goerr.Wrap(interfaces.ErrCollaboratorUnavailable, "speech to text is not configured")
	}

	text, err := a.stt.Listen(ctx, ListenTimeout, ListenPhraseLimit)
	if err != nil {
		return "", goerr.Wrap(err, "failed to listen")
	}
	return text, nil
}

// Export saves the conversation to the configured sink
func (a *Assistant) Export(ctx context.Context, conv *Conversation, name string) (*model.ExportRecord, error) {
	return conv.Export(ctx, a.sink, name)
}

// speak reads text aloud in the background. Failures are logged only.
func (a *Assistant) speak(ctx context.Context, conv *Conversation, text string) {
	if a.tts == nil || text == "" || !conv.VoiceEnabled() {
		return
	}
	async.Dispatch(ctx, "speak", func(ctx context.Context) error {
		return a.tts.Speak(ctx, text)
	})
}

// argumentText returns raw without its first word, keeping case
func argumentText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(trimmed[idx:])
}
