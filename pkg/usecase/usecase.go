package usecase

import (
	"math/rand/v2"
	"time"

	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
)

type options struct {
	persona      *model.Persona
	clock        func() time.Time
	randSource   rand.Source
	sink         interfaces.ExportRepository
	encyclopedia interfaces.Encyclopedia
	launcher     interfaces.ProcessLauncher
	browser      interfaces.BrowserOpener
	completer    interfaces.Completer
	stt          interfaces.SpeechToText
	tts          interfaces.TextToSpeech
	host         func() HostInfo
}

// Option configures an Assistant
type Option func(*options)

// WithPersona replaces the built-in persona
func WithPersona(persona *model.Persona) Option {
	return func(o *options) {
		o.persona = persona
	}
}

// WithClock sets the clock used for replies and history timestamps
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithRandSource sets the source used to pick canned responses
func WithRandSource(src rand.Source) Option {
	return func(o *options) {
		o.randSource = src
	}
}

// WithExportRepository sets the sink used by save and ai
func WithExportRepository(sink interfaces.ExportRepository) Option {
	return func(o *options) {
		o.sink = sink
	}
}

func WithEncyclopedia(e interfaces.Encyclopedia) Option {
	return func(o *options) {
		o.encyclopedia = e
	}
}

func WithProcessLauncher(l interfaces.ProcessLauncher) Option {
	return func(o *options) {
		o.launcher = l
	}
}

func WithBrowserOpener(b interfaces.BrowserOpener) Option {
	return func(o *options) {
		o.browser = b
	}
}

// WithCompleter enables the ask and ai commands
func WithCompleter(c interfaces.Completer) Option {
	return func(o *options) {
		o.completer = c
	}
}

// WithSpeech sets the voice collaborators. Either may be nil.
func WithSpeech(stt interfaces.SpeechToText, tts interfaces.TextToSpeech) Option {
	return func(o *options) {
		o.stt = stt
		o.tts = tts
	}
}

// WithHostInfo replaces the host information source of the system command
func WithHostInfo(host func() HostInfo) Option {
	return func(o *options) {
		o.host = host
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		persona:    model.DefaultPersona(),
		clock:      time.Now,
		randSource: rand.NewPCG(rand.Uint64(), rand.Uint64()),
		host:       currentHostInfo,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
