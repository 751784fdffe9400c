package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrCollaboratorUnavailable means the collaborator is not configured
	ErrCollaboratorUnavailable = goerr.New("collaborator unavailable")

	// ErrCollaborator wraps a runtime failure of an external call
	ErrCollaborator = goerr.New("collaborator error")

	// ErrNotFound is returned by an encyclopedia lookup without a result
	ErrNotFound = goerr.New("not found")

	ErrListenTimeout = goerr.New("listening timed out")
	ErrUnrecognized  = goerr.New("speech not recognized")
	ErrDeviceError   = goerr.New("audio device error")
)

// SpeechToText captures one utterance from the microphone
type SpeechToText interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
}

// TextToSpeech reads text aloud. Callers treat it as best-effort.
type TextToSpeech interface {
	Speak(ctx context.Context, text string) error
}

// Encyclopedia summarizes an article. A query matching several articles
// fails with *model.DisambiguationError.
type Encyclopedia interface {
	Summarize(ctx context.Context, query string, sentences int) (string, error)
}

// ProcessLauncher starts a desktop application by name
type ProcessLauncher interface {
	OpenApplication(ctx context.Context, name string) error
}

// BrowserOpener opens a URL in the user's browser
type BrowserOpener interface {
	OpenURL(ctx context.Context, url string) error
}

// Completer generates a continuation of the given prompt context
type Completer interface {
	Complete(ctx context.Context, promptContext string) (string, error)
}
