package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
)

// Unavailable stands in for speech engines on hosts without one. Every call
// fails with interfaces.ErrCollaboratorUnavailable.
type Unavailable struct{}

var (
	_ interfaces.SpeechToText = Unavailable{}
	_ interfaces.TextToSpeech = Unavailable{}
)

func (Unavailable) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	return "", goerr.Wrap(interfaces.ErrCollaboratorUnavailable, "speech recognition engine is not installed")
}

func (Unavailable) Speak(ctx context.Context, text string) error {
	return goerr.Wrap(interfaces.ErrCollaboratorUnavailable, "speech synthesis engine is not installed")
}

// Echo is a TextToSpeech that writes what would be spoken as a line of text.
// It lets voice mode run on hosts without a speech engine.
type Echo struct {
	mu      sync.Mutex
	w       io.Writer
	speaker string
}

var _ interfaces.TextToSpeech = &Echo{}

// NewEcho writes lines of the form "<speaker> says: <text>" to w
func NewEcho(w io.Writer, speaker string) *Echo {
	return &Echo{w: w, speaker: speaker}
}

func (e *Echo) Speak(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintf(e.w, "%s says: %s\n", e.speaker, text); err != nil {
		return goerr.Wrap(errors.Join(interfaces.ErrDeviceError, err), "failed to write speech")
	}
	return nil
}
