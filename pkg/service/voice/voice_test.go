package voice_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/service/voice"
)

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	v := voice.Unavailable{}

	_, err := v.Listen(ctx, time.Second, time.Second)
	gt.Error(t, err).Is(interfaces.ErrCollaboratorUnavailable)

	gt.Error(t, v.Speak(ctx, "hello")).Is(interfaces.ErrCollaboratorUnavailable)
}

func TestEcho(t *testing.T) {
	var buf bytes.Buffer
	e := voice.NewEcho(&buf, "Jarvis")

	gt.NoError(t, e.Speak(context.Background(), "Hello")).Required()
	gt.NoError(t, e.Speak(context.Background(), "Bye")).Required()
	gt.Value(t, buf.String()).Equal("Jarvis says: Hello\nJarvis says: Bye\n")
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed")
}

func TestEcho_WriteFailure(t *testing.T) {
	e := voice.NewEcho(brokenWriter{}, "Jarvis")
	gt.Error(t, e.Speak(context.Background(), "Hello")).Is(interfaces.ErrDeviceError)
}
