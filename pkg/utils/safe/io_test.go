package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/utils/safe"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

type countingCloser struct{ closed int }

func (c *countingCloser) Close() error {
	c.closed++
	return errors.New("already closed")
}

func TestFprintf(t *testing.T) {
	var buf bytes.Buffer
	safe.Fprintf(context.Background(), &buf, "Jarvis: %s\n", "hello")
	gt.Value(t, buf.String()).Equal("Jarvis: hello\n")

	// must not panic
	safe.Fprintf(context.Background(), failingWriter{}, "x")
	safe.Fprintf(context.Background(), nil, "x")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	safe.Write(context.Background(), &buf, []byte("data"))
	gt.Value(t, buf.String()).Equal("data")
	safe.Write(context.Background(), failingWriter{}, []byte("data"))
}

func TestClose(t *testing.T) {
	c := &countingCloser{}
	safe.Close(context.Background(), c)
	gt.Value(t, c.closed).Equal(1)
	safe.Close(context.Background(), nil)
}
