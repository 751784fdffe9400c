package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/repository/memory"
	"github.com/secmon-lab/jarvis/pkg/service/voice"
	"github.com/secmon-lab/jarvis/pkg/usecase"
)

var testTime = time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

func newTestAssistant(t *testing.T) (*usecase.Assistant, *memory.Memory) {
	t.Helper()
	sink := memory.New()
	assistant, err := usecase.NewAssistant(
		usecase.WithClock(func() time.Time { return testTime }),
		usecase.WithExportRepository(sink),
	)
	gt.NoError(t, err).Required()
	return assistant, sink
}

func TestChatSession_Run(t *testing.T) {
	assistant, sink := newTestAssistant(t)
	conv := assistant.NewConversation()

	in := strings.NewReader("time\n\n  calc 2^10  \nsave chat_log\nbye\nnever read\n")
	var out bytes.Buffer

	session := newChatSession(assistant, conv, in, &out, false)
	gt.NoError(t, session.run(context.Background())).Required()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	gt.Array(t, lines).Length(5).Required()
	gt.String(t, lines[0]).Contains("Jarvis: ")
	gt.Value(t, lines[1]).Equal("Jarvis: The current time is 03:04 PM")
	gt.Value(t, lines[2]).Equal("Jarvis: 2^10 = 1024")
	gt.Value(t, lines[3]).Equal("Jarvis: Conversation saved to chat_log")

	// the farewell is not recorded and nothing after it is read
	gt.Value(t, conv.Len()).Equal(3)

	record, err := sink.Get(context.Background(), "chat_log")
	gt.NoError(t, err).Required()
	gt.Value(t, record.EntryCount).Equal(2)
}

func TestChatSession_EOF(t *testing.T) {
	assistant, _ := newTestAssistant(t)
	conv := assistant.NewConversation()

	var out bytes.Buffer
	session := newChatSession(assistant, conv, strings.NewReader("date"), &out, false)
	gt.NoError(t, session.run(context.Background())).Required()

	gt.String(t, out.String()).Contains("Jarvis: Today's date is Tuesday, January 02, 2024")
	gt.Value(t, conv.Len()).Equal(1)
}

func TestChatSession_Cancelled(t *testing.T) {
	assistant, _ := newTestAssistant(t)
	conv := assistant.NewConversation()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	session := newChatSession(assistant, conv, strings.NewReader("time\n"), &out, false)
	gt.NoError(t, session.run(ctx)).Required()
	gt.Value(t, conv.Len()).Equal(0)
}

func TestChatSession_InteractivePrompt(t *testing.T) {
	assistant, _ := newTestAssistant(t)
	conv := assistant.NewConversation()

	var out bytes.Buffer
	session := newChatSession(assistant, conv, strings.NewReader("quit\n"), &out, true)
	gt.NoError(t, session.run(context.Background())).Required()
	gt.String(t, out.String()).Contains("You:")
}

func TestChatSession_VoiceFallsBackToTyping(t *testing.T) {
	assistant, err := usecase.NewAssistant(
		usecase.WithClock(func() time.Time { return testTime }),
		usecase.WithSpeech(voice.Unavailable{}, nil),
	)
	gt.NoError(t, err).Required()
	conv := assistant.NewConversation()
	conv.SetVoice(true)

	var out bytes.Buffer
	session := newChatSession(assistant, conv, strings.NewReader("time\nexit\n"), &out, false)
	gt.NoError(t, session.run(context.Background())).Required()
	gt.String(t, out.String()).Contains("Jarvis: The current time is 03:04 PM")
	gt.Value(t, conv.Len()).Equal(1)
}

func TestChatSession_OverlongLineIsSkipped(t *testing.T) {
	assistant, _ := newTestAssistant(t)
	conv := assistant.NewConversation()

	in := strings.Repeat("a", 2*maxInputLine) + "\ntime\nbye\n"
	var out bytes.Buffer
	session := newChatSession(assistant, conv, strings.NewReader(in), &out, false)
	gt.NoError(t, session.run(context.Background())).Required()

	gt.String(t, out.String()).Contains("Jarvis: Sorry, that message is too long.")
	gt.String(t, out.String()).Contains("Jarvis: The current time is 03:04 PM")
	gt.Value(t, conv.Len()).Equal(1)
}

func TestChatSession_LineAtLimit(t *testing.T) {
	assistant, _ := newTestAssistant(t)
	conv := assistant.NewConversation()

	long := "calc 1+1" + strings.Repeat(" ", maxInputLine-len("calc 1+1"))
	var out bytes.Buffer
	session := newChatSession(assistant, conv, strings.NewReader(long+"\nbye\n"), &out, false)
	gt.NoError(t, session.run(context.Background())).Required()

	gt.String(t, out.String()).Contains("Jarvis: 1+1 = 2")
}

type brokenPipe struct{}

func (brokenPipe) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestChatSession_OutputFailureKeepsRunning(t *testing.T) {
	assistant, _ := newTestAssistant(t)
	conv := assistant.NewConversation()

	session := newChatSession(assistant, conv, strings.NewReader("time\ndate\nbye\n"), brokenPipe{}, false)
	gt.NoError(t, session.run(context.Background())).Required()
	gt.Value(t, conv.Len()).Equal(2)
}

func TestPrintExports(t *testing.T) {
	now := testTime.Add(3 * time.Minute)

	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		gt.NoError(t, printExports(&out, nil, now)).Required()
		gt.Value(t, out.String()).Equal("No saved conversations\n")
	})

	t.Run("records", func(t *testing.T) {
		records := []*model.ExportRecord{
			{Name: "chat_log", EntryCount: 2, Content: strings.Repeat("x", 2048), CreatedAt: testTime},
		}
		var out bytes.Buffer
		gt.NoError(t, printExports(&out, records, now)).Required()
		gt.String(t, out.String()).Contains("NAME")
		gt.String(t, out.String()).Contains("chat_log")
		gt.String(t, out.String()).Contains("2.0 kB")
		gt.String(t, out.String()).Contains("3 minutes ago")
	})
}
