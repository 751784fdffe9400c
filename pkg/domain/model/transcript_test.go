package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
)

func TestTranscript_RoundTrip(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	base := time.Date(2026, 10, 18, 9, 30, 0, 0, loc)

	entries := []model.HistoryEntry{
		model.NewHistoryEntry(base, "hello", "Hi there! Ready to assist you with anything you need."),
		model.NewHistoryEntry(base.Add(1500*time.Millisecond), "calc 2^10", "2^10 = 1024"),
		model.NewHistoryEntry(base.Add(3*time.Second), "system", "System Information:\nOS: linux\nArch: amd64"),
		model.NewHistoryEntry(base.Add(3*time.Second), `path C:\new`, "You: spoofed line\nJarvis: spoofed"),
		model.NewHistoryEntry(base.Add(4*time.Second), "", ""),
	}

	src := &model.Transcript{
		Assistant: "Jarvis",
		Generated: base.Add(time.Minute),
		Entries:   entries,
	}

	parsed, err := model.ParseTranscript(src.Render())
	gt.NoError(t, err).Required()

	gt.Value(t, parsed.Assistant).Equal("Jarvis")
	gt.Bool(t, parsed.Generated.Equal(src.Generated)).True()
	gt.Array(t, parsed.Entries).Length(len(entries)).Required()
	for i, e := range entries {
		gt.Bool(t, parsed.Entries[i].Timestamp.Equal(e.Timestamp)).True()
		gt.Value(t, parsed.Entries[i].Input).Equal(e.Input)
		gt.Value(t, parsed.Entries[i].Response).Equal(e.Response)
	}
}

func TestTranscript_Render(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := &model.Transcript{
		Assistant: "Jarvis",
		Generated: at,
		Entries:   []model.HistoryEntry{model.NewHistoryEntry(at, "joke", "ha")},
	}

	out := tr.Render()
	gt.String(t, out).Contains("Jarvis Conversation Log\n")
	gt.String(t, out).Contains("[2026-01-02T03:04:05Z]\nYou: joke\nJarvis: ha\n")
}

func TestParseTranscript_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no title", "hello\n"},
		{"no generated line", "Jarvis Conversation Log\nfoo\n"},
		{"bad separator", "Jarvis Conversation Log\nGenerated: 2026-01-02T03:04:05Z\n---\n"},
		{"missing user line", "Jarvis Conversation Log\nGenerated: 2026-01-02T03:04:05Z\n" +
			"==================================================\n\n[2026-01-02T03:04:05Z]\nJarvis: hi\n"},
		{"wrong assistant label", "Jarvis Conversation Log\nGenerated: 2026-01-02T03:04:05Z\n" +
			"==================================================\n\n[2026-01-02T03:04:05Z]\nYou: hi\nFriday: hi\n"},
		{"bad timestamp", "Jarvis Conversation Log\nGenerated: 2026-01-02T03:04:05Z\n" +
			"==================================================\n\n[yesterday]\nYou: hi\nJarvis: hi\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.ParseTranscript(tt.text)
			gt.Value(t, err).NotNil()
			gt.Bool(t, errors.Is(err, model.ErrInvalidTranscript)).True()
		})
	}
}

func TestNewHistoryEntry_TruncatesToSecond(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 999_000_000, time.UTC)
	e := model.NewHistoryEntry(at, "in", "out")
	gt.Value(t, e.Timestamp.Nanosecond()).Equal(0)
	gt.Value(t, e.Timestamp.Second()).Equal(5)
}
