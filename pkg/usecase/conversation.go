package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
)

// DefaultHistoryWindow is the number of entries shown by the history command
const DefaultHistoryWindow = 5

// maxChatTurns bounds the completion context kept per conversation
const maxChatTurns = 20

type chatTurn struct {
	prompt string
	reply  string
}

// Conversation is one session: an append-only history plus the per session
// state used by commands. All methods are safe for concurrent use.
type Conversation struct {
	id        model.ConversationID
	assistant string
	clock     func() time.Time

	mu      sync.Mutex
	entries []model.HistoryEntry
	voice   bool
	chat    []chatTurn
}

// ConversationOption configures a Conversation
type ConversationOption func(*Conversation)

// WithConversationClock sets the clock used for entry timestamps
func WithConversationClock(clock func() time.Time) ConversationOption {
	return func(c *Conversation) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithAssistantName sets the speaker label used in transcripts
func WithAssistantName(name string) ConversationOption {
	return func(c *Conversation) {
		if name != "" {
			c.assistant = name
		}
	}
}

// NewConversation creates an empty conversation with a new ID
func NewConversation(opts ...ConversationOption) *Conversation {
	c := &Conversation{
		id:        model.NewConversationID(),
		assistant: model.DefaultPersona().Name,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the conversation ID
func (c *Conversation) ID() model.ConversationID {
	return c.id
}

// Record appends an exchange. A clock that goes backwards is clamped to the
// previous entry so timestamps never decrease.
func (c *Conversation) Record(input, response string) model.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := model.NewHistoryEntry(c.clock(), input, response)
	if n := len(c.entries); n > 0 && entry.Timestamp.Before(c.entries[n-1].Timestamp) {
		entry.Timestamp = c.entries[n-1].Timestamp
	}

	c.entries = append(c.entries, entry)
	return entry
}

// Recent returns the last n entries, oldest first, and the number of older
// entries left out.
func (c *Conversation) Recent(n int) ([]model.HistoryEntry, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 {
		return []model.HistoryEntry{}, len(c.entries)
	}

	start := max(len(c.entries)-n, 0)
	recent := make([]model.HistoryEntry, len(c.entries)-start)
	copy(recent, c.entries[start:])
	return recent, start
}

// All returns a copy of every entry, oldest first
func (c *Conversation) All() []model.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := make([]model.HistoryEntry, len(c.entries))
	copy(all, c.entries)
	return all
}

// Len returns the number of entries
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry and the completion context. Voice mode is kept.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.chat = nil
}

// Transcript renders the current history
func (c *Conversation) Transcript() *model.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]model.HistoryEntry, len(c.entries))
	copy(entries, c.entries)

	return &model.Transcript{
		Assistant: c.assistant,
		Generated: c.clock().Truncate(time.Second),
		Entries:   entries,
	}
}

// Export writes the full history to sink under name. An empty name is
// replaced with a timestamped default. On a sink failure the returned error
// matches model.ErrSinkWrite and the history is left as is.
func (c *Conversation) Export(ctx context.Context, sink interfaces.ExportRepository, name string) (*model.ExportRecord, error) {
	if sink == nil {
		return nil, goerr.Wrap(interfaces.ErrCollaboratorUnavailable, "export sink is not configured")
	}

	transcript := c.Transcript()
	if len(transcript.Entries) == 0 {
		return nil, goerr.Wrap(ErrNothingToExport, "cannot export conversation",
			goerr.V(ConversationIDKey, c.id))
	}

	if name == "" {
		name = model.NewExportName(transcript.Generated)
	}
	if err := model.ValidateExportName(name); err != nil {
		return nil, err
	}

	record := &model.ExportRecord{
		Name:           name,
		ConversationID: c.id,
		EntryCount:     len(transcript.Entries),
		Content:        transcript.Render(),
		CreatedAt:      transcript.Generated,
	}

	if err := sink.Put(ctx, record); err != nil {
		return nil, goerr.Wrap(errors.Join(model.ErrSinkWrite, err), "failed to export conversation",
			goerr.V(model.ExportNameKey, name),
			goerr.V(ConversationIDKey, c.id))
	}

	return record, nil
}

// VoiceEnabled reports whether replies are spoken
func (c *Conversation) VoiceEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

// SetVoice turns voice mode on or off
func (c *Conversation) SetVoice(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voice = enabled
}

// ToggleVoice flips voice mode and returns the new state
func (c *Conversation) ToggleVoice() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voice = !c.voice
	return c.voice
}

// chatPrompt builds the completion prompt from previous turns followed by
// prompt.
func (c *Conversation) chatPrompt(prompt string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sb strings.Builder
	for _, turn := range c.chat {
		sb.WriteString("You: " + turn.prompt + "\n")
		sb.WriteString(c.assistant + ": " + turn.reply + "\n")
	}
	sb.WriteString("You: " + prompt + "\n")
	sb.WriteString(c.assistant + ": ")
	return sb.String()
}

func (c *Conversation) appendChat(prompt, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.chat = append(c.chat, chatTurn{prompt: prompt, reply: reply})
	if len(c.chat) > maxChatTurns {
		c.chat = c.chat[len(c.chat)-maxChatTurns:]
	}
}

func (c *Conversation) chatTurns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chat)
}
