package model

import (
	"time"

	"github.com/google/uuid"
)

// ConversationID identifies one conversation session
type ConversationID string

// NewConversationID generates a time ordered UUID v7 ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the conversation ID
func (id ConversationID) String() string {
	return string(id)
}

// HistoryEntry is one recorded exchange. Entries are never modified after
// they are appended to a conversation.
type HistoryEntry struct {
	Timestamp time.Time // wall clock, second precision
	Input     string
	Response  string
}

// NewHistoryEntry builds an entry with the timestamp truncated to seconds.
// The truncation also drops the monotonic clock reading.
func NewHistoryEntry(at time.Time, input, response string) HistoryEntry {
	return HistoryEntry{
		Timestamp: at.Truncate(time.Second),
		Input:     input,
		Response:  response,
	}
}
