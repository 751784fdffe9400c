package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/jarvis/pkg/usecase"
)

const (
	// SessionHeader carries the session ID for API clients
	SessionHeader = "X-Session-ID"
	// SessionCookie carries the session ID for browsers
	SessionCookie = "jarvis_session"

	// DefaultMaxSessions bounds the number of conversations kept in memory
	DefaultMaxSessions = 1024

	maxSessionIDLength = 128
)

// session holds one conversation. mu serializes requests on it so each
// message is processed to completion before the next one starts.
type session struct {
	mu       sync.Mutex
	conv     *usecase.Conversation
	lastSeen time.Time
}

// sessionTable maps session IDs to conversations. When full, the least
// recently used session is dropped.
type sessionTable struct {
	mu       sync.Mutex
	sessions map[string]*session
	max      int
	newConv  func() *usecase.Conversation
	now      func() time.Time
}

func newSessionTable(max int, newConv func() *usecase.Conversation) *sessionTable {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &sessionTable{
		sessions: make(map[string]*session),
		max:      max,
		newConv:  newConv,
		now:      time.Now,
	}
}

// get returns the session for id, creating it when missing
func (t *sessionTable) get(id string) *session {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if s, ok := t.sessions[id]; ok {
		s.lastSeen = now
		return s
	}

	if len(t.sessions) >= t.max {
		t.evictOldest()
	}

	s := &session{conv: t.newConv(), lastSeen: now}
	t.sessions[id] = s
	return s
}

func (t *sessionTable) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range t.sessions {
		if oldestID == "" || s.lastSeen.Before(oldest) {
			oldestID, oldest = id, s.lastSeen
		}
	}
	delete(t.sessions, oldestID)
}

func (t *sessionTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func newSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func validSessionID(id string) bool {
	return id != "" && len(id) <= maxSessionIDLength
}

type ctxSessionKey struct{}

func contextWithConversation(ctx context.Context, conv *usecase.Conversation) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, conv)
}

func conversationFromContext(ctx context.Context) *usecase.Conversation {
	conv, _ := ctx.Value(ctxSessionKey{}).(*usecase.Conversation)
	return conv
}
