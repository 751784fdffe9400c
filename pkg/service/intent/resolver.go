package intent

import (
	"strings"

	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/domain/types"
)

// KeySource provides command names in registration order
type KeySource interface {
	Keys() []string
}

var (
	// DefaultFarewells end the conversation
	DefaultFarewells = []string{"exit", "quit", "bye", "goodbye", "farewell"}

	// DefaultGreetings are answered with a canned greeting
	DefaultGreetings = []string{"hello", "hi", "hey", "greetings", "howdy"}
)

// Resolver maps raw text to an IntentMatch. It holds no mutable state and
// is safe for concurrent use when the KeySource is.
type Resolver struct {
	keys      KeySource
	farewells map[string]struct{}
	greetings map[string]struct{}
}

// Option configures a Resolver
type Option func(*Resolver)

// WithFarewells replaces the farewell keywords
func WithFarewells(words ...string) Option {
	return func(r *Resolver) {
		r.farewells = toSet(words)
	}
}

// WithGreetings replaces the greeting keywords
func WithGreetings(words ...string) Option {
	return func(r *Resolver) {
		r.greetings = toSet(words)
	}
}

// New creates a Resolver over keys
func New(keys KeySource, opts ...Option) *Resolver {
	r := &Resolver{
		keys:      keys,
		farewells: toSet(DefaultFarewells),
		greetings: toSet(DefaultGreetings),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve classifies raw. Matching stages, in order: farewell keyword,
// greeting keyword, exact command, fuzzy command, unmatched.
//
// The fuzzy stage picks the first command in registration order whose name
// starts with or contains the first token. Registration order is the only
// tie-break, so reordering commands changes which one short tokens select.
func (r *Resolver) Resolve(raw string) model.IntentMatch {
	tokens := strings.Fields(strings.ToLower(raw))
	if len(tokens) == 0 {
		return model.Unmatched("")
	}

	candidate := tokens[0]
	args := tokens[1:]

	if _, ok := r.farewells[candidate]; ok {
		return model.IntentMatch{Kind: types.IntentExit, Raw: raw}
	}
	if _, ok := r.greetings[candidate]; ok {
		return model.IntentMatch{Kind: types.IntentGreeting, Raw: raw}
	}

	keys := r.keys.Keys()
	for _, key := range keys {
		if key == candidate {
			return model.Exact(key, args, raw)
		}
	}

	for _, key := range keys {
		if strings.HasPrefix(key, candidate) || strings.Contains(key, candidate) {
			return model.Fuzzy(key, args, raw)
		}
	}

	return model.Unmatched(raw)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
