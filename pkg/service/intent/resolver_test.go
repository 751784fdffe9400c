package intent_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/domain/types"
	"github.com/secmon-lab/jarvis/pkg/service/intent"
)

type staticKeys []string

func (k staticKeys) Keys() []string { return k }

var registry = staticKeys{
	"time", "date", "weather", "search", "wiki", "news", "joke", "quote",
	"open", "save", "history", "clear", "help", "voice", "calculate", "system",
}

func TestResolve(t *testing.T) {
	r := intent.New(registry)

	tests := []struct {
		name    string
		raw     string
		kind    types.IntentKind
		command string
		args    []string
	}{
		{"exact", "time", types.IntentExact, "time", []string{}},
		{"exact with args", "Wiki Alan  Turing", types.IntentExact, "wiki", []string{"alan", "turing"}},
		{"prefix", "tim", types.IntentFuzzy, "time", []string{}},
		{"prefix with args", "calc 2+2", types.IntentFuzzy, "calculate", []string{"2+2"}},
		{"substring", "story", types.IntentFuzzy, "history", []string{}},
		{"registration order wins", "e", types.IntentFuzzy, "time", []string{}},
		{"registration order wins for substring", "s", types.IntentFuzzy, "search", []string{}},
		{"unmatched", "xyz123", types.IntentUnmatched, "", nil},
		{"farewell", "bye now", types.IntentExit, "", nil},
		{"farewell uppercase", "QUIT", types.IntentExit, "", nil},
		{"greeting", "Hello Jarvis", types.IntentGreeting, "", nil},
		{"greeting is not fuzzy matched", "hi", types.IntentGreeting, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := r.Resolve(tt.raw)
			gt.Value(t, m.Kind).Equal(tt.kind)
			gt.Value(t, m.Command).Equal(tt.command)
			gt.Value(t, m.Raw).Equal(tt.raw)
			if tt.kind.IsCommand() {
				gt.Value(t, m.Args).Equal(tt.args)
			}
		})
	}
}

func TestResolve_Empty(t *testing.T) {
	r := intent.New(registry)
	for _, raw := range []string{"", "   ", "\t\n"} {
		m := r.Resolve(raw)
		gt.Value(t, m.Kind).Equal(types.IntentUnmatched)
		gt.Value(t, m.Raw).Equal("")
	}
}

func TestResolve_ExactBeatsEarlierFuzzy(t *testing.T) {
	// "clear" contains "ear" but an exact key registered later still wins
	r := intent.New(staticKeys{"clear", "ear"})
	m := r.Resolve("ear")
	gt.Value(t, m.Kind).Equal(types.IntentExact)
	gt.Value(t, m.Command).Equal("ear")
}

func TestResolve_CustomKeywords(t *testing.T) {
	r := intent.New(registry,
		intent.WithFarewells("later"),
		intent.WithGreetings("yo"),
	)

	gt.Value(t, r.Resolve("later").Kind).Equal(types.IntentExit)
	gt.Value(t, r.Resolve("yo").Kind).Equal(types.IntentGreeting)
	// replaced keywords no longer apply
	gt.Value(t, r.Resolve("bye").Kind).Equal(types.IntentUnmatched)
}
