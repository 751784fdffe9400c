package usecase

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/service/calc"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
)

var (
	mathOperatorChars = "+-*/^()="
	questionWords     = []string{"what", "how", "why", "when", "where", "who"}
	identityWords     = []string{"you", "your", "jarvis"}
	gratitudeWords    = []string{"thank", "thanks", "appreciate"}
	positiveWords     = []string{"good", "great", "awesome", "amazing", "excellent"}
	negativeWords     = []string{"bad", "terrible", "awful", "horrible"}
)

const (
	genericQuestionReply = "That's a great question! Try using specific commands like 'wiki [topic]' or 'search [query]' for detailed information."
	gratitudeReply       = "You're welcome! I'm glad I could help. Is there anything else you need?"
	positiveReply        = "I'm glad to hear that! How else can I assist you today?"
	negativeReply        = "I'm sorry to hear that. Is there anything I can help you with to make things better?"
)

// Responder answers input that matched no command using keyword heuristics.
// Keywords match as substrings of the lowercased input.
type Responder struct {
	persona *model.Persona
	clock   func() time.Time
	picker  *picker
}

// NewResponder creates a Responder. A nil persona or clock falls back to
// the defaults.
func NewResponder(persona *model.Persona, clock func() time.Time, src rand.Source) *Responder {
	if persona == nil {
		persona = model.DefaultPersona()
	}
	if clock == nil {
		clock = time.Now
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Responder{persona: persona, clock: clock, picker: newPicker(src)}
}

// Respond applies, in order: arithmetic detection, question keywords,
// sentiment keywords and finally a random reply from the unknown pool.
func (r *Responder) Respond(ctx context.Context, raw string) string {
	lower := strings.ToLower(raw)

	if strings.ContainsAny(raw, mathOperatorChars) && containsDigit(raw) {
		result, err := calc.Evaluate(raw)
		if err != nil {
			logging.From(ctx).Debug("input looked like arithmetic but did not evaluate", "error", err.Error())
			return UserMessage(err)
		}
		return result.String()
	}

	if containsAny(lower, questionWords) {
		switch {
		case strings.Contains(lower, "time"):
			return timeReply(r.clock())
		case strings.Contains(lower, "date"):
			return dateReply(r.clock())
		case strings.Contains(lower, "weather"):
			return weatherReply("")
		case containsAny(lower, identityWords) || r.mentionsName(lower):
			return r.identityReply()
		default:
			return genericQuestionReply
		}
	}

	switch {
	case containsAny(lower, gratitudeWords):
		return gratitudeReply
	case containsAny(lower, positiveWords):
		return positiveReply
	case containsAny(lower, negativeWords):
		return negativeReply
	}

	return r.picker.pick(r.persona.Unknown)
}

func (r *Responder) identityReply() string {
	return "I'm " + r.persona.Name + ", your AI assistant. I'm here to help you with various tasks and questions! Type 'help' to see what I can do."
}

func (r *Responder) mentionsName(lower string) bool {
	name := strings.ToLower(r.persona.Name)
	return name != "" && strings.Contains(lower, name)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
