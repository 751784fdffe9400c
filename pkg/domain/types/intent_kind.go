package types

import "fmt"

// IntentKind classifies how raw input was matched to an action
type IntentKind string

const (
	IntentExact     IntentKind = "EXACT"
	IntentFuzzy     IntentKind = "FUZZY"
	IntentUnmatched IntentKind = "UNMATCHED"
	IntentGreeting  IntentKind = "GREETING"
	IntentExit      IntentKind = "EXIT"
)

// AllIntentKinds returns all valid intent kinds
func AllIntentKinds() []IntentKind {
	return []IntentKind{
		IntentExact,
		IntentFuzzy,
		IntentUnmatched,
		IntentGreeting,
		IntentExit,
	}
}

// IsValid checks if the intent kind is valid
func (k IntentKind) IsValid() bool {
	switch k {
	case IntentExact,
		IntentFuzzy,
		IntentUnmatched,
		IntentGreeting,
		IntentExit:
		return true
	default:
		return false
	}
}

// IsCommand reports whether the intent selects a registered command
func (k IntentKind) IsCommand() bool {
	return k == IntentExact || k == IntentFuzzy
}

// String returns the string representation of the intent kind
func (k IntentKind) String() string {
	return string(k)
}

// ParseIntentKind parses a string into an IntentKind
func ParseIntentKind(s string) (IntentKind, error) {
	kind := IntentKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid intent kind: %s", s)
	}
	return kind, nil
}
