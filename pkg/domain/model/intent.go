package model

import "github.com/secmon-lab/jarvis/pkg/domain/types"

// IntentMatch is the result of resolving raw user input. Command and Args
// are set only for EXACT and FUZZY matches; Raw always holds the original
// input.
type IntentMatch struct {
	Kind    types.IntentKind
	Command string
	Args    []string
	Raw     string
}

// Exact builds an EXACT match
func Exact(command string, args []string, raw string) IntentMatch {
	return IntentMatch{Kind: types.IntentExact, Command: command, Args: args, Raw: raw}
}

// Fuzzy builds a FUZZY match
func Fuzzy(command string, args []string, raw string) IntentMatch {
	return IntentMatch{Kind: types.IntentFuzzy, Command: command, Args: args, Raw: raw}
}

// Unmatched builds an UNMATCHED result carrying the raw text
func Unmatched(raw string) IntentMatch {
	return IntentMatch{Kind: types.IntentUnmatched, Raw: raw}
}
