package usecase

import (
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/service/calc"
)

// Sentinel errors for use case layer
var (
	// Registry errors
	ErrRegistryFrozen   = goerr.New("command registry is frozen")
	ErrDuplicateCommand = goerr.New("command is already registered")
	ErrInvalidCommand   = goerr.New("invalid command")
	ErrUnknownCommand   = goerr.New("unknown command")

	// Dispatch errors
	ErrHandlerPanic = goerr.New("command handler panicked")

	// Conversation errors
	ErrNothingToExport = goerr.New("conversation has no entries")
	ErrVoiceDisabled   = goerr.New("voice mode is disabled")
)

// Context keys for error values
const (
	CommandKey        = "command"
	ConversationIDKey = "conversation_id"
)

const disambiguationOptionLimit = 5

// UserMessage converts an error raised while handling input into the text
// shown to the user. It never returns an empty string for a non-nil error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var disambiguation *model.DisambiguationError

	switch {
	case errors.Is(err, calc.ErrDisallowed):
		return "Invalid expression: potentially dangerous operation"
	case errors.Is(err, calc.ErrDivisionByZero):
		return "Calculation error: Division by zero"
	case errors.Is(err, calc.ErrNotANumber):
		return "Calculation error: Result is not a number"
	case errors.Is(err, calc.ErrInfinity):
		return "Calculation error: Result is infinity"
	case errors.Is(err, calc.ErrParse), errors.Is(err, calc.ErrUnsupportedConstruct):
		return "Calculation error: Invalid expression"

	case errors.As(err, &disambiguation):
		options := disambiguation.Options
		if len(options) > disambiguationOptionLimit {
			options = options[:disambiguationOptionLimit]
		}
		return "Multiple results found. Try being more specific. Options: " + strings.Join(options, ", ")

	case errors.Is(err, ErrNothingToExport):
		return "No conversation to save"
	case errors.Is(err, model.ErrInvalidExportName):
		return "Invalid file name. Use letters, digits, '.', '_' or '-'"
	case errors.Is(err, model.ErrSinkWrite):
		return "Could not save file"

	case errors.Is(err, interfaces.ErrCollaboratorUnavailable):
		return "Sorry, that feature is not available right now"
	case errors.Is(err, ErrVoiceDisabled):
		return "Voice mode is disabled. Type 'voice' to enable it"
	case errors.Is(err, interfaces.ErrListenTimeout):
		return "Listening timed out."
	case errors.Is(err, interfaces.ErrUnrecognized):
		return "Sorry, I didn't catch that."
	case errors.Is(err, interfaces.ErrDeviceError):
		return "Sorry, the audio device is not working."
	case errors.Is(err, ErrUnknownCommand):
		return "I don't know that command. Type 'help' to see what I can do."
	case errors.Is(err, ErrHandlerPanic):
		return "Sorry, something went wrong while running that command."
	}

	return "Sorry, I couldn't process that."
}

// isUserError reports errors caused by the input rather than by the system.
// They are expected during normal use and not reported as failures.
func isUserError(err error) bool {
	var disambiguation *model.DisambiguationError
	return errors.Is(err, calc.ErrDisallowed) ||
		errors.Is(err, calc.ErrDivisionByZero) ||
		errors.Is(err, calc.ErrNotANumber) ||
		errors.Is(err, calc.ErrInfinity) ||
		errors.Is(err, calc.ErrParse) ||
		errors.Is(err, calc.ErrUnsupportedConstruct) ||
		errors.Is(err, ErrNothingToExport) ||
		errors.Is(err, model.ErrInvalidExportName) ||
		errors.Is(err, interfaces.ErrNotFound) ||
		errors.Is(err, interfaces.ErrCollaboratorUnavailable) ||
		errors.As(err, &disambiguation)
}
