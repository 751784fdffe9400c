package usecase_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/service/calc"
	"github.com/secmon-lab/jarvis/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		usecase.ErrRegistryFrozen,
		usecase.ErrDuplicateCommand,
		usecase.ErrInvalidCommand,
		usecase.ErrUnknownCommand,
		usecase.ErrHandlerPanic,
		usecase.ErrNothingToExport,
		usecase.ErrVoiceDisabled,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			gt.Bool(t, errors.Is(a, b)).False()
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"disallowed", goerr.Wrap(calc.ErrDisallowed, "rejected"), "Invalid expression: potentially dangerous operation"},
		{"division by zero", goerr.Wrap(calc.ErrDivisionByZero, "eval"), "Calculation error: Division by zero"},
		{"nan", calc.ErrNotANumber, "Calculation error: Result is not a number"},
		{"infinity", calc.ErrInfinity, "Calculation error: Result is infinity"},
		{"parse", goerr.Wrap(calc.ErrParse, "bad"), "Calculation error: Invalid expression"},
		{"unsupported", goerr.Wrap(calc.ErrUnsupportedConstruct, "bad"), "Calculation error: Invalid expression"},
		{"nothing to export", usecase.ErrNothingToExport, "No conversation to save"},
		{"sink write", goerr.Wrap(errors.Join(model.ErrSinkWrite, fmt.Errorf("disk full")), "export"), "Could not save file"},
		{"unavailable", goerr.Wrap(interfaces.ErrCollaboratorUnavailable, "no launcher"), "Sorry, that feature is not available right now"},
		{"listen timeout", goerr.Wrap(interfaces.ErrListenTimeout, "listen"), "Listening timed out."},
		{"unrecognized", goerr.Wrap(interfaces.ErrUnrecognized, "listen"), "Sorry, I didn't catch that."},
		{"unknown", fmt.Errorf("boom"), "Sorry, I couldn't process that."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, usecase.UserMessage(tt.err)).Equal(tt.want)
		})
	}
}

func TestUserMessage_Disambiguation(t *testing.T) {
	err := goerr.Wrap(&model.DisambiguationError{
		Query:   "mercury",
		Options: []string{"a", "b", "c", "d", "e", "f", "g"},
	}, "failed to summarize")

	gt.Value(t, usecase.UserMessage(err)).
		Equal("Multiple results found. Try being more specific. Options: a, b, c, d, e")
}
