package model

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ExportRecord is a transcript stored in an export sink
type ExportRecord struct {
	Name           string
	ConversationID ConversationID
	EntryCount     int
	Content        string // rendered Transcript
	CreatedAt      time.Time
}

var exportNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ValidateExportName checks that name is safe to use as a file or object name
func ValidateExportName(name string) error {
	if !exportNamePattern.MatchString(name) || name == "." || name == ".." {
		return goerr.Wrap(ErrInvalidExportName, "export name must match [A-Za-z0-9._-]{1,128}",
			goerr.V(ExportNameKey, name))
	}
	return nil
}

// NewExportName returns the default name for a conversation saved at t
func NewExportName(t time.Time) string {
	return "jarvis_conversation_" + t.Format("20060102_150405")
}

// NewResponseExportName returns a unique name for a single saved AI response
func NewResponseExportName() string {
	return "response-" + uuid.New().String()
}
