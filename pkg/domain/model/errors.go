package model

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrSinkWrite is returned when a transcript could not be written to
	// an export sink. In-memory history is left untouched.
	ErrSinkWrite = goerr.New("failed to write transcript to sink")

	// ErrInvalidTranscript is returned when transcript text cannot be parsed
	ErrInvalidTranscript = goerr.New("invalid transcript")

	// ErrInvalidExportName is returned for export names that are empty or
	// contain characters outside [A-Za-z0-9._-]
	ErrInvalidExportName = goerr.New("invalid export name")

	// ErrInvalidPersona is returned when persona content fails validation
	ErrInvalidPersona = goerr.New("invalid persona")
)

// Context keys for error values
const (
	ExportNameKey = "export_name"
	LineKey       = "line"
)

// DisambiguationError is returned by an encyclopedia lookup when the query
// matches several pages.
type DisambiguationError struct {
	Query   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("%q may refer to: %s", e.Query, strings.Join(e.Options, ", "))
}
