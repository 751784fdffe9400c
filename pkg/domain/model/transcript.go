package model

import (
	"bufio"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	// TranscriptTimeLayout is used for entry stamps. RFC3339 keeps the zone
	// so a transcript parses back to the same instants.
	TranscriptTimeLayout = time.RFC3339

	transcriptTitleSuffix = " Conversation Log"
	transcriptGenerated   = "Generated: "
	transcriptSeparator   = "=================================================="
	transcriptUserLabel   = "You: "
)

// Transcript is the text form of a conversation written to export sinks
type Transcript struct {
	Assistant string
	Generated time.Time
	Entries   []HistoryEntry
}

// Render formats the transcript. Newlines and backslashes inside inputs and
// responses are escaped so each field occupies one line.
func (t *Transcript) Render() string {
	var sb strings.Builder

	sb.WriteString(t.Assistant + transcriptTitleSuffix + "\n")
	sb.WriteString(transcriptGenerated + t.Generated.Format(TranscriptTimeLayout) + "\n")
	sb.WriteString(transcriptSeparator + "\n\n")

	for _, e := range t.Entries {
		sb.WriteString("[" + e.Timestamp.Format(TranscriptTimeLayout) + "]\n")
		sb.WriteString(transcriptUserLabel + escapeField(e.Input) + "\n")
		sb.WriteString(t.Assistant + ": " + escapeField(e.Response) + "\n\n")
	}

	return sb.String()
}

// ParseTranscript reads text produced by Transcript.Render
func ParseTranscript(text string) (*Transcript, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	next := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimSuffix(scanner.Text(), "\r"), true
	}
	fail := func(msg string) error {
		return goerr.Wrap(ErrInvalidTranscript, msg, goerr.V(LineKey, lineNo))
	}

	title, ok := next()
	if !ok || !strings.HasSuffix(title, transcriptTitleSuffix) {
		return nil, fail("missing title line")
	}
	t := &Transcript{Assistant: strings.TrimSuffix(title, transcriptTitleSuffix)}
	responseLabel := t.Assistant + ": "

	generated, ok := next()
	if !ok || !strings.HasPrefix(generated, transcriptGenerated) {
		return nil, fail("missing generated line")
	}
	ts, err := time.Parse(TranscriptTimeLayout, strings.TrimPrefix(generated, transcriptGenerated))
	if err != nil {
		return nil, fail("invalid generated timestamp")
	}
	t.Generated = ts

	if sep, ok := next(); !ok || sep != transcriptSeparator {
		return nil, fail("missing separator")
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
			return nil, fail("expected entry timestamp")
		}
		at, err := time.Parse(TranscriptTimeLayout, line[1:len(line)-1])
		if err != nil {
			return nil, fail("invalid entry timestamp")
		}

		input, ok := next()
		if !ok || !strings.HasPrefix(input, transcriptUserLabel) {
			return nil, fail("expected user line")
		}
		response, ok := next()
		if !ok || !strings.HasPrefix(response, responseLabel) {
			return nil, fail("expected assistant line")
		}

		t.Entries = append(t.Entries, HistoryEntry{
			Timestamp: at,
			Input:     unescapeField(strings.TrimPrefix(input, transcriptUserLabel)),
			Response:  unescapeField(strings.TrimPrefix(response, responseLabel)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to scan transcript")
	}

	return t, nil
}

var fieldEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

func escapeField(s string) string {
	return fieldEscaper.Replace(s)
}

func unescapeField(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
