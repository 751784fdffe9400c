package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mattn/go-isatty"
	"github.com/secmon-lab/jarvis/pkg/agent/tool"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/service/voice"
	"github.com/secmon-lab/jarvis/pkg/usecase"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
	"github.com/secmon-lab/jarvis/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const maxInputLine = 1 << 20

func cmdChat() *cli.Command {
	var voiceMode bool
	var assistantCfg assistantConfig

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "voice",
			Usage:       "Start in voice mode. Replies are also spoken to stderr, input falls back to typing without a speech engine",
			Sources:     cli.EnvVars("JARVIS_VOICE"),
			Destination: &voiceMode,
		},
	}
	flags = append(flags, assistantCfg.Flags()...)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Start an interactive conversation",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			persona, err := assistantCfg.persona.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load persona")
			}

			opts := assistantCfg.collaborators.HostOptions()
			opts = append(opts, usecase.WithSpeech(voice.Unavailable{}, voice.NewEcho(os.Stderr, persona.Name)))
			assistant, closeAssistant, err := assistantCfg.build(ctx, opts...)
			if err != nil {
				return err
			}
			defer closeAssistant()

			conv := assistant.NewConversation()
			conv.SetVoice(voiceMode)

			ctx = tool.WithProgress(ctx, func(ctx context.Context, message string) {
				safe.Fprintf(ctx, os.Stderr, "%s\n", color.New(color.Faint).Sprint(message))
			})

			interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)
			session := newChatSession(assistant, conv, os.Stdin, os.Stdout, interactive)
			return session.run(ctx)
		},
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// errLineTooLong reports an input line longer than maxInputLine. The line is
// consumed so reading continues with the next one.
var errLineTooLong = goerr.New("input line too long")

// chatSession runs the read-process-print loop for one conversation
type chatSession struct {
	assistant   *usecase.Assistant
	conv        *usecase.Conversation
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	label       string
	userLabel   string
}

func newChatSession(assistant *usecase.Assistant, conv *usecase.Conversation, in io.Reader, out io.Writer, interactive bool) *chatSession {
	label := assistant.Persona().Name + ":"
	userLabel := "You:"
	if interactive {
		label = color.New(color.FgCyan, color.Bold).Sprint(label)
		userLabel = color.New(color.FgGreen, color.Bold).Sprint(userLabel)
	}

	return &chatSession{
		assistant:   assistant,
		conv:        conv,
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
		label:       label,
		userLabel:   userLabel,
	}
}

// run greets the user and processes lines until a farewell, EOF or
// cancellation
func (s *chatSession) run(ctx context.Context) error {
	s.say(ctx, s.assistant.Greeting())

	for ctx.Err() == nil {
		input, ok, err := s.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			if s.interactive {
				safe.Fprintf(ctx, s.out, "\n")
			}
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		reply := s.assistant.Process(ctx, s.conv, input)
		s.say(ctx, reply.Text)
		if reply.Exit {
			return nil
		}
	}

	return nil
}

// next returns the next utterance. In voice mode it listens first and falls
// back to typed input when no speech engine is available. ok is false at EOF.
func (s *chatSession) next(ctx context.Context) (string, bool, error) {
	if s.conv.VoiceEnabled() {
		text, err := s.assistant.Listen(ctx, s.conv)
		switch {
		case err == nil && text != "":
			safe.Fprintf(ctx, s.out, "%s %s\n", s.userLabel, text)
			return text, true, nil
		case err != nil && !errors.Is(err, interfaces.ErrCollaboratorUnavailable):
			logging.From(ctx).Debug("failed to listen", "error", err.Error())
			s.say(ctx, usecase.UserMessage(err))
		}
	}

	if s.interactive {
		safe.Fprintf(ctx, s.out, "%s ", s.userLabel)
	}

	line, err := s.readLine()
	switch {
	case err == nil:
		return line, true, nil
	case errors.Is(err, errLineTooLong):
		logging.From(ctx).Warn("skipped over-long input line", "limit", maxInputLine)
		s.say(ctx, "Sorry, that message is too long.")
		return "", true, nil
	case errors.Is(err, io.EOF):
		return "", false, nil
	default:
		return "", false, goerr.Wrap(err, "failed to read input")
	}
}

// readLine returns the next line without its terminator. A line longer than
// maxInputLine is read to its end and reported as errLineTooLong.
func (s *chatSession) readLine() (string, error) {
	var buf []byte
	tooLong := false

	for {
		chunk, err := s.in.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > maxInputLine+1 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !tooLong && len(buf) == 0 {
				return "", io.EOF
			}
		default:
			return "", err
		}

		if tooLong {
			return "", errLineTooLong
		}
		return strings.TrimRight(string(buf), "\r\n"), nil
	}
}

func (s *chatSession) say(ctx context.Context, text string) {
	safe.Fprintf(ctx, s.out, "%s %s\n", s.label, text)
}
