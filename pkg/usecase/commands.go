package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/service/calc"
	"github.com/secmon-lab/jarvis/pkg/utils/errutil"
)

const (
	wikiSentences = 2
	searchURLBase = "https://www.google.com/search?q="

	timeLayout    = "03:04 PM"
	dateLayout    = "Monday, January 02, 2006"
	historyLayout = "2006-01-02 15:04:05"
)

// HostInfo describes the machine the assistant runs on
type HostInfo struct {
	OS        string
	Arch      string
	CPUs      int
	GoVersion string
	Hostname  string
}

func currentHostInfo() HostInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return HostInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		GoVersion: runtime.Version(),
		Hostname:  hostname,
	}
}

func timeReply(now time.Time) string {
	return "The current time is " + now.Format(timeLayout)
}

func dateReply(now time.Time) string {
	return "Today's date is " + now.Format(dateLayout)
}

func weatherReply(city string) string {
	if city == "" {
		city = "your location"
	}
	return "Weather feature: For " + city + ", please check weather.com, accuweather.com, or your local weather service!"
}

// builtinCommands returns the built-in commands in registration order.
// Registration order decides fuzzy matches, so new commands go at the end.
func (a *Assistant) builtinCommands() []Command {
	cmds := []Command{
		{Name: "time", Description: "Get current time", Handler: a.cmdTime},
		{Name: "date", Description: "Get current date", Handler: a.cmdDate},
		{Name: "weather", Usage: "weather [city]", Description: "Get weather info", Handler: a.cmdWeather},
		{Name: "search", Usage: "search [query]", Description: "Open web search", Handler: a.cmdSearch},
		{Name: "wiki", Usage: "wiki [query]", Description: "Wikipedia search", Handler: a.cmdWiki},
		{Name: "news", Description: "Get news sources", Handler: a.cmdNews},
		{Name: "joke", Description: "Tell a random joke", Handler: a.cmdJoke},
		{Name: "quote", Description: "Get inspirational quote", Handler: a.cmdQuote},
		{Name: "open", Usage: "open [app]", Description: "Open application", Handler: a.cmdOpen},
		{Name: "save", Usage: "save [filename]", Description: "Save conversation", Handler: a.cmdSave},
		{Name: "history", Description: "Show chat history", Handler: a.cmdHistory},
		{Name: "clear", Description: "Clear history", Handler: a.cmdClear},
		{Name: "help", Description: "Show this help", Handler: a.cmdHelp},
		{Name: "voice", Description: "Toggle voice mode", Handler: a.cmdVoice},
		{Name: "calculate", Usage: "calculate [expr]", Description: "Perform calculation", Handler: a.cmdCalculate},
		{Name: "system", Description: "Show system info", Handler: a.cmdSystem},
		{Name: "calc", Usage: "calc [expr]", Description: "Alias for calculate", AliasOf: "calculate", Handler: a.cmdCalculate},
		{Name: "math", Usage: "math [expr]", Description: "Alias for calculate", AliasOf: "calculate", Handler: a.cmdCalculate},
		{Name: "reset", Description: "Alias for clear", AliasOf: "clear", Handler: a.cmdClear},
	}

	if a.completer != nil {
		cmds = append(cmds,
			Command{Name: "ask", Usage: "ask [prompt]", Description: "Chat with the language model", Handler: a.cmdAsk},
			Command{Name: "ai", Usage: "ai [prompt]", Description: "Generate and save an AI response", Handler: a.cmdAI},
		)
	}

	return cmds
}

func (a *Assistant) cmdTime(_ context.Context, _ Request) (string, error) {
	return timeReply(a.clock()), nil
}

func (a *Assistant) cmdDate(_ context.Context, _ Request) (string, error) {
	return dateReply(a.clock()), nil
}

func (a *Assistant) cmdWeather(_ context.Context, req Request) (string, error) {
	return weatherReply(strings.Join(req.Args, " ")), nil
}

func (a *Assistant) cmdSearch(ctx context.Context, req Request) (string, error) {
	if len(req.Args) == 0 {
		return "Please provide a search query", nil
	}

	query := strings.Join(req.Args, " ")
	searchURL := searchURLBase + url.QueryEscape(query)

	if a.browser == nil {
		return "Search URL: " + searchURL, nil
	}
	if err := a.browser.OpenURL(ctx, searchURL); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to open browser", goerr.V("url", searchURL)), "search failed")
		return "Could not open browser. Search URL: " + searchURL, nil
	}

	return "Opening web search for: " + query, nil
}

func (a *Assistant) cmdWiki(ctx context.Context, req Request) (string, error) {
	if a.encyclopedia == nil {
		return "Wikipedia search unavailable", nil
	}
	if len(req.Args) == 0 {
		return "Please provide a search query", nil
	}

	query := strings.Join(req.Args, " ")
	summary, err := a.encyclopedia.Summarize(ctx, query, wikiSentences)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return fmt.Sprintf("No Wikipedia page found for '%s'", query), nil
		}
		return "", goerr.Wrap(err, "failed to summarize article", goerr.V("query", query))
	}

	return "Wikipedia says: " + summary, nil
}

func (a *Assistant) cmdNews(_ context.Context, _ Request) (string, error) {
	return "Latest news sources:\n" + strings.Join(a.persona.NewsSources, "\n"), nil
}

func (a *Assistant) cmdJoke(_ context.Context, _ Request) (string, error) {
	return a.picker.pick(a.persona.Jokes), nil
}

func (a *Assistant) cmdQuote(_ context.Context, _ Request) (string, error) {
	return a.picker.pick(a.persona.Quotes), nil
}

func (a *Assistant) cmdOpen(ctx context.Context, req Request) (string, error) {
	if len(req.Args) == 0 {
		return "Please specify an application to open", nil
	}
	if a.launcher == nil {
		return "", goerr.Wrap(interfaces.ErrCollaboratorUnavailable, "process launcher is not configured")
	}

	app := strings.Join(req.Args, " ")
	if err := a.launcher.OpenApplication(ctx, app); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to open application", goerr.V("app", app)), "open failed")
		return fmt.Sprintf("Could not open %s", app), nil
	}

	return fmt.Sprintf("Opening %s...", app), nil
}

func (a *Assistant) cmdSave(ctx context.Context, req Request) (string, error) {
	record, err := req.Conversation.Export(ctx, a.sink, strings.Join(req.Args, "_"))
	if err != nil {
		return "", err
	}
	return "Conversation saved to " + record.Name, nil
}

func (a *Assistant) cmdHistory(_ context.Context, req Request) (string, error) {
	entries, omitted := req.Conversation.Recent(DefaultHistoryWindow)
	if len(entries) == 0 {
		return "No conversation history available", nil
	}

	var sb strings.Builder
	sb.WriteString("Conversation History:\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	for _, e := range entries {
		sb.WriteString("[" + e.Timestamp.Format(historyLayout) + "]\n")
		sb.WriteString("You: " + e.Input + "\n")
		sb.WriteString(a.persona.Name + ": " + e.Response + "\n\n")
	}
	if omitted > 0 {
		fmt.Fprintf(&sb, "... (%d more entries)\n", omitted)
		sb.WriteString("Use 'save' command to export full history\n")
	}

	return sb.String(), nil
}

func (a *Assistant) cmdClear(_ context.Context, req Request) (string, error) {
	req.Conversation.Clear()
	return "Conversation history cleared", nil
}

func (a *Assistant) cmdHelp(_ context.Context, _ Request) (string, error) {
	var sb strings.Builder
	title := a.persona.Name + " Commands:"
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len(title)) + "\n")
	for _, cmd := range a.registry.Commands() {
		if cmd.AliasOf != "" {
			continue
		}
		fmt.Fprintf(&sb, "%-17s - %s\n", cmd.Usage, cmd.Description)
	}
	fmt.Fprintf(&sb, "%-17s - Exit %s\n", "exit/quit", a.persona.Name)

	sb.WriteString("\nExamples:\n")
	sb.WriteString("calculate 15 * 8 + 10\n")
	sb.WriteString("wiki artificial intelligence\n")
	sb.WriteString("search go tutorials\n")
	sb.WriteString("open calculator\n")
	sb.WriteString("weather London\n")

	return sb.String(), nil
}

func (a *Assistant) cmdVoice(_ context.Context, req Request) (string, error) {
	if !a.VoiceAvailable() {
		return "Voice features not available", nil
	}
	if req.Conversation.ToggleVoice() {
		return "Voice mode enabled", nil
	}
	return "Voice mode disabled", nil
}

func (a *Assistant) cmdCalculate(_ context.Context, req Request) (string, error) {
	if len(req.Args) == 0 {
		return "Please provide a mathematical expression", nil
	}

	result, err := calc.Evaluate(strings.Join(req.Args, " "))
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

func (a *Assistant) cmdSystem(_ context.Context, _ Request) (string, error) {
	info := a.host()

	var sb strings.Builder
	sb.WriteString("System Information:\n")
	sb.WriteString(strings.Repeat("=", 30) + "\n")
	fmt.Fprintf(&sb, "System: %s\n", info.OS)
	fmt.Fprintf(&sb, "Architecture: %s\n", info.Arch)
	fmt.Fprintf(&sb, "CPUs: %d\n", info.CPUs)
	fmt.Fprintf(&sb, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(&sb, "Hostname: %s\n", info.Hostname)

	return sb.String(), nil
}

func (a *Assistant) cmdAsk(ctx context.Context, req Request) (string, error) {
	if req.Text == "" {
		return "Please provide a prompt", nil
	}

	prompt := req.Conversation.chatPrompt(req.Text)
	reply, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return "", goerr.Wrap(err, "failed to complete chat")
	}

	reply = strings.TrimSpace(reply)
	req.Conversation.appendChat(req.Text, reply)
	return reply, nil
}

func (a *Assistant) cmdAI(ctx context.Context, req Request) (string, error) {
	if req.Text == "" {
		return "Please provide a prompt", nil
	}
	if a.sink == nil {
		return "", goerr.Wrap(interfaces.ErrCollaboratorUnavailable, "export sink is not configured")
	}

	reply, err := a.completer.Complete(ctx, req.Text)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate response")
	}

	record := &model.ExportRecord{
		Name:           model.NewResponseExportName(),
		ConversationID: req.Conversation.ID(),
		Content:        "Prompt:\n" + req.Text + "\n\nResponse:\n" + strings.TrimSpace(reply),
		CreatedAt:      a.clock().Truncate(time.Second),
	}
	if err := a.sink.Put(ctx, record); err != nil {
		return "", goerr.Wrap(errors.Join(model.ErrSinkWrite, err), "failed to save AI response",
			goerr.V(model.ExportNameKey, record.Name))
	}

	return "AI response saved as " + record.Name, nil
}
