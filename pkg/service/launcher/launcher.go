package launcher

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
)

// Runner starts a process without waiting for it to exit
type Runner func(ctx context.Context, name string, args ...string) error

// Launcher opens desktop applications and URLs with the host's native tools
type Launcher struct {
	goos string
	run  Runner
}

var (
	_ interfaces.ProcessLauncher = &Launcher{}
	_ interfaces.BrowserOpener   = &Launcher{}
)

// Option is a functional option for launcher configuration
type Option func(*Launcher)

// WithOS overrides the detected operating system
func WithOS(goos string) Option {
	return func(l *Launcher) {
		l.goos = goos
	}
}

// WithRunner replaces the process starter
func WithRunner(run Runner) Option {
	return func(l *Launcher) {
		l.run = run
	}
}

func New(opts ...Option) *Launcher {
	l := &Launcher{
		goos: runtime.GOOS,
		run:  startDetached,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// startDetached starts the process and reaps it in the background. GUI
// applications keep running after the call returns.
func startDetached(ctx context.Context, name string, args ...string) error {
	// Not CommandContext: the application must outlive the request
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			logging.From(ctx).Debug("launched process exited with error", "name", name, "error", err.Error())
		}
	}()
	return nil
}

// applicationCommand maps a spoken application name to a command line for
// goos. Unknown names are started as is.
func applicationCommand(goos, app string) []string {
	switch goos {
	case "windows":
		switch {
		case strings.Contains(app, "browser") || strings.Contains(app, "chrome"):
			return []string{"cmd", "/c", "start", "", "chrome"}
		case strings.Contains(app, "notepad"):
			return []string{"notepad"}
		case strings.Contains(app, "calculator"):
			return []string{"calc"}
		case strings.Contains(app, "explorer"):
			return []string{"explorer"}
		default:
			return []string{"cmd", "/c", "start", "", app}
		}

	case "darwin":
		switch {
		case strings.Contains(app, "browser") || strings.Contains(app, "safari"):
			return []string{"open", "-a", "Safari"}
		case strings.Contains(app, "finder"):
			return []string{"open", "-a", "Finder"}
		case strings.Contains(app, "calculator"):
			return []string{"open", "-a", "Calculator"}
		default:
			return []string{"open", "-a", app}
		}

	default:
		switch {
		case strings.Contains(app, "browser") || strings.Contains(app, "firefox"):
			return []string{"firefox"}
		case strings.Contains(app, "terminal"):
			return []string{"gnome-terminal"}
		case strings.Contains(app, "calculator"):
			return []string{"gnome-calculator"}
		default:
			return []string{app}
		}
	}
}

func urlCommand(goos, target string) []string {
	switch goos {
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", target}
	case "darwin":
		return []string{"open", target}
	default:
		return []string{"xdg-open", target}
	}
}

// OpenApplication starts the application named name
func (l *Launcher) OpenApplication(ctx context.Context, name string) error {
	app := strings.ToLower(strings.TrimSpace(name))
	if app == "" {
		return goerr.New("application name is required")
	}

	argv := applicationCommand(l.goos, app)
	if err := l.run(ctx, argv[0], argv[1:]...); err != nil {
		return goerr.Wrap(errors.Join(interfaces.ErrCollaborator, err), "failed to start application",
			goerr.V("app", app), goerr.V("command", argv))
	}

	logging.From(ctx).Info("application started", "app", app, "command", argv[0])
	return nil
}

// OpenURL opens target in the default browser
func (l *Launcher) OpenURL(ctx context.Context, target string) error {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return goerr.New("only http and https URLs can be opened", goerr.V("url", target))
	}

	argv := urlCommand(l.goos, target)
	if err := l.run(ctx, argv[0], argv[1:]...); err != nil {
		return goerr.Wrap(errors.Join(interfaces.ErrCollaborator, err), "failed to open URL",
			goerr.V("url", target), goerr.V("command", argv[0]))
	}

	return nil
}
