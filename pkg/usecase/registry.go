package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/utils/errutil"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
)

// Request is the input passed to a command handler
type Request struct {
	// Args are the lowercased tokens following the command name
	Args []string

	// Text is the remainder of the raw input after the command token with
	// its original case
	Text string

	Conversation *Conversation
}

// Handler runs a command. A returned error is converted to a user message
// by the registry.
type Handler func(ctx context.Context, req Request) (string, error)

// Command is a named action the assistant can dispatch to
type Command struct {
	Name        string
	Description string
	Usage       string

	// AliasOf names the command this one duplicates. Aliases are omitted
	// from help output.
	AliasOf string

	Handler Handler
}

// Registry holds commands in registration order. It is built during start
// up and frozen before the first dispatch; after Freeze it is read only and
// safe to share between conversations.
type Registry struct {
	mu       sync.RWMutex
	commands []*Command
	index    map[string]*Command
	frozen   bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]*Command),
	}
}

// Register adds cmd. Names are stored lowercased.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return goerr.Wrap(ErrRegistryFrozen, "cannot register command", goerr.V(CommandKey, cmd.Name))
	}

	name := strings.ToLower(strings.TrimSpace(cmd.Name))
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return goerr.Wrap(ErrInvalidCommand, "command name must be a single word", goerr.V(CommandKey, cmd.Name))
	}
	if cmd.Handler == nil {
		return goerr.Wrap(ErrInvalidCommand, "command handler is required", goerr.V(CommandKey, name))
	}
	if _, exists := r.index[name]; exists {
		return goerr.Wrap(ErrDuplicateCommand, "cannot register command", goerr.V(CommandKey, name))
	}

	cmd.Name = name
	if cmd.Usage == "" {
		cmd.Usage = name
	}

	r.commands = append(r.commands, &cmd)
	r.index[name] = &cmd
	return nil
}

// Freeze makes the registry read only
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze was called
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Keys returns command names in registration order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, len(r.commands))
	for i, cmd := range r.commands {
		keys[i] = cmd.Name
	}
	return keys
}

// Commands returns copies of the registered commands in registration order
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]Command, len(r.commands))
	for i, cmd := range r.commands {
		cmds[i] = *cmd
	}
	return cmds
}

// Lookup returns the command registered under name
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.index[strings.ToLower(name)]
	if !ok {
		return Command{}, false
	}
	return *cmd, true
}

// Dispatch runs the named command and always returns text for the user.
// Handler errors and panics are logged and converted with UserMessage so
// no command can end the conversation.
func (r *Registry) Dispatch(ctx context.Context, name string, req Request) (reply string) {
	cmd, ok := r.Lookup(name)
	if !ok {
		return UserMessage(goerr.Wrap(ErrUnknownCommand, "command is not registered", goerr.V(CommandKey, name)))
	}

	defer func() {
		if rec := recover(); rec != nil {
			err := goerr.Wrap(ErrHandlerPanic, "recovered from command handler panic",
				goerr.V(CommandKey, cmd.Name),
				goerr.V("panic", rec))
			_ = errutil.Handle(ctx, err, "command handler panicked")
			reply = UserMessage(err)
		}
	}()

	out, err := cmd.Handler(ctx, req)
	if err != nil {
		if isUserError(err) {
			logging.From(ctx).Debug("command rejected input", "command", cmd.Name, "error", err.Error())
		} else {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "command failed", goerr.V(CommandKey, cmd.Name)), "command failed")
		}
		return UserMessage(err)
	}

	return out
}
