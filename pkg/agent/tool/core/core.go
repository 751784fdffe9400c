package core

import (
	"fmt"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
)

// New builds the tools offered to the language model behind the ask and ai
// commands. The encyclopedia tool is left out when encyclopedia is nil.
func New(clock func() time.Time, encyclopedia interfaces.Encyclopedia) []gollem.Tool {
	if clock == nil {
		clock = time.Now
	}

	tools := []gollem.Tool{
		&calculateTool{},
		&currentTimeTool{clock: clock},
	}
	if encyclopedia != nil {
		tools = append(tools, &searchEncyclopediaTool{encyclopedia: encyclopedia})
	}
	return tools
}

// extractString extracts a non-empty string value from args map
func extractString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	if s == "" {
		return "", fmt.Errorf("%s must not be empty", key)
	}
	return s, nil
}
