package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	sentinels := []error{
		config.ErrConfigNotFound,
		config.ErrInvalidConfig,
		config.ErrUnsupportedFormat,
		config.ErrInvalidBackend,
		config.ErrMissingOption,
		config.ErrInvalidLogSettings,
	}

	for i, sentinel := range sentinels {
		wrapped := goerr.Wrap(sentinel, "wrapped", goerr.V(config.ConfigPathKey, "jarvis.toml"))
		for j, other := range sentinels {
			gt.Value(t, errors.Is(wrapped, other)).Equal(i == j)
		}
	}
}

func TestConfigErrors_ContextExtraction(t *testing.T) {
	err := goerr.Wrap(config.ErrInvalidBackend, "unknown backend",
		goerr.V(config.BackendKey, "redis"),
		goerr.V(config.FlagKey, "export-backend"),
	)

	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True()
	values := ge.Values()
	gt.Value(t, values[config.BackendKey]).Equal("redis")
	gt.Value(t, values[config.FlagKey]).Equal("export-backend")
}
