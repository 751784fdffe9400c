package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/cli/config"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
)

func TestLogger_Configure(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() {
		logging.SetDefault(original)
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jarvis.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hello")
		closer()

		raw, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(raw)).Contains(`"msg":"hello"`)
	})

	t.Run("console to stderr", func(t *testing.T) {
		closer, err := config.NewLoggerForTest("warn", "console", "stderr").Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "json", "stderr").Configure()
		gt.Error(t, err).Is(config.ErrInvalidLogSettings)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stderr").Configure()
		gt.Error(t, err).Is(config.ErrInvalidLogSettings)
	})
}

func TestCollaborators_Options(t *testing.T) {
	gt.Array(t, config.NewCollaboratorsForTest("en", false, false).Options()).Length(1)
	gt.Array(t, config.NewCollaboratorsForTest("ja", false, true).Options()).Length(1)
	gt.Array(t, config.NewCollaboratorsForTest("", true, false).Options()).Length(0)

	// zero value keeps host launching out of the shared options
	var zero config.Collaborators
	gt.Array(t, zero.Options()).Length(1)
}

func TestCollaborators_HostOptions(t *testing.T) {
	var zero config.Collaborators
	gt.Array(t, zero.HostOptions()).Length(2)
	gt.Array(t, config.NewCollaboratorsForTest("en", false, true).HostOptions()).Length(0)
}

func TestCollaborators_Encyclopedia(t *testing.T) {
	gt.Value(t, config.NewCollaboratorsForTest("en", false, false).Encyclopedia()).NotNil()
	gt.Value(t, config.NewCollaboratorsForTest("en", true, false).Encyclopedia()).Nil()
}
