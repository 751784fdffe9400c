package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrUnsupportedFormat  = goerr.New("unsupported configuration format")
	ErrInvalidBackend     = goerr.New("invalid export backend")
	ErrMissingOption      = goerr.New("required option is missing")
	ErrInvalidLogSettings = goerr.New("invalid log settings")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendKey    = "backend"
	FlagKey       = "flag"
	LogLevelKey   = "log_level"
	LogFormatKey  = "log_format"
)
