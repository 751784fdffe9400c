package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// PersonaFile is the on-disk form of a persona. Pools left empty keep the
// built-in content.
type PersonaFile struct {
	Name        string   `toml:"name" yaml:"name"`
	Greetings   []string `toml:"greetings" yaml:"greetings"`
	Farewells   []string `toml:"farewells" yaml:"farewells"`
	Unknown     []string `toml:"unknown" yaml:"unknown"`
	Jokes       []string `toml:"jokes" yaml:"jokes"`
	Quotes      []string `toml:"quotes" yaml:"quotes"`
	NewsSources []string `toml:"news_sources" yaml:"news_sources"`
}

// ToPersona merges the file over the built-in persona
func (p *PersonaFile) ToPersona() *model.Persona {
	persona := model.DefaultPersona()

	if p.Name != "" {
		persona.Name = p.Name
	}
	pick := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = append([]string(nil), src...)
		}
	}
	pick(&persona.Greetings, p.Greetings)
	pick(&persona.Farewells, p.Farewells)
	pick(&persona.Unknown, p.Unknown)
	pick(&persona.Jokes, p.Jokes)
	pick(&persona.Quotes, p.Quotes)
	pick(&persona.NewsSources, p.NewsSources)

	return persona
}

// LoadPersona reads a persona from a TOML or YAML file chosen by extension
func LoadPersona(path string) (*model.Persona, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "persona file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read persona file", goerr.V(ConfigPathKey, path))
	}

	var file PersonaFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML persona", goerr.V(ConfigPathKey, path))
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse YAML persona", goerr.V(ConfigPathKey, path))
		}
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "persona file must be .toml, .yaml or .yml",
			goerr.V(ConfigPathKey, path), goerr.V("extension", ext))
	}

	persona := file.ToPersona()
	if err := persona.Validate(); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "persona validation failed", goerr.V(ConfigPathKey, path))
	}

	return persona, nil
}

// Persona holds the CLI flag selecting a persona file
type Persona struct {
	path string
}

// Flags returns CLI flags for persona configuration
func (x *Persona) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "persona",
			Aliases:     []string{"p"},
			Usage:       "Persona file (TOML or YAML) overriding the assistant's name and responses",
			Sources:     cli.EnvVars("JARVIS_PERSONA"),
			Destination: &x.path,
		},
	}
}

func (x Persona) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the persona file, or returns the built-in persona when no
// file is set
func (x *Persona) Configure() (*model.Persona, error) {
	if x.path == "" {
		return model.DefaultPersona(), nil
	}
	return LoadPersona(x.path)
}
