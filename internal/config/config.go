// Package config resolves client settings from defaults, a TOML file, the
// environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/idilsaglam/todosync/internal/api"
	"github.com/idilsaglam/todosync/internal/model"
)

// FileName is the config file looked up under the user config dir.
const FileName = "config.toml"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigInvalid      = errors.New("invalid config")
)

// Config holds all client settings.
type Config struct {
	Server    string `toml:"server"`
	Filter    string `toml:"filter"`
	Theme     string `toml:"theme"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server:    api.DefaultServer,
		Filter:    string(model.FilterAll),
		Theme:     "classic",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// GetenvFunc looks up one environment variable.
type GetenvFunc func(string) string

// DefaultPath returns $XDG_CONFIG_HOME/todo/config.toml, falling back to
// ~/.config/todo/config.toml. It returns "" if neither can be determined.
func DefaultPath(getenv GetenvFunc) string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "todo", FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "todo", FileName)
}

// Load resolves defaults, then the config file, then the environment.
// An explicit path must exist; the default one is optional. It returns the
// path of the file that was read, if any.
func Load(explicitPath string, getenv GetenvFunc) (Config, string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	path := explicitPath
	mustExist := path != ""
	if !mustExist {
		path = DefaultPath(getenv)
	}

	loaded := ""
	if path != "" {
		ok, err := decodeFile(path, &cfg, mustExist)
		if err != nil {
			return Config{}, "", err
		}
		if ok {
			loaded = path
		}
	}

	applyEnv(&cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, loaded, nil
}

func decodeFile(path string, cfg *Config, mustExist bool) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return false, fmt.Errorf("%w %s: unknown keys: %s", errConfigInvalid, path, strings.Join(keys, ", "))
	}
	return true, nil
}

func applyEnv(cfg *Config, getenv GetenvFunc) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Server, "TODO_SERVER")
	set(&cfg.Filter, "TODO_FILTER")
	set(&cfg.Theme, "TODO_THEME")
	set(&cfg.LogLevel, "TODO_LOG_LEVEL")
	set(&cfg.LogFile, "TODO_LOG_FILE")
}

// Validate checks fields that have a closed set of values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return fmt.Errorf("%w: server is empty", errConfigInvalid)
	}
	if _, err := model.ParseFilter(c.Filter); err != nil {
		return fmt.Errorf("%w: %w", errConfigInvalid, err)
	}
	return nil
}

// FilterValue returns the parsed filter. Call after Validate.
func (c Config) FilterValue() model.Filter {
	f, err := model.ParseFilter(c.Filter)
	if err != nil {
		return model.FilterAll
	}
	return f
}
