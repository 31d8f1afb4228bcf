package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/creachadair/jtable"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings read from the configuration file.
type Config struct {
	// PreviewWidth is the number of bytes of an object or array shown in a
	// cell before it is truncated. Zero means the default.
	PreviewWidth int `toml:"preview_width"`

	// MaxColumnWidth, if positive, bounds the display width of each column.
	MaxColumnWidth int `toml:"max_column_width"`

	// JWCC, if true, permits comments and trailing commas in input files.
	JWCC bool `toml:"jwcc"`
}

func defaultConfig() Config {
	return Config{PreviewWidth: jtable.DefaultPreviewWidth, MaxColumnWidth: 40}
}

// defaultConfigPath returns the path of the configuration file used when none
// is given on the command line, or "" if no config directory is known.
func defaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "jtable", "config.toml")
}

// loadConfig reads the configuration file at path over the defaults. If the
// file does not exist and required is false, the defaults are returned.
func loadConfig(path string, required bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	} else if err != nil {
		return cfg, err
	}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	if cfg.PreviewWidth < 0 || cfg.MaxColumnWidth < 0 {
		return cfg, fmt.Errorf("config %q: widths must not be negative", path)
	}
	return cfg, nil
}
