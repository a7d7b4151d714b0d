package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tessera"
	"github.com/aretw0/tessera/pkg/adapters/qr"
	"github.com/aretw0/tessera/pkg/core"
)

// Config mirrors config.yaml.
type Config struct {
	Root  string   `yaml:"root"`
	QR    QRConfig `yaml:"qr"`
	Index *bool    `yaml:"index"`
}

// QRConfig holds the encoder settings.
type QRConfig struct {
	Level string `yaml:"level"`
	Size  int    `yaml:"size"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/tessera/config.yaml or its platform equivalent.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tessera", "config.yaml"), nil
}

// LoadConfig reads a YAML config file.
// A missing file yields the zero Config unless explicit is set.
func LoadConfig(path string, explicit bool) (Config, error) {
	var c Config

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return c, nil
		}
		return c, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if _, err := qr.ParseLevel(c.QR.Level); err != nil {
		return c, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if c.QR.Size < 0 {
		return c, fmt.Errorf("invalid config %s: qr.size must be positive", path)
	}
	return c, nil
}

// ResolveConfig loads the config file at path, or the default one when path
// is empty, and applies the --root override.
// A missing default config directory only skips the file.
func ResolveConfig(path string, rootSet bool, root string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			slog.Debug("no config directory", "error", err)
			return Config{}.Merge(rootSet, root), nil
		}
	}

	loaded, err := LoadConfig(path, explicit)
	if err != nil {
		return Config{}, err
	}
	slog.Debug("config loaded", "path", path)
	return loaded.Merge(rootSet, root), nil
}

// Merge applies command line overrides.
func (c Config) Merge(rootSet bool, root string) Config {
	if rootSet {
		c.Root = root
	}
	return c
}

// Options translates the config into library options.
func (c Config) Options(readOnly bool) []tessera.Option {
	level, _ := qr.ParseLevel(c.QR.Level)

	opts := []tessera.Option{
		tessera.WithLogger(slog.Default()),
		tessera.WithReadOnly(readOnly),
		tessera.WithQRLevel(level),
	}
	if c.QR.Size > 0 {
		opts = append(opts, tessera.WithQRSize(c.QR.Size))
	}
	if c.Index != nil {
		opts = append(opts, tessera.WithIndex(*c.Index))
	}
	return opts
}

func newService() *core.Service {
	service, err := tessera.New(cfg.Root, cfg.Options(readOnly)...)
	if err != nil {
		fatal("Failed to initialize tessera", err)
	}
	return service
}
