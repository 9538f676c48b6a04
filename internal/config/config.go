// Package config loads editor settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/eykd/tanmark-go/internal/logger"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = ".tanmark.yml"

// Config represents the tanmark configuration
type Config struct {
	Theme  Theme  `yaml:"theme"`
	Editor Editor `yaml:"editor"`
	System System `yaml:"system"`
	Assets Assets `yaml:"assets"`
	Log    Log    `yaml:"log"`

	// Path is the file the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

type Theme struct {
	Current string `yaml:"current"`
}

type Editor struct {
	FontFamily         string  `yaml:"fontFamily"`
	FontSize           int     `yaml:"fontSize"`
	LineHeight         float64 `yaml:"lineHeight"`
	ShowLineNumbers    bool    `yaml:"showLineNumbers"`
	AlwaysShowMarkdown bool    `yaml:"alwaysShowMarkdown"`
}

type System struct {
	AutoSave         bool          `yaml:"autoSave"`
	AutoSaveInterval time.Duration `yaml:"autoSaveInterval"`
}

type Assets struct {
	Dir string `yaml:"dir"`
}

type Log struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Theme: Theme{Current: "light"},
		Editor: Editor{
			FontFamily: "system-ui",
			FontSize:   16,
			LineHeight: 1.6,
		},
		System: System{
			AutoSave:         true,
			AutoSaveInterval: 5 * time.Second,
		},
		Assets: Assets{Dir: "assets"},
		Log:    Log{Level: "info"},
	}
}

// UserConfigPath returns the per-user config file path.
// Can be overridden for testing
var UserConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "tanmark", "config.yml")
}

// Load reads the project config in dir, falling back to the user config and
// then to defaults. Fields missing from a file keep their default values.
func Load(dir string) (*Config, error) {
	for _, path := range []string{filepath.Join(dir, ProjectFile), UserConfigPath()} {
		cfg, err := loadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return DefaultConfig(), nil
}

// LoadWithLogger is Load, logging which file was used.
func LoadWithLogger(dir string, log *logger.Logger) (*Config, error) {
	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}
	log.ConfigLoaded(cfg.Path, cfg.System.AutoSave, cfg.System.AutoSaveInterval)
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Editor.FontSize <= 0 {
		return fmt.Errorf("editor.fontSize must be positive, got %d", c.Editor.FontSize)
	}
	if c.Editor.LineHeight <= 0 {
		return fmt.Errorf("editor.lineHeight must be positive, got %g", c.Editor.LineHeight)
	}
	if c.System.AutoSaveInterval <= 0 {
		return fmt.Errorf("system.autoSaveInterval must be positive, got %s", c.System.AutoSaveInterval)
	}
	if c.Assets.Dir == "" {
		return errors.New("assets.dir must not be empty")
	}
	if filepath.IsAbs(c.Assets.Dir) {
		return fmt.Errorf("assets.dir must be relative, got %q", c.Assets.Dir)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
