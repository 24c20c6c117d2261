package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"

	ChimeNone   = "none"
	ChimeBell   = "bell"
	ChimeFFPlay = "ffplay"
	ChimePlugin = "plugin"
)

type Config struct {
	StateDir string        `yaml:"-"`
	DBPath   string        `yaml:"-"`
	LogPath  string        `yaml:"-"`
	Instance string        `yaml:"instance"`
	LogLevel string        `yaml:"log_level"`
	Store    StoreConfig   `yaml:"store"`
	Chime    ChimeConfig   `yaml:"chime"`
	Display  DisplayConfig `yaml:"display"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type ChimeConfig struct {
	Driver string       `yaml:"driver"`
	Sound  string       `yaml:"sound"`
	Plugin PluginConfig `yaml:"plugin"`
}

type PluginConfig struct {
	Name   string `yaml:"name"`
	Binary string `yaml:"binary"`
	SHA256 string `yaml:"sha256"`
}

type DisplayConfig struct {
	RunningBackground string `yaml:"running_background"`
	PausedBackground  string `yaml:"paused_background"`
}

func New(stateDir string) (Config, error) {
	if stateDir == "" {
		return Config{}, fmt.Errorf("state dir is required")
	}
	return Config{
		StateDir: stateDir,
		DBPath:   filepath.Join(stateDir, "decktimer.db"),
		LogPath:  filepath.Join(stateDir, "decktimer.log"),
		Instance: "default",
		LogLevel: "info",
		Store:    StoreConfig{Driver: StoreFile},
		Chime:    ChimeConfig{Driver: ChimeBell},
	}, nil
}

// Load overlays the YAML file at path on top of the defaults for stateDir.
// A missing file is not an error.
func Load(path, stateDir string) (Config, error) {
	cfg, err := New(stateDir)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config: %w", err)
			}
		}
	}
	if dsn := os.Getenv("DECKTIMER_MYSQL_DSN"); dsn != "" {
		cfg.Store.DSN = dsn
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, cfg.Validate()
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Chime.Sound, &c.Chime.Plugin.Binary, &c.Display.RunningBackground, &c.Display.PausedBackground} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Clean(filepath.Join(base, *p))
		}
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Instance) == "" {
		return fmt.Errorf("instance is required")
	}
	if c.Instance == "." || c.Instance == ".." || strings.ContainsAny(c.Instance, `/\`) {
		return fmt.Errorf("instance must be a plain name: %q", c.Instance)
	}
	switch c.Store.Driver {
	case StoreFile, StoreSQLite:
	case StoreMySQL:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store.Driver)
	}
	switch c.Chime.Driver {
	case ChimeNone, ChimeBell:
	case ChimeFFPlay:
		if c.Chime.Sound == "" {
			return fmt.Errorf("chime.sound is required for the ffplay driver")
		}
	case ChimePlugin:
		if c.Chime.Plugin.Binary == "" {
			return fmt.Errorf("chime.plugin.binary is required for the plugin driver")
		}
	default:
		return fmt.Errorf("unknown chime driver: %s", c.Chime.Driver)
	}
	return nil
}
