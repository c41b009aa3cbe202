package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultLanguage = "powerquery"
	defaultAPIAddr  = ":8085"
	defaultTimeout  = 5 * time.Second
	stateDir        = ".pqlsp"
)

// Config captures every knob shared by the pqlsp entry points.
type Config struct {
	Workspace  string `yaml:"-"`
	ConfigPath string `yaml:"-"`

	Language string        `yaml:"language"`
	Parser   ParserConfig  `yaml:"parser"`
	Library  LibraryConfig `yaml:"library"`
	LogPath  string        `yaml:"log_path"`
	APIAddr  string        `yaml:"api_addr"`
}

// ParserConfig describes the external parser/inspector command.
type ParserConfig struct {
	Command     string        `yaml:"command"`
	ParseArgs   []string      `yaml:"parse_args"`
	InspectArgs []string      `yaml:"inspect_args"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LibraryConfig points at the function-signature catalogues. Either may be
// empty.
type LibraryConfig struct {
	YAML   string `yaml:"yaml"`
	SQLite string `yaml:"sqlite"`
}

// DefaultConfig infers defaults from the current working directory. Errors
// from os.Getwd are ignored so callers can override manually.
func DefaultConfig() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return ForWorkspace(cwd)
}

// ForWorkspace returns the defaults rooted at workspace.
func ForWorkspace(workspace string) Config {
	return Config{
		Workspace:  workspace,
		ConfigPath: filepath.Join(workspace, stateDir, "config.yaml"),
		Language:   defaultLanguage,
		Parser: ParserConfig{
			ParseArgs:   []string{"parse"},
			InspectArgs: []string{"inspect", "--line", "{line}", "--character", "{character}"},
			Timeout:     defaultTimeout,
		},
		Library: LibraryConfig{
			SQLite: filepath.Join(workspace, stateDir, "library.db"),
		},
		LogPath: filepath.Join(workspace, stateDir, "pqlsp.log"),
		APIAddr: defaultAPIAddr,
	}
}

// Load overlays the YAML file at path onto base. A missing file returns
// base unchanged together with an error satisfying os.IsNotExist.
func Load(path string, base Config) (Config, error) {
	if path == "" {
		return base, fmt.Errorf("config path required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ConfigPath = path
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if path == "" {
		return fmt.Errorf("config path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Normalize makes every filesystem path absolute and fills missing defaults.
func (c *Config) Normalize() error {
	if c.Workspace == "" {
		return fmt.Errorf("workspace path required")
	}
	absWorkspace, err := filepath.Abs(c.Workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	c.Workspace = absWorkspace
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	if c.APIAddr == "" {
		c.APIAddr = defaultAPIAddr
	}
	if c.Parser.Timeout < 0 {
		return fmt.Errorf("parser timeout must not be negative, got %s", c.Parser.Timeout)
	}
	if c.Parser.Timeout == 0 {
		c.Parser.Timeout = defaultTimeout
	}
	// Bare command names are looked up on PATH; only relative paths are
	// anchored to the workspace.
	if strings.ContainsRune(c.Parser.Command, filepath.Separator) {
		c.Parser.Command = c.resolve(c.Parser.Command)
	}
	c.LogPath = c.resolve(c.LogPath)
	c.ConfigPath = c.resolve(c.ConfigPath)
	c.Library.YAML = c.resolve(c.Library.YAML)
	c.Library.SQLite = c.resolve(c.Library.SQLite)
	return nil
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Workspace, path)
}
