// Package config loads the optional fiber.yaml file that selects a platform
// and tunes the runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by [Resolve].
const FileName = "fiber.yaml"

// Renderer names a platform loop.
type Renderer string

const (
	RendererHeadless Renderer = "headless"
	RendererTerminal Renderer = "terminal"
)

const (
	defaultWidth  = 640
	defaultHeight = 480
	defaultIdle   = 50 * time.Millisecond
)

// Config represents fiber.yaml.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// AppConfig describes the application surface.
type AppConfig struct {
	Title    string   `yaml:"title,omitempty"`
	Renderer Renderer `yaml:"renderer,omitempty"`
	// Width and Height size the headless surface. The terminal platform
	// uses the terminal's size instead.
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// RuntimeConfig contains runtime settings.
type RuntimeConfig struct {
	// Idle is how long the headless platform waits without wake-ups before
	// exiting.
	Idle time.Duration `yaml:"idle,omitempty"`
	// DebugPort serves the debug endpoints when non-zero.
	DebugPort int  `yaml:"debugPort,omitempty"`
	Verbose   bool `yaml:"verbose,omitempty"`
}

// LoadOptional reads fiber.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Resolve loads fiber.yaml (if present), fills defaults and validates the
// result. The title defaults to the last element of the module path in
// dir's go.mod, or the directory name outside a module.
func Resolve(dir string) (Config, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return Config{}, err
	}
	cfg.App.Title = strings.TrimSpace(cfg.App.Title)
	if cfg.App.Title == "" {
		modulePath, err := modulePath(dir)
		if err != nil {
			return Config{}, err
		}
		cfg.App.Title = defaultTitle(modulePath, dir)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return *cfg, nil
}

// Default returns a headless configuration with every default applied.
func Default() Config {
	cfg := Config{App: AppConfig{Title: "fiber"}}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.App.Renderer == "" {
		c.App.Renderer = RendererHeadless
	}
	if c.App.Width == 0 {
		c.App.Width = defaultWidth
	}
	if c.App.Height == 0 {
		c.App.Height = defaultHeight
	}
	if c.Runtime.Idle == 0 {
		c.Runtime.Idle = defaultIdle
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.App.Renderer {
	case RendererHeadless, RendererTerminal:
	default:
		return fmt.Errorf("app.renderer must be %q or %q (got %q)", RendererHeadless, RendererTerminal, c.App.Renderer)
	}
	if c.App.Width < 0 || c.App.Height < 0 {
		return fmt.Errorf("app size must not be negative (got %vx%v)", c.App.Width, c.App.Height)
	}
	if c.Runtime.Idle < 0 {
		return fmt.Errorf("runtime.idle must not be negative (got %s)", c.Runtime.Idle)
	}
	if c.Runtime.DebugPort < 0 || c.Runtime.DebugPort > 65535 {
		return fmt.Errorf("runtime.debugPort out of range (got %d)", c.Runtime.DebugPort)
	}
	return nil
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	return modfile.ModulePath(data), nil
}

func defaultTitle(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		if prefix, _, ok := module.SplitPathVersion(modulePath); ok {
			parts := strings.Split(prefix, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "fiber"
	}
	return base
}
