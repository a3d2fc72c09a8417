// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/cursor"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Cursor() CursorConfig
	Browser() BrowserConfig

	// Setters used by CLI flags.
	SetCursorPersona(id string)
	SetCursorSeed(seed string)
	SetCursorWander(b bool)
	SetBrowserHeadless(b bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	CursorCfg  CursorConfig  `mapstructure:"cursor" yaml:"cursor"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
}

var _ Interface = (*Config)(nil)

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Cursor() CursorConfig   { return c.CursorCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }

func (c *Config) SetCursorPersona(id string) { c.CursorCfg.Persona = id }
func (c *Config) SetCursorSeed(seed string)  { c.CursorCfg.Seed = seed }
func (c *Config) SetCursorWander(b bool)     { c.CursorCfg.Wander = b }
func (c *Config) SetBrowserHeadless(b bool)  { c.BrowserCfg.Headless = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// CursorConfig selects the behavioral profile and the lowest layer of
// option resolution for every cursor the application creates.
type CursorConfig struct {
	// Persona is a catalog id. Empty runs on Defaults alone.
	Persona string `mapstructure:"persona" yaml:"persona"`
	// PersonaFile is a YAML catalog layered over the built-in one.
	PersonaFile string `mapstructure:"persona_file" yaml:"persona_file"`
	// Seed makes runs reproducible. Empty seeds from system entropy.
	Seed string `mapstructure:"seed" yaml:"seed"`
	// Wander keeps the pointer drifting between directed actions.
	Wander   bool            `mapstructure:"wander" yaml:"wander"`
	Defaults cursor.Defaults `mapstructure:"defaults" yaml:"defaults"`
}

// BrowserConfig tunes the Chrome instance driven by chromedp.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	ExecPath        string         `mapstructure:"exec_path" yaml:"exec_path"`
	UserDataDir     string         `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	UserAgent       string         `mapstructure:"user_agent" yaml:"user_agent"`
	DisableCache    bool           `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Viewport        ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	// NavigationTimeout bounds page loads.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// ShutdownTimeout bounds how long closing the browser may take.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// ViewportConfig is the browser window size in CSS pixels.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ghostcursor")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Cursor --
	v.SetDefault("cursor.persona", "average")
	v.SetDefault("cursor.persona_file", "")
	v.SetDefault("cursor.seed", "")
	v.SetDefault("cursor.wander", false)
	setCursorDefaults(v, cursor.NewDefaults())

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.disable_cache", false)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.viewport.width", 1920)
	v.SetDefault("browser.viewport.height", 1080)
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.shutdown_timeout", "10s")
}

// setCursorDefaults mirrors cursor.NewDefaults into viper so that a config
// file can override any single key.
func setCursorDefaults(v *viper.Viper, d cursor.Defaults) {
	const p = "cursor.defaults."

	v.SetDefault(p+"move.padding_percentage", d.Move.PaddingPercentage)
	v.SetDefault(p+"move.move_delay", d.Move.MoveDelay)
	v.SetDefault(p+"move.randomize_move_delay", d.Move.RandomizeMoveDelay)
	v.SetDefault(p+"move.max_tries", d.Move.MaxTries)
	v.SetDefault(p+"move.overshoot_threshold", d.Move.OvershootThreshold)
	v.SetDefault(p+"move.move_speed", d.Move.MoveSpeed)
	v.SetDefault(p+"move.spread_scale", d.Move.SpreadScale)
	v.SetDefault(p+"move.use_timestamps", d.Move.UseTimestamps)
	v.SetDefault(p+"move.pace", d.Move.Pace)
	v.SetDefault(p+"move.wait_for_selector", d.Move.WaitForSelector)

	v.SetDefault(p+"click.hesitate", d.Click.Hesitate)
	v.SetDefault(p+"click.wait_for_click", d.Click.WaitForClick)
	v.SetDefault(p+"click.move_delay", d.Click.MoveDelay)
	v.SetDefault(p+"click.randomize_move_delay", d.Click.RandomizeMoveDelay)
	v.SetDefault(p+"click.click_count", d.Click.ClickCount)
	v.SetDefault(p+"click.button", string(d.Click.Button))
	v.SetDefault(p+"click.double_click_interval", d.Click.DoubleClickInterval)
	v.SetDefault(p+"click.double_click_drift", d.Click.DoubleClickDrift)
	v.SetDefault(p+"click.micro_jitter", d.Click.MicroJitter)

	v.SetDefault(p+"scroll.scroll_speed", d.Scroll.ScrollSpeed)
	v.SetDefault(p+"scroll.scroll_delay", d.Scroll.ScrollDelay)
	v.SetDefault(p+"scroll.in_view_margin", d.Scroll.InViewMargin)
	v.SetDefault(p+"scroll.wheel_step", d.Scroll.WheelStep)
	v.SetDefault(p+"scroll.wheel_tick_delay", d.Scroll.WheelTickDelay)
	v.SetDefault(p+"scroll.overshoot", d.Scroll.Overshoot)
	v.SetDefault(p+"scroll.overshoot_probability", d.Scroll.OvershootProbability)

	v.SetDefault(p+"wander.move_delay", d.Wander.MoveDelay)
	v.SetDefault(p+"wander.randomize_move_delay", d.Wander.RandomizeMoveDelay)
	v.SetDefault(p+"wander.move_speed", d.Wander.MoveSpeed)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Chrome is commonly located through this variable in CI images.
	_ = v.BindEnv("browser.exec_path", "GHOSTCURSOR_BROWSER_EXEC_PATH", "CHROME_PATH")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	var errs []error
	if err := c.LoggerCfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.CursorCfg.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cursor.defaults: %w", err))
	}
	if err := c.BrowserCfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks the logger level and format.
func (l LoggerConfig) Validate() error {
	if _, err := zap.ParseAtomicLevel(l.Level); err != nil {
		return fmt.Errorf("logger.level %q is not a valid level", l.Level)
	}
	if l.Format != "console" && l.Format != "json" {
		return fmt.Errorf("logger.format must be \"console\" or \"json\", got %q", l.Format)
	}
	return nil
}

// Validate checks the browser settings.
func (b BrowserConfig) Validate() error {
	if b.Viewport.Width <= 0 || b.Viewport.Height <= 0 {
		return fmt.Errorf("browser.viewport must be positive, got %dx%d", b.Viewport.Width, b.Viewport.Height)
	}
	if b.NavigationTimeout < 0 || b.ShutdownTimeout < 0 {
		return fmt.Errorf("browser timeouts must not be negative")
	}
	return nil
}
