// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// DefaultFormURL is the public practice form the suite verifies.
const DefaultFormURL = "https://demoqa.com/automation-practice-form"

// EnvPrefix prefixes environment overrides, e.g. FORMCHECK_FORM_URL.
const EnvPrefix = "FORMCHECK"

var envKeyReplacer = strings.NewReplacer(".", "_")

// BindEnv enables environment variable overrides for every configuration key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
}

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Form    FormConfig    `mapstructure:"form" yaml:"form"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
	Run     RunConfig     `mapstructure:"run" yaml:"run"`
}

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

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chrome process and its tabs.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	ExecPath        string         `mapstructure:"exec_path" yaml:"exec_path"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	LaunchTimeout   time.Duration  `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	Viewport        ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
}

// ViewportConfig is the window size applied to every new tab.
type ViewportConfig struct {
	Width  int64 `mapstructure:"width" yaml:"width"`
	Height int64 `mapstructure:"height" yaml:"height"`
}

// FormConfig points the page layer at the target form.
type FormConfig struct {
	URL         string        `mapstructure:"url" yaml:"url"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
}

// ReportConfig controls failure artifacts and run reports.
type ReportConfig struct {
	ScreenshotDir  string        `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
	JUnitPath      string        `mapstructure:"junit_path" yaml:"junit_path"`
	JSONPath       string        `mapstructure:"json_path" yaml:"json_path"`
	CaptureTimeout time.Duration `mapstructure:"capture_timeout" yaml:"capture_timeout"`
}

// RunConfig selects which scenarios a run executes.
type RunConfig struct {
	CasesFile  string `mapstructure:"cases_file" yaml:"cases_file"`
	Filter     string `mapstructure:"filter" yaml:"filter"`
	UploadFile string `mapstructure:"upload_file" yaml:"upload_file"`

	// SkipBuiltin runs only the cases file.
	SkipBuiltin bool `mapstructure:"skip_builtin" yaml:"skip_builtin"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
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
	v.SetDefault("logger.service_name", "formcheck")
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

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.launch_timeout", "30s")
	v.SetDefault("browser.viewport.width", 1920)
	v.SetDefault("browser.viewport.height", 1080)

	// -- Form --
	v.SetDefault("form.url", DefaultFormURL)
	v.SetDefault("form.wait_timeout", "15s")

	// -- Report --
	v.SetDefault("report.screenshot_dir", "target/screenshots")
	v.SetDefault("report.junit_path", "")
	v.SetDefault("report.json_path", "")
	v.SetDefault("report.capture_timeout", "10s")

	// -- Run --
	v.SetDefault("run.cases_file", "")
	v.SetDefault("run.filter", "")
	v.SetDefault("run.upload_file", "")
	v.SetDefault("run.skip_builtin", false)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves home directory references (~) in every path setting.
func (c *Config) expandPaths() error {
	paths := []*string{
		&c.Logger.LogFile,
		&c.Browser.ExecPath,
		&c.Report.ScreenshotDir,
		&c.Report.JUnitPath,
		&c.Report.JSONPath,
		&c.Run.CasesFile,
		&c.Run.UploadFile,
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("could not resolve path '%s': %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got %q", c.Logger.Format)
	}
	if c.Form.WaitTimeout <= 0 {
		return fmt.Errorf("form.wait_timeout must be a positive duration")
	}
	u, err := url.Parse(c.Form.URL)
	if err != nil {
		return fmt.Errorf("form.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("form.url must use http or https, got %q", c.Form.URL)
	}
	if c.Browser.Viewport.Width <= 0 || c.Browser.Viewport.Height <= 0 {
		return fmt.Errorf("browser.viewport width and height must be positive")
	}
	if c.Browser.LaunchTimeout <= 0 {
		return fmt.Errorf("browser.launch_timeout must be a positive duration")
	}
	if c.Report.CaptureTimeout <= 0 {
		return fmt.Errorf("report.capture_timeout must be a positive duration")
	}
	return nil
}
