package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/localeroute/internal/errors"
)

const (
	// FileName is the name of the configuration file.
	FileName = "localeroute.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LOCALEROUTE_"

	// DefaultListen is the default HTTP listen address.
	DefaultListen = ":8080"

	// DefaultRoutesDir is the default directory of route modules.
	DefaultRoutesDir = "routes"

	// DefaultViewsDir is the default directory of view files.
	DefaultViewsDir = "views"

	// DefaultDebounce is the default auto-reload debounce.
	DefaultDebounce = 250 * time.Millisecond
)

// View sources.
const (
	SourceFS = "fs"
	SourceS3 = "s3"
)

var langCode = regexp.MustCompile(`^[a-z]{2}$`)

// Config represents localeroute.yaml.
type Config struct {
	// DefaultLang is the language paths are redirected to when they lack a
	// supported language code.
	DefaultLang string `yaml:"default_lang" env:"DEFAULT_LANG"`

	// CurrentLang is the default target language for link helpers.
	CurrentLang string `yaml:"current_lang" env:"CURRENT_LANG"`

	// SupportedLangs are the language codes accepted in paths.
	SupportedLangs []string `yaml:"supported_langs" env:"SUPPORTED_LANGS"`

	Routes  RoutesConfig  `yaml:"routes" envPrefix:"ROUTES_"`
	Views   ViewsConfig   `yaml:"views" envPrefix:"VIEWS_"`
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`

	path string
	node *yaml.Node
}

// RoutesConfig locates the route modules.
type RoutesConfig struct {
	// Dir holds route modules (*.yaml, *.yml, *.json), merged in file order.
	Dir string `yaml:"dir" env:"DIR"`

	// File is a single route module. It takes precedence over Dir.
	File string `yaml:"file" env:"FILE"`

	AutoReload AutoReloadConfig `yaml:"auto_reload" envPrefix:"AUTO_RELOAD_"`
}

// AutoReloadConfig controls route module watching.
type AutoReloadConfig struct {
	Enabled    bool `yaml:"enabled" env:"ENABLED"`
	DebounceMs int  `yaml:"debounce_ms" env:"DEBOUNCE_MS"`
}

// ViewsConfig locates the views.
type ViewsConfig struct {
	// Source is "fs" (default) or "s3".
	Source string `yaml:"source" env:"SOURCE"`

	// Dir is the views directory for the fs source.
	Dir string `yaml:"dir" env:"DIR"`

	// Extension is the view file extension without the dot.
	Extension string `yaml:"extension" env:"EXTENSION"`

	S3 S3Config `yaml:"s3" envPrefix:"S3_"`
}

// S3Config locates views stored in a bucket.
type S3Config struct {
	Bucket string `yaml:"bucket" env:"BUCKET"`
	Prefix string `yaml:"prefix" env:"PREFIX"`
	Region string `yaml:"region" env:"REGION"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Listen         string `yaml:"listen" env:"LISTEN"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms" env:"READ_TIMEOUT_MS"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms" env:"WRITE_TIMEOUT_MS"`

	// AuthCookie is the cookie whose presence marks a request as
	// authenticated for routes with auth set.
	AuthCookie string `yaml:"auth_cookie" env:"AUTH_COOKIE"`
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" env:"LEVEL"`

	// Format is text or json.
	Format string `yaml:"format" env:"FORMAT"`
}

// MetricsConfig configures Prometheus.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	Subsystem string `yaml:"subsystem" env:"SUBSYSTEM"`

	// Buckets are the duration histogram buckets in seconds. Empty means
	// the Prometheus defaults.
	Buckets []float64 `yaml:"buckets" env:"BUCKETS"`

	// ConstLabels are added to every series. From the environment they are
	// written as name:value pairs separated by commas.
	ConstLabels map[string]string `yaml:"const_labels" env:"CONST_LABELS"`
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	Enabled    bool   `yaml:"enabled" env:"ENABLED"`
	TracerName string `yaml:"tracer_name" env:"TRACER_NAME"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads localeroute.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads, defaults, overrides from the environment and validates
// the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Location != nil {
			e.WithLocation(path, e.Location.Line, e.Location.Column)
		}
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes configuration data, applies environment overrides and
// defaults, and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("Failed to parse configuration: " + err.Error())
	}
	if len(doc.Content) > 0 {
		if err := doc.Decode(cfg); err != nil {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithDetail("Failed to decode configuration: " + err.Error())
		}
		cfg.node = doc.Content[0]
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err).
			WithDetail("Invalid " + EnvPrefix + "* environment override")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory containing the config file. Relative paths in
// the config are resolved against it.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// Resolve returns p relative to the config directory unless it is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

func (c *Config) applyDefaults() {
	if c.DefaultLang == "" {
		c.DefaultLang = "en"
	}
	if c.CurrentLang == "" {
		c.CurrentLang = c.DefaultLang
	}
	if len(c.SupportedLangs) == 0 {
		c.SupportedLangs = []string{c.DefaultLang}
	}

	if c.Routes.Dir == "" && c.Routes.File == "" {
		c.Routes.Dir = DefaultRoutesDir
	}
	if c.Routes.AutoReload.DebounceMs <= 0 {
		c.Routes.AutoReload.DebounceMs = int(DefaultDebounce / time.Millisecond)
	}

	if c.Views.Source == "" {
		c.Views.Source = SourceFS
	}
	if c.Views.Dir == "" {
		c.Views.Dir = DefaultViewsDir
	}
	if c.Views.Extension == "" {
		c.Views.Extension = "html"
	}
	c.Views.Extension = strings.TrimPrefix(c.Views.Extension, ".")

	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.ReadTimeoutMs <= 0 {
		c.Server.ReadTimeoutMs = 10000
	}
	if c.Server.WriteTimeoutMs <= 0 {
		c.Server.WriteTimeoutMs = 10000
	}
	if c.Server.AuthCookie == "" {
		c.Server.AuthCookie = "session"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "localeroute"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "localeroute"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	for _, code := range append([]string{c.DefaultLang, c.CurrentLang}, c.SupportedLangs...) {
		if err := ValidateLang(code); err != nil {
			e := errors.New(errors.CodeInvalidLanguage).WithDetail(err.Error())
			if line := c.lineOf(code); line > 0 {
				e.Location = &errors.Location{File: c.path, Line: line}
			}
			return e
		}
	}
	if !contains(c.SupportedLangs, c.DefaultLang) {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(fmt.Sprintf("default_lang %q is not listed in supported_langs", c.DefaultLang))
	}

	switch c.Views.Source {
	case SourceFS:
	case SourceS3:
		if c.Views.S3.Bucket == "" {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail("views.s3.bucket is required when views.source is s3")
		}
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(fmt.Sprintf("views.source must be %q or %q, got %q", SourceFS, SourceS3, c.Views.Source))
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(fmt.Sprintf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	for i := 1; i < len(c.Metrics.Buckets); i++ {
		if c.Metrics.Buckets[i] <= c.Metrics.Buckets[i-1] {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail(fmt.Sprintf("metrics.buckets must be strictly increasing, got %v", c.Metrics.Buckets))
		}
	}
	return nil
}

// ValidateLang checks that code is a lowercase two-letter ISO 639-1 code.
func ValidateLang(code string) error {
	if !langCode.MatchString(code) {
		return fmt.Errorf("%q is not a lowercase two-letter language code", code)
	}
	if _, err := language.ParseBase(code); err != nil {
		return fmt.Errorf("%q is not a known language: %w", code, err)
	}
	return nil
}

// Debounce returns the auto-reload debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Routes.AutoReload.DebounceMs) * time.Millisecond
}

// ReadTimeout returns the HTTP read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutMs) * time.Millisecond
}

// WriteTimeout returns the HTTP write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutMs) * time.Millisecond
}

// lineOf returns the line of the first scalar equal to value in the
// language keys of the document, or 0.
func (c *Config) lineOf(value string) int {
	if c.node == nil || c.node.Kind != yaml.MappingNode {
		return 0
	}
	for i := 0; i+1 < len(c.node.Content); i += 2 {
		switch c.node.Content[i].Value {
		case "default_lang", "current_lang", "supported_langs":
		default:
			continue
		}
		v := c.node.Content[i+1]
		if v.Kind == yaml.ScalarNode && v.Value == value {
			return v.Line
		}
		for _, item := range v.Content {
			if item.Value == value {
				return item.Line
			}
		}
	}
	return 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
