package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/localeroute/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.DefaultLang != "en" {
		t.Errorf("DefaultLang = %q, want en", cfg.DefaultLang)
	}
	if cfg.CurrentLang != "en" {
		t.Errorf("CurrentLang = %q, want en", cfg.CurrentLang)
	}
	if len(cfg.SupportedLangs) != 1 || cfg.SupportedLangs[0] != "en" {
		t.Errorf("SupportedLangs = %v, want [en]", cfg.SupportedLangs)
	}
	if cfg.Routes.Dir != DefaultRoutesDir {
		t.Errorf("Routes.Dir = %q, want %q", cfg.Routes.Dir, DefaultRoutesDir)
	}
	if cfg.Views.Source != SourceFS || cfg.Views.Extension != "html" {
		t.Errorf("Views = %+v", cfg.Views)
	}
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("Server.Listen = %q, want %q", cfg.Server.Listen, DefaultListen)
	}
	if cfg.Debounce() != DefaultDebounce {
		t.Errorf("Debounce() = %v, want %v", cfg.Debounce(), DefaultDebounce)
	}
	if cfg.ReadTimeout() != 10*time.Second || cfg.WriteTimeout() != 10*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.ReadTimeout(), cfg.WriteTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("Load() should fail without a config file")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != errors.CodeConfigNotFound {
		t.Errorf("error = %v, want code %s", err, errors.CodeConfigNotFound)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	data := `default_lang: fr
supported_langs: [en, fr]
routes:
  file: routes.yaml
  auto_reload:
    enabled: true
    debounce_ms: 50
views:
  source: s3
  extension: .jsx
  s3:
    bucket: site-views
    prefix: views/
server:
  listen: ":9000"
logging:
  format: json
`
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultLang != "fr" || cfg.CurrentLang != "fr" {
		t.Errorf("langs = %q/%q, want fr/fr", cfg.DefaultLang, cfg.CurrentLang)
	}
	if len(cfg.SupportedLangs) != 2 {
		t.Errorf("SupportedLangs = %v", cfg.SupportedLangs)
	}
	if cfg.Routes.File != "routes.yaml" || cfg.Routes.Dir != "" {
		t.Errorf("Routes = %+v", cfg.Routes)
	}
	if !cfg.Routes.AutoReload.Enabled || cfg.Debounce() != 50*time.Millisecond {
		t.Errorf("AutoReload = %+v", cfg.Routes.AutoReload)
	}
	if cfg.Views.Extension != "jsx" {
		t.Errorf("Views.Extension = %q, want jsx", cfg.Views.Extension)
	}
	if cfg.Views.S3.Bucket != "site-views" || cfg.Views.S3.Prefix != "views/" {
		t.Errorf("Views.S3 = %+v", cfg.Views.S3)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("Server.Listen = %q", cfg.Server.Listen)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
	}
	if got := cfg.Resolve("routes.yaml"); got != filepath.Join(dir, "routes.yaml") {
		t.Errorf("Resolve() = %q", got)
	}
	if got := cfg.Resolve("/abs/routes"); got != "/abs/routes" {
		t.Errorf("Resolve(abs) = %q", got)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.DefaultLang != "en" || cfg.Dir() != "." {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("default_lang: [unclosed"))
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != errors.CodeConfigInvalid {
		t.Errorf("error = %v, want code %s", err, errors.CodeConfigInvalid)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOCALEROUTE_SERVER_LISTEN", ":9999")
	t.Setenv("LOCALEROUTE_DEFAULT_LANG", "de")
	t.Setenv("LOCALEROUTE_SUPPORTED_LANGS", "de,en,fr")
	t.Setenv("LOCALEROUTE_METRICS_ENABLED", "true")
	t.Setenv("LOCALEROUTE_METRICS_BUCKETS", "0.01,0.1,1")
	t.Setenv("LOCALEROUTE_ROUTES_AUTO_RELOAD_DEBOUNCE_MS", "10")
	t.Setenv("LOCALEROUTE_VIEWS_S3_BUCKET", "env-bucket")

	cfg, err := Parse([]byte("default_lang: en\nviews:\n  source: s3\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Server.Listen != ":9999" {
		t.Errorf("Server.Listen = %q", cfg.Server.Listen)
	}
	if cfg.DefaultLang != "de" || cfg.CurrentLang != "de" {
		t.Errorf("langs = %q/%q, want de/de", cfg.DefaultLang, cfg.CurrentLang)
	}
	want := []string{"de", "en", "fr"}
	if len(cfg.SupportedLangs) != len(want) {
		t.Fatalf("SupportedLangs = %v, want %v", cfg.SupportedLangs, want)
	}
	for i := range want {
		if cfg.SupportedLangs[i] != want[i] {
			t.Errorf("SupportedLangs[%d] = %q, want %q", i, cfg.SupportedLangs[i], want[i])
		}
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be set from the environment")
	}
	if len(cfg.Metrics.Buckets) != 3 || cfg.Metrics.Buckets[2] != 1 {
		t.Errorf("Metrics.Buckets = %v", cfg.Metrics.Buckets)
	}
	if cfg.Debounce() != 10*time.Millisecond {
		t.Errorf("Debounce() = %v", cfg.Debounce())
	}
	if cfg.Views.S3.Bucket != "env-bucket" {
		t.Errorf("Views.S3.Bucket = %q", cfg.Views.S3.Bucket)
	}
}

func TestEnvLeavesFileValues(t *testing.T) {
	t.Setenv("LOCALEROUTE_LOG_LEVEL", "debug")

	cfg, err := Parse([]byte("server:\n  listen: \":7000\"\nlogging:\n  level: warn\n  format: json\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Server.Listen != ":7000" {
		t.Errorf("Server.Listen = %q, want the file value", cfg.Server.Listen)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestEnvInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"LOCALEROUTE_TRACING_ENABLED", "maybe"},
		{"LOCALEROUTE_ROUTES_AUTO_RELOAD_DEBOUNCE_MS", "soon"},
		{"LOCALEROUTE_METRICS_BUCKETS", "0.1,fast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.name, tt.value)
			_, err := Parse(nil)
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Code != errors.CodeConfigInvalid {
				t.Errorf("error = %v, want code %s", err, errors.CodeConfigInvalid)
			}
		})
	}
}

func TestInvalidLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	data := "default_lang: en\nsupported_langs:\n  - en\n  - english\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error = %v, want *errors.Error", err)
	}
	if e.Code != errors.CodeInvalidLanguage {
		t.Errorf("Code = %q, want %q", e.Code, errors.CodeInvalidLanguage)
	}
	if e.Location == nil || e.Location.Line != 4 || e.Location.File != path {
		t.Errorf("Location = %+v, want %s:4", e.Location, path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"default not supported", "default_lang: fr\nsupported_langs: [en]\n", errors.CodeConfigInvalid},
		{"uppercase", "default_lang: EN\n", errors.CodeInvalidLanguage},
		{"s3 without bucket", "views:\n  source: s3\n", errors.CodeConfigInvalid},
		{"unknown source", "views:\n  source: ftp\n", errors.CodeConfigInvalid},
		{"bad log format", "logging:\n  format: xml\n", errors.CodeConfigInvalid},
		{"unordered buckets", "metrics:\n  buckets: [1, 0.5]\n", errors.CodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Code != tt.code {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidateLang(t *testing.T) {
	for _, code := range []string{"en", "fr", "de", "ja"} {
		if err := ValidateLang(code); err != nil {
			t.Errorf("ValidateLang(%q) = %v", code, err)
		}
	}
	for _, code := range []string{"", "e", "eng", "EN", "e1", "zz"} {
		if err := ValidateLang(code); err == nil {
			t.Errorf("ValidateLang(%q) should fail", code)
		}
	}
}
