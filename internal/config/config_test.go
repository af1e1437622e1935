package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/rouri404/grabtext/internal/ocr"
)

// isolate points the user config dir at a scratch directory and blanks
// every GRABTEXT variable so host settings cannot leak into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"GRABTEXT_CONFIG", "GRABTEXT_LANG", "GRABTEXT_ENGINE", "GRABTEXT_TIMEOUT",
		"GRABTEXT_WORKERS", "GRABTEXT_INTERVAL", "GRABTEXT_LOGFILE", "GRABTEXT_VERBOSE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != ocr.Portuguese {
		t.Errorf("Language = %v, want pt", cfg.Language)
	}
	if cfg.Engine != ocr.AutoEngine {
		t.Errorf("Engine = %v, want auto", cfg.Engine)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.PollInterval)
	}
	if cfg.Verbose {
		t.Error("Verbose = true, want false")
	}
	if !strings.HasSuffix(cfg.LogFile, filepath.Join("grabtext", "grabtext.log")) {
		t.Errorf("LogFile = %s, want default grabtext/grabtext.log location", cfg.LogFile)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GRABTEXT_LANG", "en")
	t.Setenv("GRABTEXT_ENGINE", "tesseract")
	t.Setenv("GRABTEXT_TIMEOUT", "90")
	t.Setenv("GRABTEXT_WORKERS", "4")
	t.Setenv("GRABTEXT_INTERVAL", "3")
	t.Setenv("GRABTEXT_VERBOSE", "true")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != ocr.English {
		t.Errorf("Language = %v, want en", cfg.Language)
	}
	if cfg.Engine != "tesseract" {
		t.Errorf("Engine = %v, want tesseract", cfg.Engine)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v, want 3s", cfg.PollInterval)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestLoadInvalidLanguage(t *testing.T) {
	isolate(t)
	t.Setenv("GRABTEXT_LANG", "es")

	_, err := Load(nil)
	var unsupported *ocr.UnsupportedLanguageError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want *ocr.UnsupportedLanguageError", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "grabtext.yaml")
	contents := "lang: en\ntimeout: 120\nworkers: 3\nlogfile: /var/log/grabtext.log\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GRABTEXT_CONFIG", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != ocr.English {
		t.Errorf("Language = %v, want en", cfg.Language)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 120s", cfg.Timeout)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.LogFile != "/var/log/grabtext.log" {
		t.Errorf("LogFile = %s", cfg.LogFile)
	}
}

func TestLoadConfigFileAtDefaultPath(t *testing.T) {
	isolate(t)
	configHome := os.Getenv("XDG_CONFIG_HOME")
	dir := filepath.Join(configHome, "grabtext")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("workers: 6\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 6 {
		t.Errorf("Workers = %d, want 6 from default-path config", cfg.Workers)
	}
}

func TestLoadEnvBeatsConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "grabtext.yaml")
	if err := os.WriteFile(path, []byte("lang: en\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GRABTEXT_CONFIG", path)
	t.Setenv("GRABTEXT_LANG", "pt")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != ocr.Portuguese {
		t.Errorf("Language = %v, want pt from environment", cfg.Language)
	}
}

func TestLoadFlagsBeatEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GRABTEXT_TIMEOUT", "90")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse([]string{"--timeout", "5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s from flag", cfg.Timeout)
	}
}

func TestLoadFlagDefaultLosesToEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GRABTEXT_WORKERS", "8")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8: an unset flag must not mask the environment", cfg.Workers)
	}
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	isolate(t)
	t.Setenv("GRABTEXT_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(nil); err == nil {
		t.Fatal("Load succeeded with a missing explicit config file")
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("lang: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GRABTEXT_CONFIG", path)

	if _, err := Load(nil); err == nil {
		t.Fatal("Load succeeded with malformed YAML")
	}
}

func TestLoadClampsValues(t *testing.T) {
	isolate(t)
	t.Setenv("GRABTEXT_TIMEOUT", "-5")
	t.Setenv("GRABTEXT_WORKERS", "0")
	t.Setenv("GRABTEXT_INTERVAL", "0")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (disabled)", cfg.Timeout)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want clamp to 1", cfg.Workers)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want clamp to 1s", cfg.PollInterval)
	}
}
