package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

var envVars = []string{
	"PIANO_PORT", "PIANO_ALLOWED_ORIGINS", "PIANO_PUSH_DEBOUNCE_MS",
	"PIANO_LOG_LEVEL", "PIANO_CATEGORY", "PIANO_ROOT",
	"PIANO_VOLUME", "PIANO_OPUS_BITRATE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pianochords.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- Load ---

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	if cfg.PushDebounce() != 50*time.Millisecond {
		t.Errorf("PushDebounce = %v, want 50ms", cfg.PushDebounce())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want 'info'", cfg.LogLevel)
	}
	if cfg.Category != "triads" {
		t.Errorf("Category = %q, want 'triads'", cfg.Category)
	}
	if cfg.Root != "Do" {
		t.Errorf("Root = %q, want 'Do'", cfg.Root)
	}
	if cfg.Volume != 1.0 {
		t.Errorf("Volume = %f, want 1.0", cfg.Volume)
	}
	if cfg.OpusBitrate != 128000 {
		t.Errorf("OpusBitrate = %d, want 128000", cfg.OpusBitrate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PIANO_PORT", "3000")
	t.Setenv("PIANO_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("PIANO_PUSH_DEBOUNCE_MS", "10")
	t.Setenv("PIANO_LOG_LEVEL", "debug")
	t.Setenv("PIANO_CATEGORY", "extended")
	t.Setenv("PIANO_ROOT", "Sib")
	t.Setenv("PIANO_VOLUME", "0.5")
	t.Setenv("PIANO_OPUS_BITRATE", "64000")

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.PushDebounce() != 10*time.Millisecond {
		t.Errorf("PushDebounce = %v, want 10ms", cfg.PushDebounce())
	}
	if cfg.Level() != log.DebugLevel {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
	if cfg.Category != "extended" {
		t.Errorf("Category = %q, want 'extended'", cfg.Category)
	}
	if cfg.Root != "Sib" {
		t.Errorf("Root = %q, want 'Sib'", cfg.Root)
	}
	if cfg.Volume != 0.5 {
		t.Errorf("Volume = %f, want 0.5", cfg.Volume)
	}
	if cfg.OpusBitrate != 64000 {
		t.Errorf("OpusBitrate = %d, want 64000", cfg.OpusBitrate)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("PIANO_PORT", "not-a-number")
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 8080", cfg.Port)
	}
}

func TestEnvListBlankFallsBack(t *testing.T) {
	t.Setenv("PIANO_ALLOWED_ORIGINS", " , ")
	cfg := Load()
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

// --- LoadFile ---

func TestLoadFileOverlay(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
port: 9090
root: Fa#
volume: 0.25
allowed_origins:
  - http://piano.test
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Root != "Fa#" {
		t.Errorf("Root = %q, want 'Fa#'", cfg.Root)
	}
	if cfg.Volume != 0.25 {
		t.Errorf("Volume = %f, want 0.25", cfg.Volume)
	}
	if cfg.Category != "triads" {
		t.Errorf("Category = %q, want default 'triads'", cfg.Category)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://piano.test"}) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadFileEnvWins(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "port: 9090\n")
	t.Setenv("PIANO_PORT", "7070")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("Port = %d, want env value 7070", cfg.Port)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}
	if _, err := LoadFile(writeFile(t, "port: [1, 2")); err == nil {
		t.Error("malformed yaml should error")
	}
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if cfg.Port == 0 {
		t.Error("empty path should yield defaults")
	}
}

// --- Validate ---

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"volume", func(c *Config) { c.Volume = 1.5 }},
		{"debounce", func(c *Config) { c.PushDebounceMS = -1 }},
		{"bitrate", func(c *Config) { c.OpusBitrate = 100 }},
		{"level", func(c *Config) { c.LogLevel = "loud" }},
		{"category", func(c *Config) { c.Category = "pentads" }},
		{"root", func(c *Config) { c.Root = "H" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate accepted bad %s", tt.name)
			}
		})
	}
}
