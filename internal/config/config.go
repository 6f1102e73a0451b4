package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/satindergrewal/pianochords/internal/chord"
	"github.com/satindergrewal/pianochords/internal/theory"
)

// PathEnv names the variable holding the optional YAML config path.
const PathEnv = "PIANO_CONFIG"

// Config holds all runtime configuration. Values come from defaults, then an
// optional YAML file, then environment variables.
type Config struct {
	// Server
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	PushDebounceMS int      `yaml:"push_debounce_ms"` // coalesces websocket state pushes
	LogLevel       string   `yaml:"log_level"`

	// Initial selection
	Category string `yaml:"category"`
	Root     string `yaml:"root"` // Latin label, e.g. "Sol"

	// Output
	Volume      float64 `yaml:"volume"`       // 0..1 applied at the destination
	OpusBitrate int     `yaml:"opus_bitrate"` // WebRTC listeners
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"*"},
		PushDebounceMS: 50,
		LogLevel:       "info",
		Category:       string(chord.DefaultCategory),
		Root:           chord.NaturalRoot,
		Volume:         1.0,
		OpusBitrate:    128000,
	}
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return fromEnv(Defaults())
}

// LoadFile overlays the YAML file at path on the defaults, then applies the
// environment. An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return fromEnv(cfg), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fromEnv(cfg), nil
}

func fromEnv(base Config) Config {
	return Config{
		Port:           envInt("PIANO_PORT", base.Port),
		AllowedOrigins: envList("PIANO_ALLOWED_ORIGINS", base.AllowedOrigins),
		PushDebounceMS: envInt("PIANO_PUSH_DEBOUNCE_MS", base.PushDebounceMS),
		LogLevel:       envStr("PIANO_LOG_LEVEL", base.LogLevel),
		Category:       envStr("PIANO_CATEGORY", base.Category),
		Root:           envStr("PIANO_ROOT", base.Root),
		Volume:         envFloat("PIANO_VOLUME", base.Volume),
		OpusBitrate:    envInt("PIANO_OPUS_BITRATE", base.OpusBitrate),
	}
}

// PushDebounce returns the websocket push coalescing window.
func (c Config) PushDebounce() time.Duration {
	return time.Duration(c.PushDebounceMS) * time.Millisecond
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume %v outside 0..1", c.Volume))
	}
	if c.PushDebounceMS < 0 {
		errs = append(errs, fmt.Errorf("push debounce %dms is negative", c.PushDebounceMS))
	}
	if c.OpusBitrate < 6000 || c.OpusBitrate > 510000 {
		errs = append(errs, fmt.Errorf("opus bitrate %d outside 6000..510000", c.OpusBitrate))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level %q: %w", c.LogLevel, err))
	}
	if _, err := chord.ParseCategory(c.Category); err != nil {
		errs = append(errs, err)
	}
	if _, err := theory.ParseLatin(c.Root); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
