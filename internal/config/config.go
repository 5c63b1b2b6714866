// Package config holds runtime settings for the color picker.
//
// Settings come from COLOR_PICKER_* environment variables; command line
// flags may override them afterwards.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
)

// Environment variable names.
const (
	EnvLogLevel         = "COLOR_PICKER_LOG_LEVEL"
	EnvMaxDisplayWidth  = "COLOR_PICKER_MAX_WIDTH"
	EnvMaxDisplayHeight = "COLOR_PICKER_MAX_HEIGHT"
	EnvMagnifierSize    = "COLOR_PICKER_MAGNIFIER_SIZE"
	EnvMagnifierZoom    = "COLOR_PICKER_MAGNIFIER_ZOOM"
	EnvPaletteCount     = "COLOR_PICKER_PALETTE_COUNT"
	EnvClipboard        = "COLOR_PICKER_CLIPBOARD"
)

// Config is the full set of runtime settings.
type Config struct {
	LogLevel string

	// MaxDisplayWidth and MaxDisplayHeight bound the display buffer.
	// Zero keeps images at their original resolution.
	MaxDisplayWidth  int
	MaxDisplayHeight int

	MagnifierSize int
	MagnifierZoom int

	PaletteCount int

	// Clipboard selects the clipboard sink: "memory" or "system".
	Clipboard string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:         "info",
		MaxDisplayWidth:  imaging.DefaultMaxWidth,
		MaxDisplayHeight: imaging.DefaultMaxHeight,
		MagnifierSize:    imaging.DefaultMagnifierSize,
		MagnifierZoom:    imaging.DefaultMagnifierZoom,
		PaletteCount:     5,
		Clipboard:        "memory",
	}
}

// FromEnv returns Default overlaid with any environment variables set,
// looked up through getenv (os.Getenv when nil).
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv(EnvClipboard); v != "" {
		cfg.Clipboard = strings.ToLower(v)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvMaxDisplayWidth, &cfg.MaxDisplayWidth},
		{EnvMaxDisplayHeight, &cfg.MaxDisplayHeight},
		{EnvMagnifierSize, &cfg.MagnifierSize},
		{EnvMagnifierZoom, &cfg.MagnifierZoom},
		{EnvPaletteCount, &cfg.PaletteCount},
	}
	for _, e := range ints {
		v := getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", e.name, err)
		}
		*e.dst = n
	}

	return cfg, cfg.Validate()
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxDisplayWidth < 0 || c.MaxDisplayHeight < 0 {
		return fmt.Errorf("max display size must not be negative, got %dx%d", c.MaxDisplayWidth, c.MaxDisplayHeight)
	}
	if c.MagnifierSize <= 0 {
		return fmt.Errorf("magnifier size must be positive, got %d", c.MagnifierSize)
	}
	if c.MagnifierSize > imaging.MaxMagnifierSize {
		return fmt.Errorf("magnifier size %d exceeds maximum %d", c.MagnifierSize, imaging.MaxMagnifierSize)
	}
	if c.MagnifierZoom < 1 {
		return fmt.Errorf("magnifier zoom must be at least 1, got %d", c.MagnifierZoom)
	}
	if c.PaletteCount <= 0 {
		return fmt.Errorf("palette count must be positive, got %d", c.PaletteCount)
	}
	switch c.Clipboard {
	case "memory", "system":
	default:
		return fmt.Errorf("unknown clipboard sink %q (want memory or system)", c.Clipboard)
	}
	return nil
}

// SlogLevel returns the log level as a slog.Level. Unknown names map to
// info; Validate reports them.
func (c Config) SlogLevel() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// NewLogger returns a text logger on stderr at the configured level.
// Stdout is reserved for protocol output.
func (c Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.SlogLevel()}))
}
