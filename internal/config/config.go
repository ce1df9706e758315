// Package config loads the gitblame-go configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/gitblame-go/internal/annotate"
	"github.com/thiagokokada/gitblame-go/internal/color"
	"github.com/thiagokokada/gitblame-go/internal/timefmt"
)

// FileName is looked up under the user configuration directory.
const FileName = "gitblame-go/config.yml"

// Config contains the application configuration.
type Config struct {
	CacheMinutes    int      `yaml:"cacheMinutes"`
	MaxAgeDays      int      `yaml:"maxAgeDays"`
	Palette         []string `yaml:"palette"`
	DateFormat      string   `yaml:"dateFormat"`
	ColorMode       string   `yaml:"colorMode"`
	Theme           string   `yaml:"theme"`
	Workers         int      `yaml:"workers"`
	StatusFormat    string   `yaml:"statusFormat"`
	StatusMaxLength int      `yaml:"statusMaxLength"`
	LogLevel        string   `yaml:"logLevel"`
	Syntax          bool     `yaml:"syntax"`

	// Annotation fields; compact drops the commit message.
	ShowAuthor  bool `yaml:"showAuthor"`
	ShowDate    bool `yaml:"showDate"`
	ShowMessage bool `yaml:"showMessage"`
	Compact     bool `yaml:"compact"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{
		CacheMinutes:    5,
		MaxAgeDays:      365,
		StatusMaxLength: annotate.DefaultStatusMaxLength,
		Workers:         4,
		Syntax:          true,
		ShowAuthor:      true,
		ShowDate:        true,
		ShowMessage:     true,
	}
	setDefaults(&cfg)
	return cfg
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads path. A missing file is only an error when required is set.
func Load(path string, required bool) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("can not open configuration file %q: %w", path, err)
	}
	defer file.Close()
	return Decode(file)
}

// Decode parses YAML from r over the defaults and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("can not parse configuration file: %w", err)
	}
	setDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if len(cfg.Palette) == 0 {
		cfg.Palette = make([]string, 0, len(color.DefaultPalette))
		for _, c := range color.DefaultPalette {
			cfg.Palette = append(cfg.Palette, c.Hex())
		}
	}
	if strings.TrimSpace(cfg.DateFormat) == "" {
		cfg.DateFormat = timefmt.RelativeLayout
	}
	if strings.TrimSpace(cfg.ColorMode) == "" {
		cfg.ColorMode = annotate.ColorAuthor.String()
	}
	if strings.TrimSpace(cfg.Theme) == "" {
		cfg.Theme = color.ThemeAuto.String()
	}
	if cfg.StatusFormat == "" {
		cfg.StatusFormat = annotate.DefaultStatusFormat
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "error"
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.CacheMinutes < 0 {
		errs = append(errs, fmt.Errorf("cacheMinutes must not be negative, got %d", c.CacheMinutes))
	}
	if c.MaxAgeDays <= 0 {
		errs = append(errs, fmt.Errorf("maxAgeDays must be positive, got %d", c.MaxAgeDays))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.StatusMaxLength < 0 {
		errs = append(errs, fmt.Errorf("statusMaxLength must not be negative, got %d", c.StatusMaxLength))
	}
	if _, err := color.ParsePalette(c.Palette); err != nil {
		errs = append(errs, err)
	}
	if _, err := annotate.ParseColorMode(c.ColorMode); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case "auto", "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("unknown theme %q (want auto, light or dark)", c.Theme))
	}
	if _, _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CacheTTL converts CacheMinutes; zero disables caching.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheMinutes) * time.Minute
}

// ParseLogLevel maps none, error, info and debug (or verbose) to a slog level.
// enabled is false for none.
func ParseLogLevel(raw string) (level slog.Level, enabled bool, err error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none", "off":
		return slog.LevelError, false, nil
	case "error", "":
		return slog.LevelError, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "debug", "verbose":
		return slog.LevelDebug, true, nil
	}
	return 0, false, fmt.Errorf("unknown log level %q (want none, error, info or debug)", raw)
}

// AnnotateOptions builds annotator options; dark is the resolved theme.
func (c Config) AnnotateOptions(dark bool) annotate.Options {
	mode, _ := annotate.ParseColorMode(c.ColorMode)
	opts := annotate.DefaultOptions()
	opts.Mode = mode
	opts.MaxAgeDays = c.MaxAgeDays
	opts.DateLayout = c.DateFormat
	opts.Dark = dark
	opts.ShowAuthor = c.ShowAuthor
	opts.ShowDate = c.ShowDate
	opts.ShowMessage = c.ShowMessage
	opts.Compact = c.Compact
	return opts
}

func (c Config) StatusOptions() annotate.StatusOptions {
	return annotate.StatusOptions{
		Format:       c.StatusFormat,
		MaxLength:    c.StatusMaxLength,
		RelativeDate: timefmt.IsRelative(c.DateFormat),
	}
}
