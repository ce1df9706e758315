package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	fcolor "github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/thiagokokada/gitblame-go/internal/buildinfo"
	"github.com/thiagokokada/gitblame-go/internal/config"
	"github.com/thiagokokada/gitblame-go/internal/git"
)

type options struct {
	configPath   string
	line         int
	lines        string
	history      bool
	historyLimit int
	branches     bool
	watch        bool
	copySHA      int
	verbose      bool
	version      bool
	noColor      bool

	colorMode    string
	theme        string
	dateFormat   string
	maxAgeDays   int
	cacheMinutes int
	noSyntax     bool
	noAuthor     bool
	noDate       bool
	noMessage    bool
	compact      bool
}

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func newFlagSet(o *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("gitblame-go", pflag.ContinueOnError)
	fs.StringVarP(&o.configPath, "config", "c", "", "path to configuration file (default: user config dir)")
	fs.IntVarP(&o.line, "line", "l", 0, "print the status line and commit details for line N")
	fs.StringVar(&o.lines, "lines", "", "only annotate lines START:END (inclusive)")
	fs.BoolVar(&o.history, "history", false, "list the commits that touched FILE")
	fs.IntVar(&o.historyLimit, "history-limit", git.DefaultHistoryLimit, "maximum number of commits listed by --history")
	fs.BoolVar(&o.branches, "branches", false, "list the branches of FILE's repository")
	fs.BoolVarP(&o.watch, "watch", "w", false, "keep running and print annotation changes when FILE or HEAD changes")
	fs.IntVar(&o.copySHA, "copy-sha", 0, "print the full commit id of line N")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose logging")
	fs.BoolVar(&o.version, "version", false, "print version information and exit")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colours")
	fs.StringVar(&o.colorMode, "color-mode", "", "colour annotations by author, age or none")
	fs.StringVar(&o.theme, "theme", "", "colour theme: auto, light, or dark")
	fs.StringVar(&o.dateFormat, "date-format", "", `"relative" or a Go time layout`)
	fs.IntVar(&o.maxAgeDays, "max-age", 0, "age in days shown as the oldest heat map colour")
	fs.IntVar(&o.cacheMinutes, "cache-minutes", 0, "blame cache lifetime in minutes, 0 disables caching")
	fs.BoolVar(&o.noSyntax, "no-syntax", false, "disable syntax highlighting of source lines")
	fs.BoolVar(&o.noAuthor, "no-author", false, "leave the author out of annotations")
	fs.BoolVar(&o.noDate, "no-date", false, "leave the date out of annotations")
	fs.BoolVar(&o.noMessage, "no-message", false, "leave the commit message out of annotations")
	fs.BoolVar(&o.compact, "compact", false, "compact annotations: author and date only")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: gitblame-go [flags] FILE\n\nFlags:\n%s", fs.FlagUsages())
	}
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet(&o)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if o.version {
		_, err := fmt.Fprintln(stdout, versionString())
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one FILE argument")
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	applyOverrides(fs, o, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := newLogger(stderr, cfg.LogLevel, o.verbose)
	if err != nil {
		return err
	}
	if stderr == io.Writer(os.Stderr) {
		slog.SetDefault(log)
	}

	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", fs.Arg(0), err)
	}
	useColor := !o.noColor && !fcolor.NoColor && stdout == io.Writer(os.Stdout)
	a, err := newApp(cfg, log, stdout, useColor)
	if err != nil {
		return err
	}
	defer a.close()

	switch {
	case o.copySHA > 0:
		return a.copySHA(path, o.copySHA)
	case o.line > 0:
		return a.status(path, o.line)
	case o.history:
		return a.history(path, o.historyLimit)
	case o.branches:
		return a.branches(path)
	}
	start, end, err := parseRange(o.lines)
	if err != nil {
		return err
	}
	if o.watch {
		return a.watch(ctx, path, start, end)
	}
	return a.annotate(path, start, end)
}

func versionString() string {
	s := buildinfo.Describe("gitblame-go", git.BackendName)
	if git.BackendName == "git-cli" {
		if v, err := git.GitVersion(); err == nil {
			s += fmt.Sprintf("\n%s (minimum %s)", strings.TrimSpace(v), git.MinGitVersion())
		}
	}
	return s
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path, true)
	}
	def, err := config.DefaultPath()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(def, false)
}

// applyOverrides copies explicitly set flags over file values.
func applyOverrides(fs *pflag.FlagSet, o options, cfg *config.Config) {
	if fs.Changed("color-mode") {
		cfg.ColorMode = o.colorMode
	}
	if fs.Changed("theme") {
		cfg.Theme = o.theme
	}
	if fs.Changed("date-format") {
		cfg.DateFormat = o.dateFormat
	}
	if fs.Changed("max-age") {
		cfg.MaxAgeDays = o.maxAgeDays
	}
	if fs.Changed("cache-minutes") {
		cfg.CacheMinutes = o.cacheMinutes
	}
	if o.noSyntax {
		cfg.Syntax = false
	}
	if o.noAuthor {
		cfg.ShowAuthor = false
	}
	if o.noDate {
		cfg.ShowDate = false
	}
	if o.noMessage {
		cfg.ShowMessage = false
	}
	if fs.Changed("compact") {
		cfg.Compact = o.compact
	}
}

func newLogger(w io.Writer, level string, verbose bool) (*slog.Logger, error) {
	lvl, enabled, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl, enabled = slog.LevelDebug, true
	}
	if !enabled {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// parseRange parses "START:END". Either side may be omitted; an empty string
// selects every line.
func parseRange(raw string) (start, end int, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, nil
	}
	lo, hi, ok := strings.Cut(raw, ":")
	if !ok {
		hi = lo
	}
	if lo != "" {
		if start, err = strconv.Atoi(lo); err != nil || start < 1 {
			return 0, 0, fmt.Errorf("invalid --lines start %q", lo)
		}
	} else {
		start = 1
	}
	if hi != "" {
		if end, err = strconv.Atoi(hi); err != nil || end < 1 {
			return 0, 0, fmt.Errorf("invalid --lines end %q", hi)
		}
	} else {
		end = math.MaxInt
	}
	if start > end {
		return 0, 0, fmt.Errorf("invalid --lines range %q: start after end", raw)
	}
	return start, end, nil
}
