package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/thiagokokada/gitblame-go/internal/annotate"
	"github.com/thiagokokada/gitblame-go/internal/blame"
	"github.com/thiagokokada/gitblame-go/internal/color"
	"github.com/thiagokokada/gitblame-go/internal/config"
	"github.com/thiagokokada/gitblame-go/internal/git"
	"github.com/thiagokokada/gitblame-go/internal/render"
	"github.com/thiagokokada/gitblame-go/internal/watch"
)

// app wires the blame pipeline for a single invocation.
type app struct {
	cfg       config.Config
	log       *slog.Logger
	out       io.Writer
	resolver  *git.Resolver
	service   *blame.Service
	annotator *annotate.Annotator
	printer   *render.Printer
	now       func() time.Time
}

func newApp(cfg config.Config, log *slog.Logger, out io.Writer, useColor bool) (*app, error) {
	palette, err := color.ParsePalette(cfg.Palette)
	if err != nil {
		return nil, err
	}
	dark := color.ThemePreferenceFromString(cfg.Theme).IsDark()
	resolver := git.NewResolver(git.WithLogger(log))
	service := blame.NewService(resolver,
		blame.WithTTL(cfg.CacheTTL()),
		blame.WithLogger(log),
		blame.WithWorkers(cfg.Workers),
	)
	return &app{
		cfg:       cfg,
		log:       log,
		out:       out,
		resolver:  resolver,
		service:   service,
		annotator: annotate.New(cfg.AnnotateOptions(dark), color.NewAuthorColors(palette)),
		printer:   render.New(out, render.Options{Color: useColor, Dark: dark, Syntax: cfg.Syntax}),
		now:       time.Now,
	}, nil
}

func (a *app) close() {
	a.service.Close()
	if err := a.resolver.Close(); err != nil {
		a.log.Error("close repository", slog.Any("error", err))
	}
}

func (a *app) load(path string) error {
	if !a.service.EnsureLoaded(path) {
		return fmt.Errorf("no blame for %s: not tracked in a git repository", path)
	}
	return nil
}

func (a *app) line(path string, n int) (git.BlameLine, error) {
	if err := a.load(path); err != nil {
		return git.BlameLine{}, err
	}
	line, ok := a.service.GetLine(path, n)
	if !ok {
		return git.BlameLine{}, fmt.Errorf("%s has no line %d", path, n)
	}
	return line, nil
}

func (a *app) copySHA(path string, n int) error {
	line, err := a.line(path, n)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, line.CommitID)
	return err
}

func (a *app) status(path string, n int) error {
	line, err := a.line(path, n)
	if err != nil {
		return err
	}
	status := annotate.StatusLine(line, a.now(), a.cfg.StatusOptions())
	return a.printer.Status(status, a.annotator.Annotate(line), a.annotator.Details(line))
}

func (a *app) open(path string) error {
	if !a.resolver.TryOpen(path) {
		return fmt.Errorf("%s is not inside a git repository", path)
	}
	return nil
}

func (a *app) history(path string, limit int) error {
	if err := a.open(path); err != nil {
		return err
	}
	return a.printer.History(path, a.resolver.FileHistory(path, limit))
}

func (a *app) branches(path string) error {
	if err := a.open(path); err != nil {
		return err
	}
	header := "HEAD detached or unborn"
	if name, ok := a.resolver.CurrentBranchName(); ok {
		header = "On branch " + name
	}
	if _, err := fmt.Fprintln(a.out, header); err != nil {
		return err
	}
	return a.printer.Branches(a.resolver.Branches())
}

// selection returns the requested lines and the matching slice of the working
// copy. A zero start selects the whole file.
func (a *app) selection(path string, start, end int) ([]git.BlameLine, string) {
	lines := a.service.Get(path)
	if start > 0 {
		lines = a.service.GetLines(path, start, end)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		a.log.Debug("read working copy", slog.String("path", path), slog.Any("error", err))
		return lines, ""
	}
	source := string(content)
	if start > 0 {
		all := strings.SplitAfter(source, "\n")
		lo := min(start-1, len(all))
		hi := min(end, len(all))
		source = strings.Join(all[lo:hi], "")
	}
	return lines, source
}

func (a *app) annotate(path string, start, end int) error {
	if err := a.load(path); err != nil {
		return err
	}
	lines, source := a.selection(path, start, end)
	if err := a.printer.Blame(path, a.annotator.AnnotateAll(lines), source); err != nil {
		return err
	}
	return a.printer.Summary(path, lines)
}

// watch prints the annotations, then a diff of them every time the file or
// its repository changes, until ctx is done.
func (a *app) watch(ctx context.Context, path string, start, end int) error {
	if err := a.annotate(path, start, end); err != nil {
		return err
	}
	prev := render.PlainLines(a.annotator.AnnotateAll(a.filter(a.service.Get(path), start, end)))

	loaded := newLatestLoad(path)
	unsubscribe := a.service.Subscribe(loaded.offer)
	defer unsubscribe()

	w := watch.New(path, a.resolver.CurrentRoot(), watch.DefaultDelay, func() {
		a.service.Invalidate(path)
		a.service.LoadInBackground(path)
	}, a.log)
	if err := w.Start(); err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			a.log.Error("close watcher", slog.Any("error", err))
		}
	}()
	a.log.Info("watching for changes", slog.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-loaded.events:
			next := render.PlainLines(a.annotator.AnnotateAll(a.filter(ev.Lines, start, end)))
			if err := a.printer.Diff(path, prev, next); err != nil {
				return err
			}
			if err := a.printer.Summary(path, ev.Lines); err != nil {
				return err
			}
			prev = next
		}
	}
}

func (a *app) filter(lines []git.BlameLine, start, end int) []git.BlameLine {
	if start <= 0 {
		return lines
	}
	var out []git.BlameLine
	for _, l := range lines {
		if l.LineNumber >= start && l.LineNumber <= end {
			out = append(out, l)
		}
	}
	return out
}

// latestLoad is a one-slot mailbox of Loaded events for one path. A newer
// event replaces one not yet received.
type latestLoad struct {
	path   string
	mu     sync.Mutex
	events chan blame.Loaded
}

func newLatestLoad(path string) *latestLoad {
	return &latestLoad{path: path, events: make(chan blame.Loaded, 1)}
}

func (l *latestLoad) offer(ev blame.Loaded) {
	if ev.Path != l.path {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.events:
	default:
	}
	l.events <- ev
}
