// Package watch reports changes to a blamed file or to its repository's
// metadata, debounced.
package watch

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/gitblame-go/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

type Watcher struct {
	file   string
	gitDir string
	delay  time.Duration
	fn     func()
	log    *slog.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
	done     chan struct{}
}

// New prepares a watcher for file inside the repository rooted at root. fn
// runs on its own goroutine once changes settle for delay.
func New(file, root string, delay time.Duration, fn func(), log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	w := &Watcher{
		file:  filepath.Clean(file),
		delay: delay,
		fn:    fn,
		log:   log,
	}
	if root != "" {
		w.gitDir = filepath.Join(root, ".git")
	}
	return w
}

// Start begins watching. Calling it on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	for path := range watchPaths(w.file, w.gitDir) {
		w.log.Debug("adding path to FS watcher", slog.String("path", path))
		if err := watcher.Add(path); err != nil {
			err := errors.Join(err, watcher.Close())
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
	debounce.Ensure(&w.debounce, w.delay, w.fn)
	w.watcher = watcher
	w.done = make(chan struct{})
	go w.loop(watcher, w.done)
	return nil
}

// Close stops watching and drops any pending notification.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	watcher, done := w.watcher, w.done
	w.watcher, w.done = nil, nil
	w.mu.Unlock()
	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

func (w *Watcher) loop(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			w.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil || w.debounce == nil {
		return
	}
	w.debounce.Trigger()
}

// relevant keeps writes to the watched file and any change under the git
// directory, minus lock files.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if shouldIgnoreWatchPath(ev.Name) {
		return false
	}
	name := filepath.Clean(ev.Name)
	if name == w.file {
		return true
	}
	if w.gitDir == "" {
		return false
	}
	rel, err := filepath.Rel(w.gitDir, name)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// watchPaths lists the file's directory (editors often replace files by
// rename) and the git directory with its refs.
func watchPaths(file, gitDir string) iter.Seq[string] {
	uniquePaths := map[string]struct{}{}
	if file != "" {
		uniquePaths[filepath.Dir(file)] = struct{}{}
	}
	if gitDir != "" {
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			uniquePaths[gitDir] = struct{}{}
			heads := filepath.Join(gitDir, "refs", "heads")
			if info, err := os.Stat(heads); err == nil && info.IsDir() {
				uniquePaths[heads] = struct{}{}
			}
		}
	}
	return maps.Keys(uniquePaths)
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}
