// Package blame caches blame results per file and loads them in the
// background, notifying subscribers when a load completes.
package blame

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/thiagokokada/gitblame-go/internal/git"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultWorkers = 4
)

// Resolver is the part of git.Resolver the service depends on.
type Resolver interface {
	TryOpen(path string) bool
	Blame(path string) []git.BlameLine
}

type entry struct {
	lines    []git.BlameLine
	loadedAt time.Time
}

// Service is the blame cache. Lines returned by it are shared and must not be
// modified.
type Service struct {
	resolver Resolver
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
	workers  int

	entries  *cache.Cache
	inflight singleflight.Group
	subs     subscribers
	pool     *pool

	// genMu orders generation changes against cache writes.
	genMu sync.Mutex
	epoch uint64
	gens  map[string]uint64
}

// generation identifies one validity period of a key. Invalidate and Clear
// start a new one; a load begun in an older period neither joins newer loads
// nor stores its result.
type generation struct {
	epoch, n uint64
}

type Option func(*Service)

// WithTTL sets how long entries stay fresh. A non-positive ttl disables
// caching.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewService(resolver Resolver, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		ttl:      DefaultTTL,
		now:      time.Now,
		log:      slog.Default(),
		workers:  DefaultWorkers,
		gens:     map[string]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	// Freshness is decided against s.now; go-cache only evicts stale entries.
	expiration, cleanup := cache.NoExpiration, time.Duration(0)
	if s.ttl > 0 {
		expiration, cleanup = 2*s.ttl, 2*s.ttl
	}
	s.entries = cache.New(expiration, cleanup)
	s.pool = newPool(s.workers, s.log)
	return s
}

func cacheKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

func (s *Service) expired(e *entry) bool {
	return s.ttl <= 0 || s.now().Sub(e.loadedAt) > s.ttl
}

func (s *Service) fresh(key string) ([]git.BlameLine, bool) {
	v, ok := s.entries.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	if s.expired(e) {
		return nil, false
	}
	return e.lines, true
}

// Get returns the blame of path, extracting it when the cached entry is
// missing or stale. It does not open repositories; see EnsureLoaded.
func (s *Service) Get(path string) []git.BlameLine {
	lines, _ := s.get(path)
	return lines
}

// get is Get that also reports whether the lines still belong to the key's
// current generation.
func (s *Service) get(path string) ([]git.BlameLine, bool) {
	if strings.TrimSpace(path) == "" {
		return nil, false
	}
	key := cacheKey(path)
	gen := s.generation(key)
	if lines, ok := s.fresh(key); ok {
		s.log.Debug("blame cache hit", slog.String("path", path), slog.Int("lines", len(lines)))
		return lines, true
	}
	s.log.Debug("blame cache miss", slog.String("path", path))
	flight := fmt.Sprintf("%d.%d:%s", gen.epoch, gen.n, key)
	v, _, shared := s.inflight.Do(flight, func() (any, error) {
		if lines, ok := s.fresh(key); ok {
			return lines, nil
		}
		lines := s.resolver.Blame(path)
		if !s.store(key, gen, lines) {
			s.log.Debug("blame load superseded by invalidation", slog.String("path", path))
		}
		return lines, nil
	})
	if shared {
		s.log.Debug("blame load coalesced", slog.String("path", path))
	}
	lines, _ := v.([]git.BlameLine)
	return lines, s.generation(key) == gen
}

func (s *Service) generation(key string) generation {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return generation{epoch: s.epoch, n: s.gens[key]}
}

// store caches lines for key unless its generation moved on since gen.
func (s *Service) store(key string, gen generation, lines []git.BlameLine) bool {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if (generation{epoch: s.epoch, n: s.gens[key]}) != gen {
		return false
	}
	s.entries.SetDefault(key, &entry{lines: lines, loadedAt: s.now()})
	return true
}

// GetLine returns the blame of the 1-based line n.
func (s *Service) GetLine(path string, n int) (git.BlameLine, bool) {
	for _, line := range s.Get(path) {
		if line.LineNumber == n {
			return line, true
		}
	}
	return git.BlameLine{}, false
}

// GetLines returns the lines numbered start through end, inclusive.
func (s *Service) GetLines(path string, start, end int) []git.BlameLine {
	if start > end {
		return nil
	}
	var out []git.BlameLine
	for _, line := range s.Get(path) {
		if line.LineNumber >= start && line.LineNumber <= end {
			out = append(out, line)
		}
	}
	return out
}

// LoadInBackground refreshes path on the worker pool and publishes a Loaded
// event to subscribers once done. Failures are logged and publish nothing; so
// does a load overtaken by Invalidate or Clear, whose newer load publishes
// instead.
func (s *Service) LoadInBackground(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	ok := s.pool.Submit(func() {
		lines, current := s.get(path)
		if !current {
			s.log.Debug("background load superseded", slog.String("path", path))
			return
		}
		s.subs.publish(Loaded{Path: path, Lines: lines})
	})
	if !ok {
		s.log.Debug("background load dropped: service closed", slog.String("path", path))
	}
}

// EnsureLoaded makes sure blame for path is available, opening its repository
// if needed. It reports whether any lines were found.
func (s *Service) EnsureLoaded(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	if lines, ok := s.fresh(cacheKey(path)); ok {
		return len(lines) > 0
	}
	if !s.resolver.TryOpen(path) {
		return false
	}
	return len(s.Get(path)) > 0
}

// Invalidate drops the entry for path. Loads of path already running when it
// is called are not reused by later calls.
func (s *Service) Invalidate(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	key := cacheKey(path)
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gens[key]++
	s.entries.Delete(key)
}

// Clear drops every entry, with the same effect on running loads as
// Invalidate.
func (s *Service) Clear() {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.epoch++
	clear(s.gens)
	s.entries.Flush()
}

// Subscribe registers fn for Loaded events. Calling the returned func removes
// it; further calls are no-ops.
func (s *Service) Subscribe(fn func(Loaded)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	return s.subs.add(fn)
}

// Close waits for queued and running background loads. Later calls to
// LoadInBackground are ignored.
func (s *Service) Close() {
	s.pool.Close()
}
