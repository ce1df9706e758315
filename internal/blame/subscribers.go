package blame

import (
	"sync"

	"github.com/thiagokokada/gitblame-go/internal/git"
)

// Loaded is published after a background load completes.
type Loaded struct {
	Path  string
	Lines []git.BlameLine
}

type subscription struct {
	id int
	fn func(Loaded)
}

type subscribers struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

func (s *subscribers) add(fn func(Loaded)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *subscribers) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// publish calls every current subscriber in registration order. The list is
// copied first so callbacks may subscribe or unsubscribe.
func (s *subscribers) publish(ev Loaded) {
	s.mu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn(ev)
	}
}
