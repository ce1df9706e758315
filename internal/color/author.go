package color

import (
	"strings"
	"sync"
)

// AuthorColors hands out palette colours to author emails in first-seen
// order. An email keeps its colour until Clear.
type AuthorColors struct {
	palette []RGB

	mu     sync.Mutex
	byMail map[string]RGB
	cursor int
}

// NewAuthorColors uses palette, or DefaultPalette when it is empty.
func NewAuthorColors(palette []RGB) *AuthorColors {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &AuthorColors{
		palette: clonePalette(palette),
		byMail:  map[string]RGB{},
	}
}

// ColorFor returns the colour of email, assigning the next palette entry on
// first sight. Emails compare case-insensitively; an empty email always gets
// the first palette entry and is not recorded.
func (a *AuthorColors) ColorFor(email string) RGB {
	if email == "" {
		return a.palette[0]
	}
	key := strings.ToLower(email)

	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.byMail[key]; ok {
		return c
	}
	c := a.palette[a.cursor%len(a.palette)]
	a.byMail[key] = c
	a.cursor++
	return c
}

// Len reports how many authors have a colour.
func (a *AuthorColors) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byMail)
}

// Clear forgets every assignment and restarts the rotation.
func (a *AuthorColors) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.byMail)
	a.cursor = 0
}
