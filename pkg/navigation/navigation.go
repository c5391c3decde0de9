// Package navigation provides implementations of the apicall.Navigator interface.
package navigation

import (
	"context"
	"sync"
)

// History records visited paths.
type History struct {
	lock  sync.Mutex
	paths []string
}

func NewHistory() *History {
	return &History{}
}

func (h *History) NavigateTo(_ context.Context, path string) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.paths = append(h.paths, path)
	return nil
}

// Current returns the last visited path, or an empty string.
func (h *History) Current() string {
	h.lock.Lock()
	defer h.lock.Unlock()
	if len(h.paths) == 0 {
		return ""
	}
	return h.paths[len(h.paths)-1]
}

// Paths returns a copy of all visited paths, the oldest first.
func (h *History) Paths() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	out := make([]string, len(h.paths))
	copy(out, h.paths)
	return out
}

// Func adapts a function to the apicall.Navigator interface.
type Func func(ctx context.Context, path string) error

func (f Func) NavigateTo(ctx context.Context, path string) error {
	return f(ctx, path)
}
