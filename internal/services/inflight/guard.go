// Package inflight tracks which channels have a reply being generated.
package inflight

import "sync"

// Guard refuses a second acquisition for a key until the first is released.
// A disabled guard admits every caller.
type Guard struct {
	enabled bool
	active  sync.Map
}

func NewGuard(enabled bool) *Guard {
	return &Guard{enabled: enabled}
}

// TryAcquire claims key. When ok is false another caller holds it.
// release must be called exactly once when ok is true.
func (g *Guard) TryAcquire(key string) (release func(), ok bool) {
	if !g.enabled {
		return func() {}, true
	}

	if _, loaded := g.active.LoadOrStore(key, struct{}{}); loaded {
		return nil, false
	}

	var once sync.Once
	return func() {
		once.Do(func() { g.active.Delete(key) })
	}, true
}

// Active reports whether key is currently held
func (g *Guard) Active(key string) bool {
	_, exists := g.active.Load(key)
	return exists
}

// Count returns the number of keys currently held
func (g *Guard) Count() int {
	count := 0
	g.active.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}
