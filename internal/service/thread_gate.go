package service

import "sync"

// threadGate serializes messages per pending key and numbers them. A turn is
// taken on arrival, before waiting for the lock, so a message still waiting
// marks every earlier in-flight turn as superseded.
type threadGate struct {
	mu      sync.Mutex
	entries map[string]*gateEntry
}

type gateEntry struct {
	mu   sync.Mutex
	refs int
	turn uint64
}

func newThreadGate() *threadGate {
	return &threadGate{entries: make(map[string]*gateEntry)}
}

// enter takes the next turn for key and blocks until the key is free
func (g *threadGate) enter(key string) (turn uint64, leave func()) {
	g.mu.Lock()
	e, ok := g.entries[key]
	if !ok {
		e = &gateEntry{}
		g.entries[key] = e
	}
	e.refs++
	e.turn++
	turn = e.turn
	g.mu.Unlock()

	e.mu.Lock()
	return turn, func() {
		e.mu.Unlock()
		g.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(g.entries, key)
		}
		g.mu.Unlock()
	}
}

// superseded reports whether a later turn than turn has arrived for key
func (g *threadGate) superseded(key string, turn uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[key]
	return ok && e.turn != turn
}
