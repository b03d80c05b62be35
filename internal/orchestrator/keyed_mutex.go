package orchestrator

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes work per user ID. Entries are reference-counted and
// removed once the last holder releases, so the map stays proportional to the
// number of users currently being processed.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[uuid.UUID]*lockEntry)}
}

// lock acquires the mutex for id and returns the matching unlock function.
func (k *keyedMutex) lock(id uuid.UUID) func() {
	k.mu.Lock()
	entry, ok := k.entries[id]
	if !ok {
		entry = &lockEntry{}
		k.entries[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}
