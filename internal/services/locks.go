package services

import (
	"sync"

	"transporte/internal/domain"
)

// keyedLocks hands out one mutex per departure. Entries are dropped once
// nobody holds or waits on them.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[domain.ID]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{entries: map[domain.ID]*keyedEntry{}}
}

// Lock blocks until the key is free and returns its unlock func.
func (k *keyedLocks) Lock(key domain.ID) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
