package services

import (
	"fmt"
	"sort"
	"sync"
)

// keyedLocker serializes in-process work on the same keys. The database
// transaction still guards atomicity; this only keeps two requests on one
// task from interleaving their read-diff-write inside a single instance.
// Entries live only while someone holds or waits for them.
type keyedLocker struct {
	enabled bool
	mu      sync.Mutex
	locks   map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocker(enabled bool) *keyedLocker {
	return &keyedLocker{enabled: enabled, locks: make(map[string]*lockEntry)}
}

func (l *keyedLocker) lockKeys(keys ...string) func() {
	if l == nil || !l.enabled || len(keys) == 0 {
		return func() {}
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	l.mu.Lock()
	held := make([]string, 0, len(sorted))
	acquired := make([]*lockEntry, 0, len(sorted))
	for i, k := range sorted {
		if i > 0 && sorted[i-1] == k {
			continue
		}
		e := l.locks[k]
		if e == nil {
			e = &lockEntry{}
			l.locks[k] = e
		}
		e.refs++
		held = append(held, k)
		acquired = append(acquired, e)
	}
	l.mu.Unlock()
	for _, e := range acquired {
		e.mu.Lock()
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].mu.Unlock()
		}
		l.mu.Lock()
		for i, k := range held {
			if acquired[i].refs--; acquired[i].refs == 0 {
				delete(l.locks, k)
			}
		}
		l.mu.Unlock()
	}
}

func taskKey(id uint) string {
	return fmt.Sprintf("task:%d", id)
}
