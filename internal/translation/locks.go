package translation

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serializes work per key and drops idle entries.
type keyedMutex struct {
	entries *xsync.MapOf[string, *lockEntry]
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: xsync.NewMapOf[string, *lockEntry]()}
}

func (k *keyedMutex) Lock(key string) func() {
	entry, _ := k.entries.Compute(key, func(current *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			current = &lockEntry{}
		}
		current.refs++
		return current, false
	})
	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.entries.Compute(key, func(current *lockEntry, loaded bool) (*lockEntry, bool) {
			if !loaded {
				return current, true
			}
			current.refs--
			return current, current.refs <= 0
		})
	}
}

func (k *keyedMutex) size() int {
	return k.entries.Size()
}
