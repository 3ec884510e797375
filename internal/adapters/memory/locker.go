package memory

import (
	"context"
	"sync"
)

// KeyedLocker serializes operations per key with plain in-process mutexes.
// Sufficient for a single replica; multi-replica deployments use the redis
// locker instead.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: map[string]*lockEntry{}}
}

// Acquire blocks until the key's mutex is held or ctx is done. Entries are
// reference-counted so the map does not grow with the set of sale ids ever
// seen.
func (l *KeyedLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		entry.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		}, nil
	case <-ctx.Done():
		go func() {
			<-acquired
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		}()
		return nil, ctx.Err()
	}
}
