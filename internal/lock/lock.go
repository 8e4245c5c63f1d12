// Package lock serializes check-then-act writes per site so two booking
// attempts for the same site cannot interleave their overlap check and
// their insert.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// Locker grants exclusive access to a key until the returned release func
// is called. Acquire blocks until the lock is free or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// SiteKey is the lock key guarding writes to one site.
func SiteKey(siteID uint) string {
	return fmt.Sprintf("site:%d", siteID)
}

// LocalLocker serializes within one process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
