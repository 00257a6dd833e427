// Package gate serializes operations that share a key. The booking and
// flight services use it with the flight id so that each read-check-write
// sequence on a flight runs alone.
package gate

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Gate hands out one lease per key at a time. The zero value is not usable;
// call New.
type Gate struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

func New() *Gate {
	return &Gate{locks: make(map[string]*semaphore.Weighted)}
}

// Lease is held until Release. Release may be called more than once; only
// the first call frees the key.
type Lease struct {
	once sync.Once
	sem  *semaphore.Weighted
}

func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if l.sem != nil {
			l.sem.Release(1)
		}
	})
}

// Acquire blocks until the lease for key is free or ctx is done. A blank key
// returns a lease that guards nothing. Leases are not reentrant: acquiring a
// key that the caller already holds deadlocks until ctx is done.
func (g *Gate) Acquire(ctx context.Context, key string) (*Lease, error) {
	if strings.TrimSpace(key) == "" {
		return &Lease{}, nil
	}

	sem := g.lockFor(key)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &Lease{sem: sem}, nil
}

func (g *Gate) lockFor(key string) *semaphore.Weighted {
	g.mu.Lock()
	defer g.mu.Unlock()

	sem, ok := g.locks[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		g.locks[key] = sem
	}
	return sem
}
