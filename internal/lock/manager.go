// Package lock serializes access to named resources within one process.
package lock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Manager hands out exclusive locks keyed by resource name.
type Manager struct {
	locks sync.Map // resource -> *resourceLock

	acquired atomic.Uint64
	released atomic.Uint64
	timeouts atomic.Uint64
}

type resourceLock struct {
	sem chan struct{}

	mu     sync.Mutex
	holder string
}

// LockStats holds locking statistics
type LockStats struct {
	TotalAcquired uint64
	TotalReleased uint64
	TotalTimeouts uint64
}

func NewManager() *Manager {
	return &Manager{}
}

var defaultManager = NewManager()

// Default returns the process wide manager.
func Default() *Manager {
	return defaultManager
}

func (m *Manager) resource(name string) *resourceLock {
	l, _ := m.locks.LoadOrStore(name, &resourceLock{sem: make(chan struct{}, 1)})
	return l.(*resourceLock)
}

// Lock blocks until resource is free or ctx is done.
func (m *Manager) Lock(ctx context.Context, resource string) (*Guard, error) {
	l := m.resource(resource)
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		m.timeouts.Add(1)
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", resource, ctx.Err())
	}
	return m.hold(resource, l), nil
}

// TryLock acquires resource without blocking.
func (m *Manager) TryLock(resource string) (*Guard, error) {
	l := m.resource(resource)
	select {
	case l.sem <- struct{}{}:
		return m.hold(resource, l), nil
	default:
		return nil, fmt.Errorf("resource %s is already locked", resource)
	}
}

func (m *Manager) hold(resource string, l *resourceLock) *Guard {
	holder := uuid.New().String()
	l.mu.Lock()
	l.holder = holder
	l.mu.Unlock()
	m.acquired.Add(1)
	return &Guard{manager: m, resource: resource, holder: holder, lock: l}
}

func (m *Manager) IsLocked(resource string) bool {
	l, ok := m.locks.Load(resource)
	if !ok {
		return false
	}
	return len(l.(*resourceLock).sem) > 0
}

func (m *Manager) GetStats() LockStats {
	return LockStats{
		TotalAcquired: m.acquired.Load(),
		TotalReleased: m.released.Load(),
		TotalTimeouts: m.timeouts.Load(),
	}
}

// WithLock runs fn while holding resource.
func (m *Manager) WithLock(ctx context.Context, resource string, fn func() error) error {
	guard, err := m.Lock(ctx, resource)
	if err != nil {
		return err
	}
	defer guard.Release()
	return fn()
}

// Guard is one holder's claim on a resource.
type Guard struct {
	manager  *Manager
	resource string
	holder   string
	lock     *resourceLock
}

func (g *Guard) Resource() string {
	return g.resource
}

// Release frees the resource. Releasing twice is an error.
func (g *Guard) Release() error {
	g.lock.mu.Lock()
	if g.lock.holder != g.holder {
		g.lock.mu.Unlock()
		return fmt.Errorf("lock on %s is not held by this guard", g.resource)
	}
	g.lock.holder = ""
	g.lock.mu.Unlock()

	<-g.lock.sem
	g.manager.released.Add(1)
	return nil
}
