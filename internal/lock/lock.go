package lock

import (
	"context"
	"sync"
)

// Locker serializes booking mutations per teacher. Acquire blocks until the
// teacher's lock is held or the context is cancelled; the returned release
// function must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, teacherID string) (release func(), err error)
}

// MutexLocker keys an in-process mutex per teacher. It is the default when no
// distributed lock is configured, and is sufficient for a single instance.
type MutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMutexLocker builds an in-process per-teacher locker.
func NewMutexLocker() *MutexLocker {
	return &MutexLocker{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the per-teacher mutex is held.
func (l *MutexLocker) Acquire(ctx context.Context, teacherID string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	m, ok := l.locks[teacherID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[teacherID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
