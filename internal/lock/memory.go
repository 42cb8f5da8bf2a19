package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLocker implements Locker inside a single process.  It mirrors the
// Redis locker's contract, including lease expiry, so the purchase
// orchestrator can be exercised in tests without a Redis server.
type MemoryLocker struct {
	mu     sync.Mutex
	holder map[string]memoryGrant
}

type memoryGrant struct {
	token   string
	expires time.Time
}

// NewMemoryLocker returns an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{holder: make(map[string]memoryGrant)}
}

// Acquire polls for the lock until granted or the wait window elapses.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, wait, lease time.Duration) (Lock, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	for {
		if l.tryGrant(key, token, lease) {
			return &memoryLock{locker: l, key: key, token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// tryGrant takes the lock when it is free or its lease has lapsed.
func (l *MemoryLocker) tryGrant(key, token string, lease time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.holder[key]
	if ok && time.Now().Before(g.expires) {
		return false
	}
	l.holder[key] = memoryGrant{token: token, expires: time.Now().Add(lease)}
	return true
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  string
}

// Release removes the grant only while this holder still owns it.
func (m *memoryLock) Release(_ context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	if g, ok := m.locker.holder[m.key]; ok && g.token == m.token {
		delete(m.locker.holder, m.key)
	}
	return nil
}

// Held reports whether this holder still owns an unexpired grant.
func (m *memoryLock) Held(_ context.Context) (bool, error) {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	g, ok := m.locker.holder[m.key]
	return ok && g.token == m.token && time.Now().Before(g.expires), nil
}
