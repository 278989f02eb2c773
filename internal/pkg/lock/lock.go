// Package lock provides per-session locking around balance mutation.
// Each session gets its own mutex, so sessions never block each other.
package lock

import "sync"

// SessionLock hands out one mutex per session ID.
type SessionLock struct {
	locks sync.Map // map[string]*sync.Mutex
}

// NewSessionLock creates a new SessionLock instance.
func NewSessionLock() *SessionLock {
	return &SessionLock{}
}

// getLock retrieves or creates the mutex for the given session.
func (sl *SessionLock) getLock(sessionID string) *sync.Mutex {
	if v, ok := sl.locks.Load(sessionID); ok {
		return v.(*sync.Mutex)
	}
	actual, _ := sl.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Lock acquires the lock for a session.
func (sl *SessionLock) Lock(sessionID string) {
	sl.getLock(sessionID).Lock()
}

// Unlock releases the lock for a session.
func (sl *SessionLock) Unlock(sessionID string) {
	if v, ok := sl.locks.Load(sessionID); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (sl *SessionLock) TryLock(sessionID string) bool {
	return sl.getLock(sessionID).TryLock()
}

// WithLock executes fn while holding the session's lock.
func (sl *SessionLock) WithLock(sessionID string, fn func() error) error {
	sl.Lock(sessionID)
	defer sl.Unlock(sessionID)
	return fn()
}

// IsLocked checks if a session currently holds its lock.
// This is a point-in-time check and may change immediately after.
func (sl *SessionLock) IsLocked(sessionID string) bool {
	v, ok := sl.locks.Load(sessionID)
	if !ok {
		return false
	}
	mu := v.(*sync.Mutex)
	if mu.TryLock() {
		mu.Unlock()
		return false
	}
	return true
}

// Release forgets a finished session's mutex. The caller must not hold it.
func (sl *SessionLock) Release(sessionID string) {
	sl.locks.Delete(sessionID)
}

// DefaultSessionLock is the process-wide session lock.
var DefaultSessionLock = NewSessionLock()
