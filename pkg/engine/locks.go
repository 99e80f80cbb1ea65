package engine

import (
	"sync"
)

// userLocks serializes inbound handling per user. The transport delivers
// a user's messages in order, but nothing stops a fast resume racing the
// save of its predecessor once handlers run concurrently; the lock makes
// the load/handle/save cycle atomic per user. Entries are reference
// counted so the map doesn't grow with every user ever seen.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// acquire locks the user's mutex and returns the matching release func.
func (l *userLocks) acquire(userID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &userLock{}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
