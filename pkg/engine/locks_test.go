package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserLockSerializesSameUser(t *testing.T) {
	t.Parallel()

	locks := newUserLocks()
	const goroutines = 20

	var wg sync.WaitGroup
	var inCritical, max int
	var mu sync.Mutex

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.acquire("u1")
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > max {
				max = inCritical
			}
			mu.Unlock()

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "only one goroutine per user at a time")
}

func TestUserLockReleasesMapEntry(t *testing.T) {
	t.Parallel()

	locks := newUserLocks()
	release := locks.acquire("u1")
	release()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks, "entries are dropped once unused")
}

func TestUserLockIndependentUsers(t *testing.T) {
	t.Parallel()

	locks := locksHoldingUser(t, "u1")
	// A different user must not block.
	release := locks.acquire("u2")
	release()
}

func locksHoldingUser(t *testing.T, userID string) *userLocks {
	t.Helper()
	locks := newUserLocks()
	release := locks.acquire(userID)
	t.Cleanup(release)
	return locks
}
