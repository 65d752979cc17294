package workflow

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

type threadLock struct {
	sem  *semaphore.Weighted
	refs int
}

// threadLocks grants exclusive, non-blocking access to a thread.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

func newThreadLocks() *threadLocks {
	return &threadLocks{locks: make(map[string]*threadLock)}
}

// acquire returns a release func, or false if the thread is already held.
func (l *threadLocks) acquire(threadID string) (func(), bool) {
	l.mu.Lock()
	lock, ok := l.locks[threadID]
	if !ok {
		lock = &threadLock{sem: semaphore.NewWeighted(1)}
		l.locks[threadID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	if !lock.sem.TryAcquire(1) {
		l.drop(threadID, lock)
		return nil, false
	}

	return func() {
		lock.sem.Release(1)
		l.drop(threadID, lock)
	}, true
}

func (l *threadLocks) drop(threadID string, lock *threadLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, threadID)
	}
}
