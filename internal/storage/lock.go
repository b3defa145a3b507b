package storage

import (
	"sync"
)

type locker interface {
	tryLock() (release func() error, err error)
}

// memLock only excludes holders inside this process.
type memLock struct {
	mu sync.Mutex
}

func (l *memLock) tryLock() (func() error, error) {
	if !l.mu.TryLock() {
		return nil, ErrLocked
	}
	var once sync.Once
	return func() error {
		once.Do(l.mu.Unlock)
		return nil
	}, nil
}

// fileLock is an advisory lock on a file shared by every process using the
// same state location.
type fileLock struct {
	path string
}
