//go:build !unix

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Without flock the lock is an exclusively created file removed on release.
// A crashed run leaves it behind; delete it by hand.
func (l *fileLock) tryLock() (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("lock %s: %w", l.path, err)
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
	_ = f.Close()

	var (
		once   sync.Once
		relErr error
	)
	return func() error {
		once.Do(func() { relErr = os.Remove(l.path) })
		return relErr
	}, nil
}
