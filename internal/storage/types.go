package storage

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/afero"

	"pollcaster/internal/slot"
)

var (
	ErrClosed = errors.New("storage closed")
	// ErrLocked means another run currently holds the state lock.
	ErrLocked = errors.New("state is locked by another run")
)

// Config configures storage.
//
// Driver values:
//   - "file": Path is a directory holding state.json and asked.json
//   - "sqlite": Path is the database file
//   - "memory": Path is ignored
//
// An empty Driver means "file".
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default

	// Fs backs the file driver; nil means the OS filesystem.
	Fs afero.Fs
}

// State is one snapshot of persisted scheduler state, oldest entries first.
type State struct {
	Posted []slot.Key
	Asked  []string
}

// Repository loads and saves State.
//
// Load never fails because state is missing or unreadable; it returns an
// empty State instead. It fails only when the backend itself is unusable.
type Repository interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
	// Lock takes the exclusive run lock without blocking.
	// It returns ErrLocked if another holder exists.
	Lock(ctx context.Context) (release func() error, err error)
	Close() error
}
