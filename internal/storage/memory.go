package storage

import (
	"context"
	"sync"
)

// Memory is a process-local Repository, mainly for tests.
type Memory struct {
	mu     sync.Mutex
	st     State
	saves  int
	closed bool

	lock memLock

	// SaveErr, when set, is returned by Save without storing anything.
	SaveErr error
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(ctx context.Context) (State, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return State{}, ErrClosed
	}
	return cloneState(m.st), nil
}

func (m *Memory) Save(ctx context.Context, st State) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.st = cloneState(st)
	m.saves++
	return nil
}

func (m *Memory) Lock(ctx context.Context) (func() error, error) {
	_ = ctx
	return m.lock.tryLock()
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Saves reports how many successful Save calls happened.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneState(st State) State {
	out := State{}
	if st.Posted != nil {
		out.Posted = append(out.Posted[:0:0], st.Posted...)
	}
	if st.Asked != nil {
		out.Asked = append(out.Asked[:0:0], st.Asked...)
	}
	return out
}
