package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"pollcaster/internal/slot"
	logx "pollcaster/pkg/logx"
)

const (
	ledgerFile  = "state.json"
	trackerFile = "asked.json"
	lockFile    = "pollcaster.lock"
)

// fileStore keeps state in two small JSON documents.
//
// Files:
//   - <dir>/state.json  {"posted": ["2026-01-02-08", ...]}
//   - <dir>/asked.json  {"asked": ["<id>", ...]}
//
// Each save rewrites a file through a temp file + rename.
type fileStore struct {
	log logx.Logger
	fs  afero.Fs
	dir string

	lock locker

	mu     sync.Mutex
	closed bool
}

type ledgerDoc struct {
	Posted []string `json:"posted"`
}

type trackerDoc struct {
	Asked []string `json:"asked"`
}

func openFile(cfg Config, log logx.Logger) (Repository, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	fs := cfg.Fs
	var lk locker
	if fs == nil {
		fs = afero.NewOsFs()
		lk = &fileLock{path: filepath.Join(dir, lockFile)}
	} else {
		// Non-OS filesystems share no lock with other processes.
		lk = &memLock{}
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &fileStore{log: log, fs: fs, dir: dir, lock: lk}, nil
}

func (s *fileStore) Lock(ctx context.Context) (func() error, error) {
	_ = ctx
	return s.lock.tryLock()
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fileStore) Load(ctx context.Context) (State, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrClosed
	}

	var st State

	var led ledgerDoc
	if s.readDoc(ledgerFile, &led) {
		st.Posted = decodeKeys(led.Posted, s.log)
	}
	var tr trackerDoc
	if s.readDoc(trackerFile, &tr) {
		st.Asked = tr.Asked
	}
	return st, nil
}

func (s *fileStore) Save(ctx context.Context, st State) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := s.writeDoc(ledgerFile, ledgerDoc{Posted: encodeKeys(st.Posted)}); err != nil {
		return err
	}
	asked := st.Asked
	if asked == nil {
		asked = []string{}
	}
	return s.writeDoc(trackerFile, trackerDoc{Asked: asked})
}

// readDoc decodes name into v. Missing or corrupt files report false.
func (s *fileStore) readDoc(name string, v any) bool {
	path := filepath.Join(s.dir, name)
	b, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("state file unreadable; using empty state", logx.String("path", path), logx.Err(err))
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		s.log.Warn("state file corrupt; using empty state", logx.String("path", path), logx.Err(err))
		return false
	}
	return true
}

func (s *fileStore) writeDoc(name string, v any) error {
	path := filepath.Join(s.dir, name)
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return s.fs.Rename(tmp, path)
}

func encodeKeys(keys []slot.Key) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}

func decodeKeys(raw []string, log logx.Logger) []slot.Key {
	out := make([]slot.Key, 0, len(raw))
	for _, r := range raw {
		k, err := slot.ParseKey(r)
		if err != nil {
			log.Warn("skipping malformed ledger key", logx.String("key", r))
			continue
		}
		out = append(out, k)
	}
	return out
}
