package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pollcaster/internal/content"
	logx "pollcaster/pkg/logx"
)

const defaultPoolDebounce = 250 * time.Millisecond

// PoolLoader reads and validates a content pool file.
type PoolLoader func(path string) (*content.Pool, error)

// PoolWatcher reloads the content pool when its file changes and hands the
// new pool to a Runner. A file that fails to load or validate is logged and
// the previous pool stays in use.
type PoolWatcher struct {
	runner *Runner
	path   string
	load   PoolLoader
	log    logx.Logger

	// Debounce coalesces bursts of events from editors writing in steps.
	Debounce time.Duration
	// OnReload, if set, observes every reload attempt.
	OnReload func(*content.Pool, error)

	w       *fsnotify.Watcher
	done    chan struct{}
	timerMu sync.Mutex
	timer   *time.Timer
}

func NewPoolWatcher(r *Runner, path string, load PoolLoader, log logx.Logger) *PoolWatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &PoolWatcher{
		runner:   r,
		path:     path,
		load:     load,
		log:      log.With(logx.String("comp", "poolwatch"), logx.String("path", path)),
		Debounce: defaultPoolDebounce,
	}
}

// Start begins watching. The parent directory is watched so that editors
// replacing the file by rename are picked up.
func (pw *PoolWatcher) Start(ctx context.Context) error {
	if pw.runner == nil || pw.load == nil {
		return errors.New("poolwatch: runner and loader are required")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(pw.path)); err != nil {
		_ = w.Close()
		return err
	}
	pw.w = w
	pw.done = make(chan struct{})
	go pw.loop(ctx)
	pw.log.Debug("content watcher started")
	return nil
}

// Close stops watching and waits for the event loop to exit.
func (pw *PoolWatcher) Close() error {
	if pw.w == nil {
		return nil
	}
	err := pw.w.Close()
	<-pw.done
	pw.timerMu.Lock()
	if pw.timer != nil {
		pw.timer.Stop()
	}
	pw.timerMu.Unlock()
	return err
}

func (pw *PoolWatcher) loop(ctx context.Context) {
	defer close(pw.done)
	file := filepath.Base(pw.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-pw.w.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pw.schedule()
			}
		case err, ok := <-pw.w.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				pw.log.Warn("content watch overflow; reloading", logx.Err(err))
				pw.schedule()
				continue
			}
			pw.log.Warn("content watch error", logx.Err(err))
		}
	}
}

func (pw *PoolWatcher) schedule() {
	pw.timerMu.Lock()
	defer pw.timerMu.Unlock()
	if pw.timer != nil {
		pw.timer.Stop()
	}
	pw.timer = time.AfterFunc(pw.Debounce, pw.reload)
}

func (pw *PoolWatcher) reload() {
	p, err := pw.load(pw.path)
	if err == nil {
		err = pw.runner.SetPool(p)
	}
	if err != nil {
		pw.log.Warn("content reload rejected; keeping previous pool", logx.Err(err))
	} else {
		pw.log.Info("content pool reloaded", logx.Int("pool_size", p.Len()))
	}
	if pw.OnReload != nil {
		pw.OnReload(p, err)
	}
}
