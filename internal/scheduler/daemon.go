package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "pollcaster/pkg/logx"
)

// Daemon triggers Runner.Run on a cron schedule inside one process.
//
// Overlapping ticks are skipped, so runs stay serialized even when a publish
// call is slow.
type Daemon struct {
	runner *Runner
	spec   string
	log    logx.Logger

	// Now is the clock used for each run; defaults to time.Now.
	Now func() time.Time
	// OnRun, if set, observes every run result.
	OnRun func(Result, error)

	mu     sync.Mutex
	runMu  sync.Mutex
	c      *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDaemon(r *Runner, trigger string, log logx.Logger) (*Daemon, error) {
	if r == nil {
		return nil, errors.New("daemon: runner is required")
	}
	spec, err := ParseTrigger(trigger)
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Daemon{runner: r, spec: spec, log: log.With(logx.String("comp", "daemon")), Now: time.Now}, nil
}

func (d *Daemon) Spec() string { return d.spec }

// Start schedules runs and fires one immediately so a restart inside a slot
// window does not wait for the next tick.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.c != nil {
		return nil
	}
	rctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.c = cron.New(
		cron.WithParser(cronParser),
		cron.WithLocation(d.runner.cal.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := d.c.AddFunc(d.spec, func() { d.tick(rctx) }); err != nil {
		cancel()
		d.c = nil
		return err
	}
	d.c.Start()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.tick(rctx)
	}()

	d.log.Info("daemon started", logx.String("trigger", d.spec), logx.String("tz", d.runner.cal.Location().String()))
	return nil
}

// Stop waits for a run in progress, then returns.
func (d *Daemon) Stop(ctx context.Context) {
	d.mu.Lock()
	c := d.c
	cancel := d.cancel
	d.c = nil
	d.cancel = nil
	d.mu.Unlock()
	if c == nil {
		return
	}

	done := c.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
	d.wg.Wait()
	if cancel != nil {
		cancel()
	}
	d.log.Info("daemon stopped")
}

func (d *Daemon) tick(ctx context.Context) {
	// The startup run and a cron tick may coincide.
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	res, err := d.runner.Run(ctx, d.Now())
	if d.OnRun != nil {
		d.OnRun(res, err)
	}
}
