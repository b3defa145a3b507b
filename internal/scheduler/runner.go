package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pollcaster/internal/content"
	"pollcaster/internal/metrics"
	"pollcaster/internal/publisher"
	"pollcaster/internal/slot"
	"pollcaster/internal/storage"
	logx "pollcaster/pkg/logx"
)

// Options wires a Runner. Calendar, Pool, Repo and Publisher are required.
type Options struct {
	Calendar  *slot.Calendar
	Pool      *content.Pool
	Policy    content.Policy
	Retention int
	// PollDuration is how long a published poll stays open.
	PollDuration time.Duration

	Repo      storage.Repository
	Publisher publisher.Publisher
	Metrics   *metrics.Metrics
	Log       logx.Logger
}

// Runner executes scheduler runs. It keeps no state between runs; every run
// reloads ledger and tracker from the repository.
type Runner struct {
	cal       *slot.Calendar
	policy    content.Policy
	retention int
	duration  time.Duration

	repo    storage.Repository
	pub     publisher.Publisher
	metrics *metrics.Metrics
	log     logx.Logger

	poolMu sync.RWMutex
	pool   *content.Pool
}

func New(opt Options) (*Runner, error) {
	switch {
	case opt.Calendar == nil:
		return nil, errors.New("scheduler: calendar is required")
	case opt.Pool == nil || opt.Pool.Len() == 0:
		return nil, fmt.Errorf("scheduler: %w", content.ErrEmptyPool)
	case opt.Repo == nil:
		return nil, errors.New("scheduler: repository is required")
	case opt.Publisher == nil:
		return nil, errors.New("scheduler: publisher is required")
	}
	policy := opt.Policy
	if policy == "" {
		policy = content.PolicyReset
	}
	dur := opt.PollDuration
	if dur <= 0 {
		dur = 60 * time.Minute
	}
	log := opt.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{
		cal:       opt.Calendar,
		pool:      opt.Pool,
		policy:    policy,
		retention: opt.Retention,
		duration:  dur,
		repo:      opt.Repo,
		pub:       opt.Publisher,
		metrics:   opt.Metrics,
		log:       log.With(logx.String("comp", "scheduler")),
	}, nil
}

// Pool returns the pool runs currently draw from.
func (r *Runner) Pool() *content.Pool {
	r.poolMu.RLock()
	defer r.poolMu.RUnlock()
	return r.pool
}

// SetPool replaces the pool for subsequent runs. A run already in progress
// finishes with the pool it started with.
func (r *Runner) SetPool(p *content.Pool) error {
	if p == nil || p.Len() == 0 {
		return fmt.Errorf("scheduler: %w", content.ErrEmptyPool)
	}
	r.poolMu.Lock()
	r.pool = p
	r.poolMu.Unlock()
	return nil
}

// Run claims the best eligible slot for now, publishes the next poll and
// records both. No eligible slot is a successful no-op.
func (r *Runner) Run(ctx context.Context, now time.Time) (Result, error) {
	return r.run(ctx, now, false)
}

// Force publishes the next poll regardless of the calendar. The ledger is
// neither consulted nor updated; the rotation advances as usual.
func (r *Runner) Force(ctx context.Context, now time.Time) (Result, error) {
	return r.run(ctx, now, true)
}

func (r *Runner) run(ctx context.Context, now time.Time, forced bool) (res Result, err error) {
	res = Result{RunID: uuid.NewString(), State: StateIdle, Forced: forced}
	pool := r.Pool()
	local := r.cal.Local(now)
	log := r.log.With(logx.String("run_id", res.RunID), logx.Time("now", local))
	if forced {
		log = log.With(logx.Bool("forced", true))
	}
	defer func() {
		if err != nil {
			r.metrics.RunFinished("failed")
			log.Error("run failed", logx.String("state", res.State.String()), logx.Err(err))
			return
		}
		r.metrics.RunFinished(res.State.String())
	}()

	release, err := r.repo.Lock(ctx)
	if err != nil {
		return res, err
	}
	defer func() {
		if rerr := release(); rerr != nil {
			log.Warn("state lock release failed", logx.Err(rerr))
		}
	}()

	st, err := r.repo.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("load state: %w", err)
	}
	ledger := slot.LedgerFrom(st.Posted, r.retention)
	tracker := content.TrackerFrom(st.Asked)
	today := slot.DayOf(local)

	// IDLE -> SLOT_CHOSEN
	if !forced {
		hour, ok := slot.Select(now, r.cal, ledger)
		if !ok {
			res.State = StateNoOp
			r.logNoSlot(log, now, ledger)
			return res, nil
		}
		res.Hour, res.HasSlot = hour, true
		res.State = StateSlotChosen
		log = log.With(logx.Int("slot", hour))
	}

	// SLOT_CHOSEN -> CONTENT_CHOSEN
	item, restarted, ok := content.Pick(pool, tracker, r.policy)
	if restarted {
		res.Restarted = true
		log.Info("content pool exhausted; restarting rotation",
			logx.String("policy", string(r.policy)),
			logx.Int("pool_size", pool.Len()),
		)
	}
	if !ok {
		return res, ErrPoolExhausted
	}
	res.ItemID = item.ID
	res.State = StateContentChosen
	log = log.With(logx.String("qid", item.ID))

	// CONTENT_CHOSEN -> DISPATCHED
	start := time.Now()
	deliveryID, err := r.pub.Publish(ctx, publisher.Poll{
		Text:     item.Text(),
		Question: item.Body,
		Choices:  item.Choices,
		Duration: r.duration,
	})
	r.metrics.PublishObserved(time.Since(start).Seconds(), err)
	if err != nil {
		return res, wrapStage(ErrPublish, err)
	}
	res.DeliveryID = deliveryID
	res.State = StateDispatched
	if restarted {
		r.metrics.PoolRestarted()
	}

	// DISPATCHED -> RECORDED
	if !forced {
		ledger.MarkFired(today, res.Hour)
	}
	tracker.Add(item.ID)
	if err := r.repo.Save(ctx, storage.State{Posted: ledger.Keys(), Asked: tracker.IDs()}); err != nil {
		log.Error("poll published but state not saved; next run may repeat it",
			logx.String("delivery_id", deliveryID))
		return res, wrapStage(ErrRecord, err)
	}
	res.State = StateRecorded
	r.metrics.Progress(tracker.Len(), pool.Len())

	log.Info("poll published",
		logx.String("delivery_id", deliveryID),
		logx.Int("consumed", tracker.Len()),
		logx.Int("pool_size", pool.Len()),
	)
	return res, nil
}

func (r *Runner) logNoSlot(log logx.Logger, now time.Time, ledger *slot.Ledger) {
	reason := "outside every slot window"
	for _, c := range slot.Explain(now, r.cal, ledger) {
		if c.InWindow && c.Fired {
			reason = "slot already posted today"
			log = log.With(logx.Int("slot", c.Hour))
			break
		}
	}
	log.Info("no eligible slot; nothing to do", logx.String("reason", reason))
}
