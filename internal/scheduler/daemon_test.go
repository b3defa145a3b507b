package scheduler

import (
	"context"
	"testing"
	"time"

	"pollcaster/internal/content"
)

func TestDaemonRunsOnStart(t *testing.T) {
	f := newFixture(t, mustPool(t, "Q1"), content.PolicyReset)
	d, err := NewDaemon(f.runner, "1h", f.runner.log)
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}
	d.Now = func() time.Time { return at(10, 0, 30) }

	results := make(chan Result, 1)
	d.OnRun = func(res Result, err error) {
		if err != nil {
			t.Errorf("run: %v", err)
		}
		results <- res
	}

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case res := <-results:
		if res.State != StateRecorded || res.Hour != 10 {
			t.Fatalf("res=%+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("startup run did not happen")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	d.Stop(stopCtx)
	d.Stop(stopCtx)

	if n := len(f.pub.questions()); n != 1 {
		t.Fatalf("polls=%d", n)
	}
}

func TestNewDaemonRejectsBadTrigger(t *testing.T) {
	f := newFixture(t, mustPool(t, "Q1"), content.PolicyReset)
	if _, err := NewDaemon(f.runner, "whenever", f.runner.log); err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewDaemon(nil, "5m", f.runner.log); err == nil {
		t.Fatal("expected error for nil runner")
	}
}
