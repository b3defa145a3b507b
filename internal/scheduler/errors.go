package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolExhausted means restarting the rotation still found nothing.
	ErrPoolExhausted = errors.New("content pool exhausted after restart")
	// ErrPublish wraps a publisher failure. State was not modified.
	ErrPublish = errors.New("publish failed")
	// ErrRecord means the poll was published but saving state failed.
	ErrRecord = errors.New("record state failed")
)

// stageError tags an underlying error with one of the sentinels above while
// keeping both reachable through errors.Is / errors.As.
type stageError struct {
	stage error
	err   error
}

func (e stageError) Error() string { return fmt.Sprintf("%v: %v", e.stage, e.err) }

func (e stageError) Unwrap() []error { return []error{e.stage, e.err} }

func wrapStage(stage, err error) error {
	if err == nil {
		return nil
	}
	return stageError{stage: stage, err: err}
}
