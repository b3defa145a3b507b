// Package scheduler runs one slot-matching + rotation pass per invocation.
//
// # Run lifecycle
//
// A run moves through
//
//	IDLE -> SLOT_CHOSEN -> CONTENT_CHOSEN -> DISPATCHED -> RECORDED
//
// or ends early in NO_OP when no slot is eligible. Persisted state is read
// once after taking the state lock and written once, only after the poll was
// published. A failed publish therefore leaves the same slot and the same
// poll eligible for the next invocation.
//
// # Triggers
//
// Runner.Run is meant for an external trigger (cron, a CI schedule, a
// systemd timer). Daemon wraps it in an in-process cron trigger for hosts
// without one.
package scheduler
