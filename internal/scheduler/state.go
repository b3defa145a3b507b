package scheduler

// State is where a run ended.
type State int

const (
	StateIdle State = iota
	StateSlotChosen
	StateContentChosen
	StateDispatched
	StateRecorded
	StateNoOp
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSlotChosen:
		return "slot_chosen"
	case StateContentChosen:
		return "content_chosen"
	case StateDispatched:
		return "dispatched"
	case StateRecorded:
		return "recorded"
	case StateNoOp:
		return "no_op"
	default:
		return "unknown"
	}
}

// Result describes one run. On error, State is the last state reached.
type Result struct {
	RunID string
	State State

	Forced bool
	Hour   int
	// HasSlot is false for no-op and forced runs.
	HasSlot bool

	ItemID     string
	DeliveryID string
	// Restarted reports that the pool was exhausted and the rotation restarted.
	Restarted bool
}
