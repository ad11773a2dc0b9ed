package internal

import "time"

// State is the lifecycle state of a campaign.
type State int32

const (
	StateIdle State = iota
	StateSourceLoaded
	StateTemplatesCompiled
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSourceLoaded:
		return "source_loaded"
	case StateTemplatesCompiled:
		return "templates_compiled"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome labels reported to an Observer.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

// Outcome is the result of one attempt.
type Outcome struct {
	Err       *Failure // nil when delivered
	Address   string
	MessageID string // empty when the channel assigns none
	Index     int
	Elapsed   time.Duration
}

// Delivered reports whether the channel accepted the message.
func (o Outcome) Delivered() bool {
	return o.Err == nil
}

// Result summarises a run. Outcomes are in source order and cover only the
// recipients that were attempted.
type Result struct {
	Started  time.Time
	Finished time.Time
	RunID    string
	Outcomes []Outcome
	State    State

	Total     int // records loaded
	Attempted int
	Delivered int
	Failed    int
}

// Failures returns the recorded recipient failures in source order.
func (r *Result) Failures() []*Failure {
	var out []*Failure
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o.Err)
		}
	}
	return out
}

// Skipped returns the number of loaded records never attempted.
func (r *Result) Skipped() int {
	return r.Total - r.Attempted
}

// Duration returns the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
