package store

import "time"

type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpPatch  Op = "patch"
	OpDelete Op = "delete"
	OpReset  Op = "reset"
)

type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
	// PhaseAborted marks an op whose context was cancelled; nothing is merged.
	PhaseAborted Phase = "aborted"
)

// Event describes one state transition of one slice. State is the slice
// snapshot right after the transition.
type Event struct {
	Slice string    `json:"slice"`
	Op    Op        `json:"op"`
	Phase Phase     `json:"phase"`
	Seq   uint64    `json:"seq"`
	ID    string    `json:"id,omitempty"`
	Error string    `json:"error,omitempty"`
	Stale bool      `json:"stale,omitempty"`
	At    time.Time `json:"at"`
	State any       `json:"state,omitempty"`
}

// Type renders the action name, e.g. "articles/list/pending".
func (e Event) Type() string {
	return e.Slice + "/" + string(e.Op) + "/" + string(e.Phase)
}
