package domain

// Write stages of the proposal creation chain, in execution order.
const (
	StageProposal   = "proposal"
	StageProject    = "project"
	StageMilestones = "milestones"
)

// CreationError tags a proposal-creation failure with the write stage that
// failed. The three writes are only best-effort atomic, so callers need to
// know how far the chain got before it broke.
type CreationError struct {
	Stage string
	Err   error
}

func (e *CreationError) Error() string {
	return "create proposal: " + e.Stage + " stage: " + e.Err.Error()
}

func (e *CreationError) Unwrap() error { return e.Err }
