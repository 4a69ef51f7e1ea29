package workflow

// State represents a stage in the invoice processing lifecycle
type State string

const (
	StatePending       State = "PENDING"
	StateUploading     State = "UPLOADING" // reserved, not wired into the pipeline
	StateExtracting    State = "EXTRACTING"
	StateValidating    State = "VALIDATING"
	StateReviewPending State = "REVIEW_PENDING"
	StateCompleted     State = "COMPLETED"
	StateError         State = "ERROR"
)

var validStates = map[State]bool{
	StatePending:       true,
	StateUploading:     true,
	StateExtracting:    true,
	StateValidating:    true,
	StateReviewPending: true,
	StateCompleted:     true,
	StateError:         true,
}

// settledStates are terminal for one automatic pipeline run. COMPLETED and
// ERROR can still be left through a human save, so they are not terminal in
// the no-further-transitions sense.
var settledStates = map[State]bool{
	StateReviewPending: true,
	StateCompleted:     true,
	StateError:         true,
}

// IsSettled returns true if the automatic pipeline stops at this state
func (s State) IsSettled() bool {
	return settledStates[s]
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
