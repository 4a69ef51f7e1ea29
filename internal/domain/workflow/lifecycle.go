package workflow

// NewLifecycleBuilder returns a builder configured with the invoice
// processing lifecycle:
//
//	PENDING -> EXTRACTING -> VALIDATING -> COMPLETED | REVIEW_PENDING
//
// Any pre-settled state may fail into ERROR. REVIEW_PENDING, ERROR and
// COMPLETED accept a human save, which re-validates and lands on COMPLETED.
// UPLOADING exists as a state but has no transitions wired.
func NewLifecycleBuilder() StateMachineBuilder {
	b := NewBuilder()

	b.Configure(StatePending).
		Permit(TriggerStartExtraction, StateExtracting).
		Permit(TriggerFail, StateError)

	b.Configure(StateExtracting).
		Permit(TriggerCompleteExtraction, StateValidating).
		Permit(TriggerFail, StateError)

	b.Configure(StateValidating).
		Permit(TriggerPassValidation, StateCompleted).
		Permit(TriggerRequestReview, StateReviewPending).
		Permit(TriggerFail, StateError)

	b.Configure(StateReviewPending).
		Permit(TriggerSaveReview, StateCompleted)

	b.Configure(StateError).
		Permit(TriggerSaveReview, StateCompleted)

	b.Configure(StateCompleted).
		Permit(TriggerSaveReview, StateCompleted)

	return b
}
