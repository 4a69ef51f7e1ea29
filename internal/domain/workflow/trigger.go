package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerStartExtraction    Trigger = "START_EXTRACTION"
	TriggerCompleteExtraction Trigger = "COMPLETE_EXTRACTION"
	TriggerPassValidation     Trigger = "PASS_VALIDATION"
	TriggerRequestReview      Trigger = "REQUEST_REVIEW"
	TriggerFail               Trigger = "FAIL"
	TriggerSaveReview         Trigger = "SAVE_REVIEW"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
