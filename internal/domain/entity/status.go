package entity

// Status tracks where an invoice record is in its processing lifecycle.
// String values mirror the workflow package's states.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusUploading     Status = "UPLOADING" // reserved for a future chunked upload flow
	StatusExtracting    Status = "EXTRACTING"
	StatusValidating    Status = "VALIDATING"
	StatusReviewPending Status = "REVIEW_PENDING"
	StatusCompleted     Status = "COMPLETED"
	StatusError         Status = "ERROR"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsSettled reports whether the automatic pipeline has finished with this
// record for the current run. A settled record only changes again through
// human action (save or re-upload).
func (s Status) IsSettled() bool {
	switch s {
	case StatusCompleted, StatusReviewPending, StatusError:
		return true
	}
	return false
}
