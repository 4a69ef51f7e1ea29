package invoice

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned when an operation targets a record that
	// is not (or no longer) in the collection
	ErrRecordNotFound = errors.New("invoice record not found")

	// ErrLineItemOutOfRange is returned for edits addressing a line item
	// index that does not exist
	ErrLineItemOutOfRange = errors.New("line item index out of range")
)

// ExtractionError is returned by extraction collaborators when the model
// call fails, returns malformed output, or the API is unreachable or not
// configured. The message is shown to the user verbatim.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
