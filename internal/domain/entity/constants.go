package entity

// Intake limits for uploaded invoice documents.
const (
	MaxFileSizeMB    = 10
	MaxFileSizeBytes = MaxFileSizeMB * 1024 * 1024
)

// DefaultCurrency is assumed when the document states amounts without an
// explicit currency.
const DefaultCurrency = "USD"

// SupportedMediaTypes lists the document types accepted at intake, in the
// order they are reported back to the user on rejection.
var SupportedMediaTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// IsSupportedMediaType reports whether a media type is accepted at intake.
func IsSupportedMediaType(mediaType string) bool {
	for _, mt := range SupportedMediaTypes {
		if mt == mediaType {
			return true
		}
	}
	return false
}
