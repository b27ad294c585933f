package layout

import "fmt"

// ValidationError reports a partition layout that cannot be realized as a
// valid disk image. It is detected before any I/O takes place.
type ValidationError struct {
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "invalid layout: " + e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
