package veracore

import "fmt"

// AuthError means a login or system-selection landmark never appeared.
// It is fatal to the whole sync run and is never retried automatically.
type AuthError struct {
	Step string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("veracore auth failed at %s: %v", e.Step, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DialogOpenError means every click strategy failed to open or reveal the
// accessorial fee window. Fatal to the current fee submission only.
type DialogOpenError struct {
	Err error
}

func (e *DialogOpenError) Error() string {
	return fmt.Sprintf("open fee window: %v", e.Err)
}

func (e *DialogOpenError) Unwrap() error { return e.Err }

// FeeSubmissionError means the submission flow failed at a named step.
// Fatal to the current fee line only.
type FeeSubmissionError struct {
	Step string
	Err  error
}

func (e *FeeSubmissionError) Error() string {
	return fmt.Sprintf("fee submission failed at %s: %v", e.Step, e.Err)
}

func (e *FeeSubmissionError) Unwrap() error { return e.Err }

// VerificationMismatch means a post-write read-back did not contain the
// expected value. The submission proceeds; the outcome is flagged unverified.
type VerificationMismatch struct {
	Field string
	Want  string
	Got   string
}

func (e *VerificationMismatch) Error() string {
	return fmt.Sprintf("%s read-back %q does not contain %q", e.Field, e.Got, e.Want)
}
