package checkout

import "fmt"

// ValidationError is a failed checkout precondition. Message is shown to the
// customer as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrIdentityRequired = &ValidationError{Message: "Please enter your Discord username or ID"}
	ErrEmptyCart        = &ValidationError{Message: "Your cart is empty"}
)

// SubmitError reports a webhook call that did not succeed. StatusCode is zero
// when the request never got a response.
type SubmitError struct {
	StatusCode int
	Err        error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("checkout: post webhook: %v", e.Err)
	}
	return fmt.Sprintf("checkout: webhook failed with status %d", e.StatusCode)
}

func (e *SubmitError) Unwrap() error { return e.Err }
