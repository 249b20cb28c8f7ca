package services

import "errors"

// ValidationError marks rejected user input. Handlers convert it to a 400
// with the message as the user-visible error string.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// NewValidationError creates a ValidationError with the given user-visible
// message.
func NewValidationError(msg string) error {
	return &ValidationError{msg: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrEmptyCompletion is returned when the upstream completion API answers
// without content. Handlers convert it to a 502.
var ErrEmptyCompletion = errors.New("no response from completion API")
