package service

// ValidationError reports missing or invalid input fields. Handlers map it
// to a 400 with the message as-is.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalid(msg string) error { return &ValidationError{msg: msg} }
