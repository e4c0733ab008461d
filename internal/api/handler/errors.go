package handler

// OperationError attaches the failure message of the operation that was being
// served. The central error handler uses it for errors it cannot classify.
type OperationError struct {
	Message string
	Err     error
}

func (e *OperationError) Error() string { return e.Message + ": " + e.Err.Error() }

func (e *OperationError) Unwrap() error { return e.Err }

func fail(message string, err error) error {
	return &OperationError{Message: message, Err: err}
}
