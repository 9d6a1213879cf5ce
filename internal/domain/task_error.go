package domain

import "fmt"

// TaskError accumulates the failures of independent units of work run by a
// worker pool.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d tasks failed:", len(e.Errors))
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

// Append records err, ignoring nil.
func (e *TaskError) Append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

// Err returns nil when nothing failed, e otherwise.
func (e *TaskError) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
