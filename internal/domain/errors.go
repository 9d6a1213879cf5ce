package domain

import "errors"

// Error classes shared across packages. Callers wrap these with context and
// match them with errors.Is.
var (
	ErrConfiguration = errors.New("invalid configuration")
	ErrInputFormat   = errors.New("malformed edge list")
	ErrUnknownNode   = errors.New("unknown node")
	ErrIO            = errors.New("io failure")
	ErrStagnation    = errors.New("round limit exceeded")
	ErrNotFound      = errors.New("not found")
)

// Classify tags err with one of the error classes above. The result matches
// both kind and err under errors.Is.
func Classify(kind, err error) error {
	if err == nil {
		return nil
	}
	return &classified{kind: kind, err: err}
}

type classified struct {
	kind error
	err  error
}

func (c *classified) Error() string { return c.kind.Error() + ": " + c.err.Error() }

func (c *classified) Unwrap() []error { return []error{c.kind, c.err} }
