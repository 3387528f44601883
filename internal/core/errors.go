package core

import (
	"errors"
	"fmt"
)

// ErrEmptyContent is returned when an analysis request carries no email content.
var ErrEmptyContent = errors.New("email content is required")

// PersistenceError wraps a result store failure. Scoring succeeded but the
// result could not be durably recorded, so the request must fail.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save analysis result: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
