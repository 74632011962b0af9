package match

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParam       = errors.New("the param is invalid")
	ErrDuplicateID        = errors.New("an order with this id is already resting")
	ErrInvariantViolation = errors.New("order book invariant violated")
	ErrTimeout            = errors.New("timeout")
	ErrShutdown           = errors.New("order book is shutting down")
	ErrSequenceGap        = errors.New("book log sequence gap")
)

// InvariantError reports a broken internal invariant of the order book.
// It is a defect, never a consequence of well-formed input.
type InvariantError struct {
	Reason string
	Key    OrderKey
}

func newInvariantError(reason string, key OrderKey) *InvariantError {
	return &InvariantError{Reason: reason, Key: key}
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s (id=%d side=%s price=%d timestamp=%d)",
		ErrInvariantViolation, e.Reason, e.Key.ID, e.Key.Side, e.Key.Price, e.Key.Timestamp)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}
