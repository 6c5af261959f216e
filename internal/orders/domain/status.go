package domain

import (
	"errors"
	"fmt"
)

// Status captures where an order sits in the kitchen lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusPreparing,
	StatusReady,
	StatusCompleted,
	StatusRejected,
}

var (
	// ErrUnknownStatus is returned when a value is not one of the known statuses.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrInvalidTransition is returned when a status change is not allowed by the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)

var successors = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusRejected},
	StatusPreparing: {StatusReady, StatusRejected},
	StatusReady:     {StatusCompleted, StatusRejected},
	StatusCompleted: {},
	StatusRejected:  {},
}

// ParseStatus converts raw input into a Status, rejecting unknown values.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
	}
	return s, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := successors[s]
	return ok
}

// IsTerminal indicates that no further transitions leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Next returns the statuses reachable from s in one step.
func (s Status) Next() []Status {
	next := successors[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func (s Status) String() string {
	return string(s)
}

// UnmarshalText keeps unknown statuses out of decoded payloads.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range successors[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// CheckTransition returns a *TransitionError when from → to is not allowed.
func CheckTransition(orderID string, from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(to))
	}
	if !CanTransition(from, to) {
		return &TransitionError{OrderID: orderID, From: from, To: to}
	}
	return nil
}
