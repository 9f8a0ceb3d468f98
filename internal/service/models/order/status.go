package order

import (
	"database/sql/driver"
	"errors"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid status")

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the status machine permits moving to next.
// The order of non-terminal states is strictly forward.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusProcessing ||
			next == StatusCompleted || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusProcessing || next == StatusCompleted || next == StatusCancelled
	case StatusProcessing:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}
