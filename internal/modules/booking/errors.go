package booking

import (
	"fmt"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/modules/availability"
)

// ConflictError rejects a write whose dates are not available. It matches
// domain.ErrOverbooking with errors.Is.
type ConflictError struct {
	Conflicts []availability.Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		return "dates not available: " + e.Conflicts[0].Message
	}
	return fmt.Sprintf("dates not available: %d conflicts", len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return domain.ErrOverbooking
}
