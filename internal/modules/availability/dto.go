package availability

import (
	"time"

	"rentaldesk/internal/domain"
)

type Result struct {
	Available bool       `json:"available"`
	Conflicts []Conflict `json:"conflicts"`
}

func unavailable(c Conflict) *Result {
	return &Result{Available: false, Conflicts: []Conflict{c}}
}

type CalendarProjection struct {
	PropertyID      int64                       `json:"property_id"`
	From            time.Time                   `json:"from"`
	To              time.Time                   `json:"to"`
	Days            []domain.CalendarDay        `json:"days"`
	IntegrityIssues []domain.DataIntegrityError `json:"integrity_issues,omitempty"`
}

type PeriodsResponse struct {
	PropertyID  int64           `json:"property_id"`
	HorizonDays int             `json:"horizon_days"`
	MinNights   int             `json:"min_nights"`
	Periods     []domain.Period `json:"periods"`
}
