package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/pkg/daterange"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/pkg/tracing"
)

const (
	DefaultHorizonDays = 90
	MaxHorizonDays     = 730
	MaxCalendarDays    = 731
)

type Service struct {
	bookings    BookingReader
	properties  PropertyReader
	log         logrus.FieldLogger
	now         func() time.Time
	horizonDays int
}

func NewService(bookings BookingReader, properties PropertyReader, log logrus.FieldLogger) *Service {
	return &Service{
		bookings:    bookings,
		properties:  properties,
		log:         logger.For(log, "availability"),
		now:         time.Now,
		horizonDays: DefaultHorizonDays,
	}
}

// WithClock replaces the source of "today" used by FindNextAvailablePeriods.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithDefaultHorizon(days int) *Service {
	if days > 0 {
		s.horizonDays = days
	}
	return s
}

func (s *Service) CheckAvailability(ctx context.Context, propertyID int64, checkIn, checkOut time.Time, guestCount int) (*Result, error) {
	return s.check(ctx, propertyID, checkIn, checkOut, guestCount, 0)
}

// CheckAvailabilityExcluding ignores excludeBookingID, so a booking being
// edited never conflicts with itself.
func (s *Service) CheckAvailabilityExcluding(ctx context.Context, propertyID int64, checkIn, checkOut time.Time, guestCount int, excludeBookingID int64) (*Result, error) {
	return s.check(ctx, propertyID, checkIn, checkOut, guestCount, excludeBookingID)
}

func (s *Service) check(ctx context.Context, propertyID int64, checkIn, checkOut time.Time, guestCount int, excludeID int64) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, "availability.CheckAvailability", tracing.Property(propertyID))
	defer tracing.End(span, &err)

	stay, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return unavailable(Conflict{
			Kind: ConflictInvalidRange,
			Message: fmt.Sprintf("check-out %s must be after check-in %s",
				daterange.Format(checkOut), daterange.Format(checkIn)),
			CheckIn:  daterange.Format(checkIn),
			CheckOut: daterange.Format(checkOut),
		}), nil
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if errors.Is(err, domain.ErrNotFound) {
		return unavailable(Conflict{
			Kind:    ConflictPropertyNotFound,
			Message: fmt.Sprintf("property %d does not exist", propertyID),
		}), nil
	}
	if err != nil {
		return nil, err
	}

	res = &Result{Conflicts: []Conflict{}}
	if c, ok := capacityConflict(property, guestCount); ok {
		res.Conflicts = append(res.Conflicts, c)
	}

	existing, err := s.bookings.ListOverlapping(ctx, propertyID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if b.ID == excludeID || b.IsCancelled() {
			continue
		}
		if !stay.Overlaps(daterange.Range{CheckIn: b.CheckIn, CheckOut: b.CheckOut}) {
			continue
		}
		res.Conflicts = append(res.Conflicts, bookingConflict(b))
	}

	res.Available = len(res.Conflicts) == 0
	return res, nil
}

func capacityConflict(p *domain.Property, guestCount int) (Conflict, bool) {
	if guestCount < 1 {
		return Conflict{Kind: ConflictCapacity, Message: "guest count must be at least 1"}, true
	}
	if p.MaxGuests > 0 && guestCount > p.MaxGuests {
		return Conflict{
			Kind:    ConflictCapacity,
			Message: fmt.Sprintf("%d guests exceed the capacity of %s (%d)", guestCount, p.Name, p.MaxGuests),
		}, true
	}
	return Conflict{}, false
}

// bookingConflict classifies an overlapping booking. Anything that is not a
// commercial stay blocks the dates as a closed period.
func bookingConflict(b domain.Booking) Conflict {
	c := Conflict{
		BookingID:   b.ID,
		BookingCode: b.Code,
		CheckIn:     daterange.Format(b.CheckIn),
		CheckOut:    daterange.Format(b.CheckOut),
	}
	if b.BookingType == domain.BookingTypeCommercial {
		c.Kind = ConflictCommercial
		c.GuestName = b.GuestName
		c.Message = fmt.Sprintf("booked by %s from %s to %s (%s)", b.GuestName, c.CheckIn, c.CheckOut, b.Code)
		return c
	}
	c.Kind = ConflictClosedPeriod
	c.Message = fmt.Sprintf("closed from %s to %s", c.CheckIn, c.CheckOut)
	return c
}

// ProjectCalendar describes every day in [from, to). A day claimed by two or
// more bookings is reported in IntegrityIssues and logged, never resolved.
func (s *Service) ProjectCalendar(ctx context.Context, propertyID int64, from, to time.Time) (proj *CalendarProjection, err error) {
	ctx, span := tracing.Start(ctx, "availability.ProjectCalendar", tracing.Property(propertyID))
	defer tracing.End(span, &err)

	window, err := daterange.New(from, to)
	if err != nil {
		return nil, &domain.InvalidInputError{Field: "to", Reason: "must be after from"}
	}
	if window.Nights() > MaxCalendarDays {
		return nil, &domain.InvalidInputError{Field: "to", Reason: fmt.Sprintf("range must not exceed %d days", MaxCalendarDays)}
	}
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	// Start a day early so a stay ending on the first day still flags its check-out.
	bookings, err := s.bookings.ListOverlapping(ctx, propertyID, daterange.AddDays(window.CheckIn, -1), window.CheckOut)
	if err != nil {
		return nil, err
	}
	bookings = active(bookings)

	proj = &CalendarProjection{
		PropertyID: propertyID,
		From:       window.CheckIn,
		To:         window.CheckOut,
		Days:       make([]domain.CalendarDay, 0, window.Nights()),
	}
	for _, day := range window.Days() {
		cd := projectDay(day, bookings)
		if cd.ConflictOfRecord() {
			issue := domain.DataIntegrityError{Date: day, BookingIDs: cd.ClaimedBy}
			proj.IntegrityIssues = append(proj.IntegrityIssues, issue)
			s.log.WithFields(logrus.Fields{
				"funcName":    "ProjectCalendar",
				"property_id": propertyID,
				"date":        daterange.Format(day),
				"booking_ids": cd.ClaimedBy,
			}).Error(issue.Error())
		}
		proj.Days = append(proj.Days, cd)
	}
	return proj, nil
}

// projectDay builds one calendar day. On a free day that ends a stay the
// booking fields describe the departing booking.
func projectDay(day time.Time, bookings []domain.Booking) domain.CalendarDay {
	cd := domain.CalendarDay{Date: day, IsAvailable: true}

	var claims []domain.Booking
	var departing *domain.Booking
	for i := range bookings {
		b := bookings[i]
		stay := daterange.Range{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
		if stay.Contains(day) {
			claims = append(claims, b)
		}
		if b.CheckOut.Equal(day) {
			cd.IsCheckOut = true
			if departing == nil {
				departing = &bookings[i]
			}
		}
	}

	switch {
	case len(claims) == 0:
		if departing != nil {
			fillBooking(&cd, *departing)
		}
	default:
		cd.IsAvailable = false
		fillBooking(&cd, claims[0])
		cd.IsCheckIn = claims[0].CheckIn.Equal(day)
		if len(claims) > 1 {
			ids := make([]int64, 0, len(claims))
			for _, b := range claims {
				ids = append(ids, b.ID)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			cd.ClaimedBy = ids
		}
	}
	return cd
}

func fillBooking(cd *domain.CalendarDay, b domain.Booking) {
	cd.BookingID = b.ID
	cd.BookingCode = b.Code
	cd.BookingType = b.BookingType
	cd.GuestName = b.GuestName
}

// FindNextAvailablePeriods returns every maximal free run of at least
// minNights nights between today and today+horizonDays, in order.
// Non-positive arguments fall back to the defaults.
func (s *Service) FindNextAvailablePeriods(ctx context.Context, propertyID int64, horizonDays, minNights int) (periods []domain.Period, err error) {
	ctx, span := tracing.Start(ctx, "availability.FindNextAvailablePeriods", tracing.Property(propertyID))
	defer tracing.End(span, &err)

	if horizonDays <= 0 {
		horizonDays = s.horizonDays
	}
	if horizonDays > MaxHorizonDays {
		return nil, &domain.InvalidInputError{Field: "horizon_days", Reason: fmt.Sprintf("must not exceed %d", MaxHorizonDays)}
	}
	if minNights <= 0 {
		minNights = 1
	}
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	today := daterange.Day(s.now())
	end := daterange.AddDays(today, horizonDays)
	bookings, err := s.bookings.ListOverlapping(ctx, propertyID, today, end)
	if err != nil {
		return nil, err
	}

	occupied := make([]bool, horizonDays)
	for _, b := range active(bookings) {
		first := max(daterange.DaysBetween(today, b.CheckIn), 0)
		last := min(daterange.DaysBetween(today, b.CheckOut), horizonDays)
		for i := first; i < last; i++ {
			occupied[i] = true
		}
	}

	periods = []domain.Period{}
	runStart := -1
	for i := 0; i <= horizonDays; i++ {
		if i < horizonDays && !occupied[i] {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 && i-runStart >= minNights {
			periods = append(periods, domain.Period{
				Start:  daterange.AddDays(today, runStart),
				End:    daterange.AddDays(today, i),
				Nights: i - runStart,
			})
		}
		runStart = -1
	}
	return periods, nil
}

func active(bookings []domain.Booking) []domain.Booking {
	out := bookings[:0:0]
	for _, b := range bookings {
		if !b.IsCancelled() {
			out = append(out, b)
		}
	}
	return out
}
