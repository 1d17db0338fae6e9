package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/modules/settlement"
	"rentaldesk/internal/pkg/daterange"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/pkg/tracing"
	"rentaldesk/internal/pkg/validator"
)

const codeAttempts = 3

type Service struct {
	bookings     BookingRepository
	channels     ChannelRepository
	availability AvailabilityChecker
	payments     PaymentInfoReader
	log          logrus.FieldLogger
}

func NewService(
	bookings BookingRepository,
	channels ChannelRepository,
	availability AvailabilityChecker,
	payments PaymentInfoReader,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		bookings:     bookings,
		channels:     channels,
		availability: availability,
		payments:     payments,
		log:          logger.For(log, "booking"),
	}
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (b *domain.Booking, err error) {
	ctx, span := tracing.Start(ctx, "booking.CreateBooking", tracing.Property(req.PropertyID))
	defer tracing.End(span, &err)

	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	st, err := req.parse()
	if err != nil {
		return nil, err
	}

	res, err := s.availability.CheckAvailability(ctx, req.PropertyID, st.checkIn, st.checkOut, req.guests())
	if err != nil {
		return nil, err
	}
	if !res.Available {
		return nil, &ConflictError{Conflicts: res.Conflicts}
	}

	ch, err := s.channel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}

	nb := domain.Booking{
		PropertyID:  req.PropertyID,
		GuestName:   strings.TrimSpace(req.GuestName),
		GuestCount:  req.GuestCount,
		CheckIn:     st.checkIn,
		CheckOut:    st.checkOut,
		BookingType: req.BookingType,
		Status:      statusOrDefault(req.Status),
		TotalAmount: req.TotalAmount,
		Notes:       strings.TrimSpace(req.Notes),
	}
	settlement.ApplyToBooking(&nb, ch)

	for attempt := 1; ; attempt++ {
		nb.Code = newCode(nb.CheckIn)
		err = s.bookings.Create(ctx, &nb)
		if !errors.Is(err, domain.ErrDuplicate) || attempt == codeAttempts {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"funcName":    "CreateBooking",
		"booking_id":  nb.ID,
		"code":        nb.Code,
		"property_id": nb.PropertyID,
		"check_in":    daterange.Format(nb.CheckIn),
		"check_out":   daterange.Format(nb.CheckOut),
	}).Info("booking created")
	return &nb, nil
}

// UpdateBooking replaces the editable fields. Commissions are recomputed only
// when the total or the channel changes, so later rate changes on a channel
// never rewrite settled bookings.
func (s *Service) UpdateBooking(ctx context.Context, id int64, req UpdateBookingRequest) (b *domain.Booking, err error) {
	ctx, span := tracing.Start(ctx, "booking.UpdateBooking", tracing.Booking(id))
	defer tracing.End(span, &err)

	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	st, err := req.parse()
	if err != nil {
		return nil, err
	}
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled() {
		return nil, &domain.InvalidInputError{Field: "booking_status", Reason: "cancelled bookings cannot be edited"}
	}

	res, err := s.availability.CheckAvailabilityExcluding(ctx, current.PropertyID, st.checkIn, st.checkOut, req.guests(), id)
	if err != nil {
		return nil, err
	}
	if !res.Available {
		return nil, &ConflictError{Conflicts: res.Conflicts}
	}

	next := *current
	next.GuestName = strings.TrimSpace(req.GuestName)
	next.GuestCount = req.GuestCount
	next.CheckIn = st.checkIn
	next.CheckOut = st.checkOut
	next.BookingType = req.BookingType
	next.Notes = strings.TrimSpace(req.Notes)
	if req.Status != "" {
		next.Status = req.Status
	}

	total := domain.Round2(req.TotalAmount)
	if !total.Equal(current.TotalAmount) || !sameChannel(current.ChannelID, req.ChannelID) {
		ch, err := s.channel(ctx, req.ChannelID)
		if err != nil {
			return nil, err
		}
		next.TotalAmount = total
		settlement.ApplyToBooking(&next, ch)
	}

	if err := s.bookings.Update(ctx, &next, paidWithinTotal); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"funcName":   "UpdateBooking",
		"booking_id": id,
	}).Info("booking updated")
	return &next, nil
}

// paidWithinTotal rejects an edit whose new total to pay falls below the
// income already recorded against the booking.
func paidWithinTotal(b domain.Booking, paid decimal.Decimal) error {
	total := settlement.TotalToPay(b)
	if paid.GreaterThan(total) {
		return &domain.PaidExceedsTotalError{BookingID: b.ID, TotalToPay: total, Paid: domain.Round2(paid)}
	}
	return nil
}

// CancelBooking frees the booking's nights. Cancelling twice is a no-op.
func (s *Service) CancelBooking(ctx context.Context, id int64) (b *domain.Booking, err error) {
	ctx, span := tracing.Start(ctx, "booking.CancelBooking", tracing.Booking(id))
	defer tracing.End(span, &err)

	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled() {
		return current, nil
	}
	if err := s.bookings.UpdateStatus(ctx, id, domain.BookingCancelled); err != nil {
		return nil, err
	}
	current.Status = domain.BookingCancelled

	s.log.WithFields(logrus.Fields{
		"funcName":   "CancelBooking",
		"booking_id": id,
	}).Info("booking cancelled")
	return current, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*BookingDetails, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := s.payments.GetPaymentInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BookingDetails{Booking: *b, PaymentInfo: *info}, nil
}

// ListBookings returns every booking, cancelled ones included, that overlaps
// [from, to), each with its balance.
func (s *Service) ListBookings(ctx context.Context, propertyID int64, from, to time.Time) (out []BookingDetails, err error) {
	ctx, span := tracing.Start(ctx, "booking.ListBookings", tracing.Property(propertyID))
	defer tracing.End(span, &err)

	window, err := daterange.New(from, to)
	if err != nil {
		return nil, &domain.InvalidInputError{Field: "to", Reason: "must be after from"}
	}
	bookings, err := s.bookings.ListForProperty(ctx, propertyID, window.CheckIn, window.CheckOut)
	if err != nil {
		return nil, err
	}
	infos, err := s.payments.GetPaymentInfoBatch(ctx, bookings)
	if err != nil {
		return nil, err
	}

	out = make([]BookingDetails, 0, len(bookings))
	for i, b := range bookings {
		out = append(out, BookingDetails{Booking: b, PaymentInfo: infos[i]})
	}
	return out, nil
}

// QuoteSettlement previews the settlement of a total through a channel
// without storing anything.
func (s *Service) QuoteSettlement(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if req.TotalAmount.IsNegative() {
		return nil, &domain.InvalidInputError{Field: "total_amount", Reason: "cannot be negative"}
	}
	ch, err := s.channel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}

	total := domain.Round2(req.TotalAmount)
	c := settlement.ComputeCommissions(total, ch)
	toPay := total
	if ch != nil {
		toPay = c.NetAmount
	}
	return &Quote{TotalAmount: total, ChannelID: req.ChannelID, Commissions: c, TotalToPay: toPay}, nil
}

// channel loads the channel with its tax type; nil id means a direct booking.
func (s *Service) channel(ctx context.Context, id *int64) (*domain.Channel, error) {
	if id == nil {
		return nil, nil
	}
	ch, err := s.channels.GetByID(ctx, *id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.InvalidInputError{Field: "channel_id", Reason: fmt.Sprintf("unknown channel %d", *id)}
	}
	return ch, err
}

func statusOrDefault(st domain.BookingStatus) domain.BookingStatus {
	if st == "" {
		return domain.BookingConfirmed
	}
	return st
}

func sameChannel(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// newCode builds a booking code such as BK-20240105-3F9A1C.
func newCode(checkIn time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("BK-%s-%s", checkIn.Format("20060102"), suffix)
}

