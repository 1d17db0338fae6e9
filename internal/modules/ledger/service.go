package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/modules/settlement"
	"rentaldesk/internal/pkg/lock"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/pkg/tracing"
	"rentaldesk/internal/pkg/validator"
)

type Service struct {
	bookings  BookingReader
	movements MovementStore
	locker    lock.Locker
	log       logrus.FieldLogger
}

// NewService wires the ledger. A nil locker disables cross-instance locking;
// the repository transaction still enforces the balance.
func NewService(bookings BookingReader, movements MovementStore, locker lock.Locker, log logrus.FieldLogger) *Service {
	if locker == nil {
		locker = lock.Nop{}
	}
	return &Service{
		bookings:  bookings,
		movements: movements,
		locker:    locker,
		log:       logger.For(log, "ledger"),
	}
}

// GetPaymentInfo recomputes the balance from the live income movements.
func (s *Service) GetPaymentInfo(ctx context.Context, bookingID int64) (info *domain.BookingPaymentInfo, err error) {
	ctx, span := tracing.Start(ctx, "ledger.GetPaymentInfo", tracing.Booking(bookingID))
	defer tracing.End(span, &err)

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	income, err := s.movements.ListIncomeByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	out := paymentInfo(*b, settlement.SumIncome(income, 0))
	return &out, nil
}

// GetPaymentInfoBatch returns, in input order, what GetPaymentInfo would
// return for each booking, reading all income movements in one query.
func (s *Service) GetPaymentInfoBatch(ctx context.Context, bookings []domain.Booking) (infos []domain.BookingPaymentInfo, err error) {
	ctx, span := tracing.Start(ctx, "ledger.GetPaymentInfoBatch")
	defer tracing.End(span, &err)

	if len(bookings) == 0 {
		return []domain.BookingPaymentInfo{}, nil
	}
	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	income, err := s.movements.ListIncomeByBookings(ctx, ids)
	if err != nil {
		return nil, err
	}

	byBooking := make(map[int64][]domain.Movement, len(bookings))
	for _, m := range income {
		if m.BookingID != nil {
			byBooking[*m.BookingID] = append(byBooking[*m.BookingID], m)
		}
	}
	infos = make([]domain.BookingPaymentInfo, 0, len(bookings))
	for _, b := range bookings {
		infos = append(infos, paymentInfo(b, settlement.SumIncome(byBooking[b.ID], 0)))
	}
	return infos, nil
}

// GetPaymentInfoForIDs loads the bookings and delegates to GetPaymentInfoBatch.
// Unknown ids fail the whole call with domain.ErrNotFound.
func (s *Service) GetPaymentInfoForIDs(ctx context.Context, ids []int64) ([]domain.BookingPaymentInfo, error) {
	bookings, err := s.bookings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]domain.Booking, len(bookings))
	for _, b := range bookings {
		found[b.ID] = b
	}
	ordered := make([]domain.Booking, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		b, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, b)
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, fmt.Errorf("bookings %v: %w", missing, domain.ErrNotFound)
	}
	return s.GetPaymentInfoBatch(ctx, ordered)
}

// ValidateIncomePayment checks amount against the pending balance as if the
// movement excludingMovementID did not exist.
func (s *Service) ValidateIncomePayment(ctx context.Context, bookingID int64, amount decimal.Decimal, excludingMovementID *int64) (err error) {
	ctx, span := tracing.Start(ctx, "ledger.ValidateIncomePayment", tracing.Booking(bookingID))
	defer tracing.End(span, &err)

	if !amount.IsPositive() {
		return &domain.InvalidInputError{Field: "amount", Reason: "must be greater than zero"}
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	income, err := s.movements.ListIncomeByBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	var excluding int64
	if excludingMovementID != nil {
		excluding = *excludingMovementID
	}
	return checkBalance(*b, settlement.SumIncome(income, excluding), amount)
}

func (s *Service) RegisterIncome(ctx context.Context, req IncomeRequest) (m *domain.Movement, err error) {
	ctx, span := tracing.Start(ctx, "ledger.RegisterIncome")
	defer tracing.End(span, &err)

	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	mv, err := req.toMovement()
	if err != nil {
		return nil, err
	}
	bookingID := *mv.BookingID

	release, err := s.locker.Obtain(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ValidateIncomePayment(ctx, bookingID, mv.Amount, nil); err != nil {
		return nil, err
	}
	var pendingAfter decimal.Decimal
	if err := s.movements.CreateIncome(ctx, &mv, balanceGuard(mv.Amount, &pendingAfter)); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"funcName":      "RegisterIncome",
		"booking_id":    bookingID,
		"movement_id":   mv.ID,
		"amount":        mv.Amount.StringFixed(2),
		"pending_after": pendingAfter.StringFixed(2),
	}).Info("income registered")
	return &mv, nil
}

// UpdateIncome rewrites an income movement. A movement moved to another
// booking is checked against the new booking only.
func (s *Service) UpdateIncome(ctx context.Context, id int64, req IncomeRequest) (m *domain.Movement, err error) {
	ctx, span := tracing.Start(ctx, "ledger.UpdateIncome", tracing.Movement(id))
	defer tracing.End(span, &err)

	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.MovementType != domain.MovementIncome {
		return nil, &domain.InvalidMovementError{InvalidInputError: domain.InvalidInputError{
			Field: "movement_type", Reason: "movement is not an income",
		}}
	}
	mv, err := req.toMovement()
	if err != nil {
		return nil, err
	}
	mv.ID = id
	bookingID := *mv.BookingID

	release, err := s.locker.Obtain(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ValidateIncomePayment(ctx, bookingID, mv.Amount, &id); err != nil {
		return nil, err
	}
	var pendingAfter decimal.Decimal
	if err := s.movements.UpdateIncome(ctx, &mv, balanceGuard(mv.Amount, &pendingAfter)); err != nil {
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"funcName":      "UpdateIncome",
		"booking_id":    bookingID,
		"movement_id":   id,
		"amount":        mv.Amount.StringFixed(2),
		"pending_after": pendingAfter.StringFixed(2),
	})
	if current.BookingID != nil && *current.BookingID != bookingID {
		entry = entry.WithField("previous_booking_id", *current.BookingID)
	}
	entry.Info("income updated")
	return &mv, nil
}

// DeleteMovement removes an income or expense movement. Removing income only
// lowers the paid amount, so no balance check is needed.
func (s *Service) DeleteMovement(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.Start(ctx, "ledger.DeleteMovement", tracing.Movement(id))
	defer tracing.End(span, &err)

	current, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.movements.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"funcName":      "DeleteMovement",
		"movement_id":   id,
		"movement_type": current.MovementType,
	}).Info("movement deleted")
	return nil
}

func paymentInfo(b domain.Booking, paid decimal.Decimal) domain.BookingPaymentInfo {
	info := settlement.PaymentInfo(settlement.TotalToPay(b), paid)
	info.BookingID = b.ID
	return info
}

func checkBalance(b domain.Booking, paidExcluding, proposed decimal.Decimal) error {
	info := paymentInfo(b, paidExcluding)
	amount := domain.Round2(proposed)
	if amount.GreaterThan(info.PendingAmount) {
		return &domain.OverpaymentError{
			BookingID:  b.ID,
			TotalToPay: info.TotalToPay,
			Paid:       info.PaidAmount,
			Pending:    info.PendingAmount,
			Proposed:   amount,
		}
	}
	return nil
}

// balanceGuard re-applies checkBalance inside the write transaction and
// stores the balance left once amount is recorded.
func balanceGuard(amount decimal.Decimal, pendingAfter *decimal.Decimal) domain.BalanceGuard {
	return func(b domain.Booking, paidExcluding decimal.Decimal) error {
		if err := checkBalance(b, paidExcluding, amount); err != nil {
			return err
		}
		*pendingAfter = paymentInfo(b, paidExcluding.Add(domain.Round2(amount))).PendingAmount
		return nil
	}
}
