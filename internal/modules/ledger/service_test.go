package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/repository"
	"rentaldesk/internal/repository/repotest"
)

var (
	_ BookingReader = (*repository.BookingRepository)(nil)
	_ MovementStore = (*repository.MovementRepository)(nil)
)

// setupLedger seeds a booking with totalToPay 1000 and 800 already paid.
func setupLedger(t *testing.T) (*Service, domain.Booking, *repository.MovementRepository, *gorm.DB) {
	t.Helper()
	db := repotest.Open(t)
	p := repotest.Property(t, db, "Casa Mar", 4)
	b := repotest.Booking(t, db, domain.Booking{
		PropertyID:  p.ID,
		GuestName:   "Ana",
		CheckIn:     repotest.Day("2024-01-01"),
		CheckOut:    repotest.Day("2024-01-05"),
		TotalAmount: repotest.Dec("1000"),
	})

	movements := repository.NewMovementRepository(db)
	svc := NewService(repository.NewBookingRepository(db), movements, nil, logger.Discard())

	_, err := svc.RegisterIncome(context.Background(), income(b.ID, "800"))
	require.NoError(t, err)
	return svc, b, movements, db
}

func income(bookingID int64, amount string) IncomeRequest {
	id := bookingID
	return IncomeRequest{
		BookingID:     &id,
		Amount:        repotest.Dec(amount),
		MovementDate:  "2024-01-02",
		PaymentMethod: "transfer",
	}
}

func assertInfo(t *testing.T, want, got domain.BookingPaymentInfo) {
	t.Helper()
	assert.Equal(t, want.BookingID, got.BookingID)
	assertMoney(t, want.TotalToPay.StringFixed(2), got.TotalToPay)
	assertMoney(t, want.PaidAmount.StringFixed(2), got.PaidAmount)
	assertMoney(t, want.PendingAmount.StringFixed(2), got.PendingAmount)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func TestRegisterIncome_RejectsOverpayment(t *testing.T) {
	svc, b, _, _ := setupLedger(t)

	_, err := svc.RegisterIncome(context.Background(), income(b.ID, "250"))
	var overpay *domain.OverpaymentError
	require.ErrorAs(t, err, &overpay)
	assertMoney(t, "200.00", overpay.Pending)
	assertMoney(t, "800.00", overpay.Paid)
	assertMoney(t, "1000.00", overpay.TotalToPay)
	assert.Contains(t, err.Error(), "200.00")

	info, err := svc.GetPaymentInfo(context.Background(), b.ID)
	require.NoError(t, err)
	assertMoney(t, "800.00", info.PaidAmount)
}

func TestRegisterIncome_ExactPendingSucceeds(t *testing.T) {
	svc, b, _, _ := setupLedger(t)

	_, err := svc.RegisterIncome(context.Background(), income(b.ID, "200"))
	require.NoError(t, err)

	info, err := svc.GetPaymentInfo(context.Background(), b.ID)
	require.NoError(t, err)
	assertMoney(t, "1000.00", info.PaidAmount)
	assertMoney(t, "0.00", info.PendingAmount)
}

func TestRegisterIncome_LeavesOneCent(t *testing.T) {
	svc, b, _, _ := setupLedger(t)

	_, err := svc.RegisterIncome(context.Background(), income(b.ID, "199.99"))
	require.NoError(t, err)

	info, err := svc.GetPaymentInfo(context.Background(), b.ID)
	require.NoError(t, err)
	assertMoney(t, "0.01", info.PendingAmount)
}

func TestGetPaymentInfo_Idempotent(t *testing.T) {
	svc, b, _, _ := setupLedger(t)

	first, err := svc.GetPaymentInfo(context.Background(), b.ID)
	require.NoError(t, err)
	second, err := svc.GetPaymentInfo(context.Background(), b.ID)
	require.NoError(t, err)
	assertInfo(t, *first, *second)
}

func TestGetPaymentInfo_ChannelUsesNet(t *testing.T) {
	db := repotest.Open(t)
	p := repotest.Property(t, db, "Casa Sol", 2)
	ch := repotest.Channel(t, db, "OTA", "10", "2", nil)
	b := repotest.Booking(t, db, domain.Booking{
		PropertyID:  p.ID,
		CheckIn:     repotest.Day("2024-02-01"),
		CheckOut:    repotest.Day("2024-02-03"),
		ChannelID:   &ch.ID,
		TotalAmount: repotest.Dec("1000"),
		NetAmount:   repotest.Dec("880"),
	})
	svc := NewService(repository.NewBookingRepository(db), repository.NewMovementRepository(db), nil, logger.Discard())

	info, err := svc.GetPaymentInfo(context.Background(), b.ID)
	require.NoError(t, err)
	assertMoney(t, "880.00", info.TotalToPay)
	assertMoney(t, "880.00", info.PendingAmount)

	err = svc.ValidateIncomePayment(context.Background(), b.ID, repotest.Dec("880.01"), nil)
	var overpay *domain.OverpaymentError
	assert.ErrorAs(t, err, &overpay)
}

func TestValidateIncomePayment_ExcludesEditedMovement(t *testing.T) {
	svc, b, movements, _ := setupLedger(t)
	existing, err := movements.ListIncomeByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, existing, 1)
	editedID := existing[0].ID

	// Without exclusion only 200 is pending; excluding the 800 frees it all.
	err = svc.ValidateIncomePayment(context.Background(), b.ID, repotest.Dec("900"), nil)
	assert.Error(t, err)
	err = svc.ValidateIncomePayment(context.Background(), b.ID, repotest.Dec("900"), &editedID)
	assert.NoError(t, err)

	err = svc.ValidateIncomePayment(context.Background(), b.ID, decimal.Zero, nil)
	var invalid *domain.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestUpdateIncome(t *testing.T) {
	svc, b, movements, _ := setupLedger(t)
	existing, err := movements.ListIncomeByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	id := existing[0].ID

	updated, err := svc.UpdateIncome(context.Background(), id, income(b.ID, "1000"))
	require.NoError(t, err)
	assertMoney(t, "1000.00", updated.Amount)

	_, err = svc.UpdateIncome(context.Background(), id, income(b.ID, "1000.01"))
	var overpay *domain.OverpaymentError
	require.ErrorAs(t, err, &overpay)
	assertMoney(t, "1000.00", overpay.Pending)

	info, err := svc.GetPaymentInfo(context.Background(), b.ID)
	require.NoError(t, err)
	assertMoney(t, "1000.00", info.PaidAmount)
}

func TestUpdateIncome_MoveChecksNewBookingOnly(t *testing.T) {
	svc, b, _, db := setupLedger(t)
	ctx := context.Background()
	next := repotest.Booking(t, db, domain.Booking{
		PropertyID:  b.PropertyID,
		GuestName:   "Luis",
		CheckIn:     repotest.Day("2024-01-05"),
		CheckOut:    repotest.Day("2024-01-07"),
		TotalAmount: repotest.Dec("100"),
	})

	moving, err := svc.RegisterIncome(ctx, income(b.ID, "150"))
	require.NoError(t, err)

	// The old booking would accept 150 again; the new one only owes 100.
	_, err = svc.UpdateIncome(ctx, moving.ID, income(next.ID, "150"))
	var overpay *domain.OverpaymentError
	require.ErrorAs(t, err, &overpay)
	assert.Equal(t, next.ID, overpay.BookingID)
	assertMoney(t, "100.00", overpay.Pending)

	_, err = svc.UpdateIncome(ctx, moving.ID, income(next.ID, "100"))
	require.NoError(t, err)

	oldInfo, err := svc.GetPaymentInfo(ctx, b.ID)
	require.NoError(t, err)
	assertMoney(t, "800.00", oldInfo.PaidAmount)
	newInfo, err := svc.GetPaymentInfo(ctx, next.ID)
	require.NoError(t, err)
	assertMoney(t, "0.00", newInfo.PendingAmount)

	_, err = svc.UpdateIncome(ctx, moving.ID, income(next.ID+1000, "10"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterIncome_ShapeRules(t *testing.T) {
	svc, b, _, _ := setupLedger(t)

	noBooking := income(b.ID, "10")
	noBooking.BookingID = nil
	_, err := svc.RegisterIncome(context.Background(), noBooking)
	var invalidMovement *domain.InvalidMovementError
	assert.ErrorAs(t, err, &invalidMovement)

	withProvider := income(b.ID, "10")
	provider := int64(3)
	withProvider.ServiceProviderID = &provider
	_, err = svc.RegisterIncome(context.Background(), withProvider)
	assert.ErrorAs(t, err, &invalidMovement)

	badDate := income(b.ID, "10")
	badDate.MovementDate = "02/01/2024"
	_, err = svc.RegisterIncome(context.Background(), badDate)
	var invalid *domain.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestGetPaymentInfoBatch_MatchesSingle(t *testing.T) {
	db := repotest.Open(t)
	p := repotest.Property(t, db, "Casa Mar", 4)
	ch := repotest.Channel(t, db, "OTA", "10", "2", nil)
	bookings := repository.NewBookingRepository(db)
	svc := NewService(bookings, repository.NewMovementRepository(db), nil, logger.Discard())

	seeded := []domain.Booking{
		repotest.Booking(t, db, domain.Booking{PropertyID: p.ID, CheckIn: repotest.Day("2024-01-01"), CheckOut: repotest.Day("2024-01-03"), TotalAmount: repotest.Dec("500")}),
		repotest.Booking(t, db, domain.Booking{PropertyID: p.ID, CheckIn: repotest.Day("2024-01-03"), CheckOut: repotest.Day("2024-01-06"), TotalAmount: repotest.Dec("1000"), ChannelID: &ch.ID, NetAmount: repotest.Dec("880")}),
		repotest.Booking(t, db, domain.Booking{PropertyID: p.ID, CheckIn: repotest.Day("2024-01-06"), CheckOut: repotest.Day("2024-01-07"), TotalAmount: repotest.Dec("90")}),
	}
	ctx := context.Background()
	for _, pay := range []struct {
		idx    int
		amount string
	}{{0, "100"}, {0, "50.50"}, {1, "880"}, {2, "0.01"}} {
		_, err := svc.RegisterIncome(ctx, income(seeded[pay.idx].ID, pay.amount))
		require.NoError(t, err)
	}

	ids := []int64{seeded[2].ID, seeded[0].ID, seeded[1].ID}
	batch, err := svc.GetPaymentInfoForIDs(ctx, ids)
	require.NoError(t, err)
	require.Len(t, batch, len(ids))
	for i, id := range ids {
		single, err := svc.GetPaymentInfo(ctx, id)
		require.NoError(t, err)
		assertInfo(t, *single, batch[i])
	}

	_, err = svc.GetPaymentInfoForIDs(ctx, []int64{seeded[0].ID, 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty, err := svc.GetPaymentInfoBatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteMovement(t *testing.T) {
	svc, b, movements, _ := setupLedger(t)
	existing, err := movements.ListIncomeByBooking(context.Background(), b.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMovement(context.Background(), existing[0].ID))

	info, err := svc.GetPaymentInfo(context.Background(), b.ID)
	require.NoError(t, err)
	assertMoney(t, "1000.00", info.PendingAmount)

	assert.ErrorIs(t, svc.DeleteMovement(context.Background(), existing[0].ID), domain.ErrNotFound)
}
