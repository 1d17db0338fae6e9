package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rentaldesk/internal/config"
	"rentaldesk/internal/database"
	"rentaldesk/internal/domain"
	"rentaldesk/internal/modules/availability"
	"rentaldesk/internal/modules/booking"
	"rentaldesk/internal/modules/expense"
	"rentaldesk/internal/modules/ledger"
	"rentaldesk/internal/pkg/lock"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, database.Options{MaxOpenConns: 1, MaxIdleConns: 1}, log)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}

	log.Info("running AutoMigrate")
	if err := repository.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("AutoMigrate failed")
	}

	// Cleanup old data in foreign key order.
	log.Info("cleaning old data")
	for _, table := range []string{"expense_items", "movements", "bookings", "channels", "tax_types", "properties"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	propertyRepo := repository.NewPropertyRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	taxRepo := repository.NewTaxTypeRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	availabilityService := availability.NewService(bookingRepo, propertyRepo, log)
	ledgerService := ledger.NewService(bookingRepo, movementRepo, lock.Nop{}, log)
	bookingService := booking.NewService(bookingRepo, channelRepo, availabilityService, ledgerService, log)
	expenseService := expense.NewService(movementRepo, taxRepo, log)

	// ================== CATALOG ==================
	properties := []domain.Property{
		{Name: "Casa del Mar", MaxGuests: 6},
		{Name: "Old Town Loft", MaxGuests: 2},
		{Name: "Mountain Cabin", MaxGuests: 0},
	}
	for i := range properties {
		must(log, propertyRepo.Create(ctx, &properties[i]), "create property")
	}

	vat := domain.TaxType{Name: "VAT 21%", Rate: decimal.NewFromInt(21)}
	must(log, taxRepo.Create(ctx, &vat), "create tax type")
	reduced := domain.TaxType{Name: "VAT 10%", Rate: decimal.NewFromInt(10)}
	must(log, taxRepo.Create(ctx, &reduced), "create tax type")

	ota := domain.Channel{
		Name:                     "Booking portal",
		SalesCommissionRate:      decimal.NewFromInt(15),
		CollectionCommissionRate: decimal.RequireFromString("1.5"),
		ApplyTax:                 true,
		TaxTypeID:                &vat.ID,
	}
	must(log, channelRepo.Create(ctx, &ota), "create channel")
	direct := domain.Channel{Name: "Direct", SalesCommissionRate: decimal.Zero, CollectionCommissionRate: decimal.Zero}
	must(log, channelRepo.Create(ctx, &direct), "create channel")
	log.WithField("properties", len(properties)).Info("catalog created")

	// ================== BOOKINGS ==================
	start := time.Now().UTC().Truncate(24 * time.Hour)
	day := func(offset int) string { return start.AddDate(0, 0, offset).Format("2006-01-02") }

	type stay struct {
		property  int
		guest     string
		guests    int
		in, out   int
		kind      domain.BookingType
		channelID *int64
		total     string
	}
	stays := []stay{
		{0, "Lucia Fernandez", 4, 2, 7, domain.BookingTypeCommercial, &ota.ID, "1250.00"},
		{0, "Marco Rossi", 2, 7, 10, domain.BookingTypeCommercial, &direct.ID, "540.00"},
		{0, "", 0, 14, 18, domain.BookingTypeClosedPeriod, nil, "0"},
		{0, "Anna Schmidt", 5, 21, 28, domain.BookingTypeCommercial, &ota.ID, "1890.50"},
		{1, "Tom Baker", 2, 1, 4, domain.BookingTypeCommercial, nil, "320.00"},
		{1, "Sara Lind", 1, 4, 11, domain.BookingTypeCommercial, &ota.ID, "760.00"},
		{2, "Family Novak", 8, 10, 17, domain.BookingTypeCommercial, &direct.ID, "980.00"},
	}

	created := make([]*domain.Booking, 0, len(stays))
	for _, s := range stays {
		b, err := bookingService.CreateBooking(ctx, booking.CreateBookingRequest{
			PropertyID: properties[s.property].ID,
			BookingFields: booking.BookingFields{
				GuestName:   s.guest,
				GuestCount:  s.guests,
				CheckIn:     day(s.in),
				CheckOut:    day(s.out),
				BookingType: s.kind,
				ChannelID:   s.channelID,
				TotalAmount: decimal.RequireFromString(s.total),
			},
		})
		must(log, err, "create booking")
		created = append(created, b)
	}
	log.WithField("bookings", len(created)).Info("bookings created")

	// ================== MOVEMENTS ==================
	// Deposits on the first commercial stays; the last one stays fully unpaid.
	for _, b := range created[:len(created)-1] {
		if b.BookingType != domain.BookingTypeCommercial {
			continue
		}
		deposit := domain.Round2(b.NetAmount.Div(decimal.NewFromInt(2)))
		_, err := ledgerService.RegisterIncome(ctx, ledger.IncomeRequest{
			BookingID:     &b.ID,
			Amount:        deposit,
			MovementDate:  day(-3),
			Concept:       "Deposit " + b.Code,
			PaymentMethod: "transfer",
		})
		must(log, err, "register income")
	}

	cleaner := int64(1)
	res, err := expenseService.CreateExpense(ctx, expense.ExpenseRequest{
		ServiceProviderID: &cleaner,
		BookingID:         &created[0].ID,
		MovementDate:      day(7),
		Concept:           "Turnover after " + created[0].Code,
		PaymentMethod:     "card",
		Items: []expense.ItemRequest{
			{ServiceName: "Cleaning", Amount: decimal.RequireFromString("45.55"), TaxTypeID: &vat.ID},
			{ServiceName: "Laundry", Amount: decimal.RequireFromString("18.00"), TaxTypeID: &reduced.ID},
			{ServiceName: "Amenities", Amount: decimal.RequireFromString("9.90")},
		},
	})
	must(log, err, "create expense")
	log.WithField("expense_total", res.Movement.Amount.StringFixed(2)).Info("movements created")

	log.Info("seed completed")
}

func must(log logrus.FieldLogger, err error, what string) {
	if err != nil {
		log.WithError(err).Fatal(what + " failed")
	}
}
