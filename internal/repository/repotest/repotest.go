// Package repotest opens throwaway in-memory sqlite databases with the full
// schema and seeds them for service and handler tests.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/repository"
)

var seq atomic.Int64

func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func Day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func Property(t *testing.T, db *gorm.DB, name string, maxGuests int) domain.Property {
	t.Helper()
	p := domain.Property{Name: name, MaxGuests: maxGuests}
	if err := repository.NewPropertyRepository(db).Create(context.Background(), &p); err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return p
}

func TaxType(t *testing.T, db *gorm.DB, name, rate string) domain.TaxType {
	t.Helper()
	tt := domain.TaxType{Name: name, Rate: Dec(rate)}
	if err := repository.NewTaxTypeRepository(db).Create(context.Background(), &tt); err != nil {
		t.Fatalf("seed tax type: %v", err)
	}
	return tt
}

// Channel seeds a channel; it applies tax when taxType is not nil.
func Channel(t *testing.T, db *gorm.DB, name, salesRate, collectionRate string, taxType *domain.TaxType) domain.Channel {
	t.Helper()
	ch := domain.Channel{
		Name:                     name,
		SalesCommissionRate:      Dec(salesRate),
		CollectionCommissionRate: Dec(collectionRate),
	}
	if taxType != nil {
		ch.ApplyTax = true
		ch.TaxTypeID = &taxType.ID
		ch.TaxType = taxType
	}
	if err := repository.NewChannelRepository(db).Create(context.Background(), &ch); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	return ch
}

// Booking seeds b as given, filling code, type, status and a zero-channel
// settlement when they are unset. Stored amounts are not recomputed.
func Booking(t *testing.T, db *gorm.DB, b domain.Booking) domain.Booking {
	t.Helper()
	if b.Code == "" {
		b.Code = fmt.Sprintf("BK-TEST-%06d", seq.Add(1))
	}
	if b.BookingType == "" {
		b.BookingType = domain.BookingTypeCommercial
	}
	if b.Status == "" {
		b.Status = domain.BookingConfirmed
	}
	if b.GuestCount == 0 {
		b.GuestCount = 2
	}
	if b.NetAmount.IsZero() && b.ChannelID == nil {
		b.NetAmount = b.TotalAmount
	}
	if err := repository.NewBookingRepository(db).Create(context.Background(), &b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}
