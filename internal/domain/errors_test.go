package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOverpaymentErrorMessage(t *testing.T) {
	err := &OverpaymentError{
		BookingID:  7,
		TotalToPay: decimal.NewFromInt(1000),
		Paid:       decimal.NewFromInt(800),
		Pending:    decimal.NewFromInt(200),
		Proposed:   decimal.NewFromInt(250),
	}
	assert.Equal(t,
		"payment of 250.00 exceeds pending amount 200.00 for booking 7 (total to pay 1000.00, already paid 800.00)",
		err.Error())

	var target *OverpaymentError
	assert.True(t, errors.As(fmt.Errorf("register: %w", err), &target))
	assert.Equal(t, int64(7), target.BookingID)
}

func TestInvalidInputErrors(t *testing.T) {
	assert.Equal(t, "invalid input: check_in is required", (&InvalidInputError{Field: "check_in", Reason: "is required"}).Error())
	assert.Equal(t, "invalid input: malformed body", (&InvalidInputError{Reason: "malformed body"}).Error())

	mv := &InvalidMovementError{InvalidInputError{Field: "amount", Reason: "must be greater than zero"}}
	assert.Equal(t, "invalid movement: amount must be greater than zero", mv.Error())

	var invalid *InvalidInputError
	assert.ErrorAs(t, fmt.Errorf("wrap: %w", mv), &invalid)
	assert.Equal(t, "amount", invalid.Field)
}

func TestDataIntegrityErrorMessage(t *testing.T) {
	err := &DataIntegrityError{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), BookingIDs: []int64{3, 9}}
	assert.Equal(t, "day 2024-03-05 is claimed by bookings 3, 9", err.Error())
}
