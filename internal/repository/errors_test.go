package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"rentaldesk/internal/domain"
)

func TestTranslate(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), domain.ErrNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, domain.ErrDuplicate},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, domain.ErrDuplicate},
		{"postgres exclusion", &pgconn.PgError{Code: "23P01"}, domain.ErrOverbooking},
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, domain.ErrDuplicate},
		{"sqlite unique", errors.New("UNIQUE constraint failed: bookings.code"), domain.ErrDuplicate},
		{"unknown", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestTranslate_OtherPostgresCodesPassThrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	got := translate(pgErr)
	assert.Same(t, pgErr, got)
}
