package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"rentaldesk/internal/domain"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
	mysqlDuplicateEntry  = 1062
)

// translate maps driver errors onto domain errors. Unknown errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicate
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return domain.ErrOverbooking
		case pgUniqueViolation:
			return domain.ErrDuplicate
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return domain.ErrDuplicate
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed") {
		return domain.ErrDuplicate
	}
	return err
}
