// Package request reads path and query parameters, reporting bad values as
// domain.InvalidInputError so handlers can pass them to response.FromError.
package request

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/pkg/daterange"
)

func PathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.InvalidInputError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

func QueryDate(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, &domain.InvalidInputError{Field: name, Reason: "is required"}
	}
	d, err := daterange.ParseDate(raw)
	if err != nil {
		return time.Time{}, &domain.InvalidInputError{Field: name, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return d, nil
}

// QueryInt returns def when the parameter is absent.
func QueryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.InvalidInputError{Field: name, Reason: "must be an integer"}
	}
	return n, nil
}

// QueryOptionalID returns nil when the parameter is absent.
func QueryOptionalID(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, &domain.InvalidInputError{Field: name, Reason: "must be a positive integer"}
	}
	return &id, nil
}

// BindJSON binds the body and maps decode failures to InvalidInputError.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return &domain.InvalidInputError{Reason: "malformed request body: " + err.Error()}
	}
	return nil
}
