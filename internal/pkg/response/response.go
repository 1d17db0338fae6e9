package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentaldesk/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError writes the envelope for a service error. Unknown errors become a
// 500 and are attached to the gin context for the request logger.
func FromError(c *gin.Context, err error) {
	var overpay *domain.OverpaymentError
	var invalid *domain.InvalidInputError
	var paidOver *domain.PaidExceedsTotalError

	switch {
	case errors.As(err, &overpay):
		ErrorWithDetails(c, http.StatusConflict, "OVERPAYMENT", overpay.Error(), gin.H{
			"booking_id":      overpay.BookingID,
			"total_to_pay":    overpay.TotalToPay,
			"paid_amount":     overpay.Paid,
			"pending_amount":  overpay.Pending,
			"proposed_amount": overpay.Proposed,
		})
	case errors.As(err, &paidOver):
		ErrorWithDetails(c, http.StatusConflict, "PAID_EXCEEDS_TOTAL", paidOver.Error(), gin.H{
			"booking_id":   paidOver.BookingID,
			"total_to_pay": paidOver.TotalToPay,
			"paid_amount":  paidOver.Paid,
		})
	case errors.As(err, &invalid):
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), gin.H{
			"field":  invalid.Field,
			"reason": invalid.Reason,
		})
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrOverbooking):
		Error(c, http.StatusConflict, "BOOKING_CONFLICT", "Property is not available for the selected dates")
	case errors.Is(err, domain.ErrDuplicate):
		Error(c, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, domain.ErrLockNotObtained):
		Error(c, http.StatusConflict, "BUSY", err.Error())
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
