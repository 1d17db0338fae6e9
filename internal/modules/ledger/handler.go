package ledger

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentaldesk/internal/pkg/request"
	"rentaldesk/internal/pkg/response"
	"rentaldesk/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts read-only routes on read and mutating ones on write.
func (h *Handler) RegisterRoutes(read, write *gin.RouterGroup) {
	read.GET("/bookings/:id/payment-info", h.GetPaymentInfo)
	read.POST("/bookings/payment-info", h.GetPaymentInfoBatch)
	read.POST("/bookings/:id/payments/validate", h.ValidateIncomePayment)

	write.POST("/movements/income", h.RegisterIncome)
	write.PUT("/movements/income/:id", h.UpdateIncome)
	write.DELETE("/movements/:id", h.DeleteMovement)
}

func (h *Handler) GetPaymentInfo(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	info, err := h.service.GetPaymentInfo(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}

func (h *Handler) GetPaymentInfoBatch(c *gin.Context) {
	var req BatchRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	if err := validator.Struct(req); err != nil {
		response.FromError(c, err)
		return
	}
	infos, err := h.service.GetPaymentInfoForIDs(c.Request.Context(), req.BookingIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment_info": infos})
}

func (h *Handler) ValidateIncomePayment(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req ValidatePaymentRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.service.ValidateIncomePayment(ctx, id, req.Amount, req.ExcludingMovementID); err != nil {
		response.FromError(c, err)
		return
	}
	info, err := h.service.GetPaymentInfo(ctx, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"valid": true, "payment_info": info})
}

func (h *Handler) RegisterIncome(c *gin.Context) {
	var req IncomeRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	m, err := h.service.RegisterIncome(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"movement": m})
}

func (h *Handler) UpdateIncome(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req IncomeRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	m, err := h.service.UpdateIncome(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"movement": m})
}

func (h *Handler) DeleteMovement(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.DeleteMovement(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
