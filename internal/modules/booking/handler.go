package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentaldesk/internal/pkg/request"
	"rentaldesk/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(read, write *gin.RouterGroup) {
	read.GET("/properties/:id/bookings", h.ListBookings)
	read.GET("/bookings/:id", h.GetBooking)
	read.POST("/settlement/quote", h.QuoteSettlement)

	write.POST("/bookings", h.CreateBooking)
	write.PUT("/bookings/:id", h.UpdateBooking)
	write.POST("/bookings/:id/cancel", h.CancelBooking)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req UpdateBookingRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	b, err := h.service.UpdateBooking(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	details, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": details})
}

// GET /properties/:id/bookings?from=&to=
func (h *Handler) ListBookings(c *gin.Context) {
	propertyID, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	from, err := request.QueryDate(c, "from")
	if err != nil {
		response.FromError(c, err)
		return
	}
	to, err := request.QueryDate(c, "to")
	if err != nil {
		response.FromError(c, err)
		return
	}
	list, err := h.service.ListBookings(c.Request.Context(), propertyID, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) QuoteSettlement(c *gin.Context) {
	var req QuoteRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	q, err := h.service.QuoteSettlement(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

func writeError(c *gin.Context, err error) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		response.ErrorWithDetails(c, http.StatusConflict, "BOOKING_CONFLICT", conflict.Error(), gin.H{
			"conflicts": conflict.Conflicts,
		})
		return
	}
	response.FromError(c, err)
}
