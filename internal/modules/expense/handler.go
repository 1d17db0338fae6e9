package expense

import (
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
	read.GET("/movements/expense/:id", h.GetExpense)

	write.POST("/movements/expense", h.CreateExpense)
	write.PUT("/movements/expense/:id", h.UpdateExpense)
}

func (h *Handler) GetExpense(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	m, err := h.service.GetExpense(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"movement": m})
}

func (h *Handler) CreateExpense(c *gin.Context) {
	var req ExpenseRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	res, err := h.service.CreateExpense(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) UpdateExpense(c *gin.Context) {
	id, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req ExpenseRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	res, err := h.service.UpdateExpense(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
