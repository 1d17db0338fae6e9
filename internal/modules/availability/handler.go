package availability

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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	props := rg.Group("/properties/:id")
	{
		props.GET("/availability", h.CheckAvailability)
		props.GET("/calendar", h.ProjectCalendar)
		props.GET("/available-periods", h.FindNextAvailablePeriods)
	}
}

// GET /properties/:id/availability?check_in=&check_out=&guests=&exclude_booking_id=
func (h *Handler) CheckAvailability(c *gin.Context) {
	propertyID, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	checkIn, err := request.QueryDate(c, "check_in")
	if err != nil {
		response.FromError(c, err)
		return
	}
	checkOut, err := request.QueryDate(c, "check_out")
	if err != nil {
		response.FromError(c, err)
		return
	}
	guests, err := request.QueryInt(c, "guests", 1)
	if err != nil {
		response.FromError(c, err)
		return
	}
	exclude, err := request.QueryOptionalID(c, "exclude_booking_id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var res *Result
	if exclude != nil {
		res, err = h.service.CheckAvailabilityExcluding(c.Request.Context(), propertyID, checkIn, checkOut, guests, *exclude)
	} else {
		res, err = h.service.CheckAvailability(c.Request.Context(), propertyID, checkIn, checkOut, guests)
	}
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// GET /properties/:id/calendar?from=&to=
func (h *Handler) ProjectCalendar(c *gin.Context) {
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

	proj, err := h.service.ProjectCalendar(c.Request.Context(), propertyID, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, proj)
}

// GET /properties/:id/available-periods?horizon_days=&min_nights=
func (h *Handler) FindNextAvailablePeriods(c *gin.Context) {
	propertyID, err := request.PathID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	horizon, err := request.QueryInt(c, "horizon_days", 0)
	if err != nil {
		response.FromError(c, err)
		return
	}
	minNights, err := request.QueryInt(c, "min_nights", 1)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if horizon <= 0 {
		horizon = h.service.horizonDays
	}
	if minNights <= 0 {
		minNights = 1
	}

	periods, err := h.service.FindNextAvailablePeriods(c.Request.Context(), propertyID, horizon, minNights)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, PeriodsResponse{
		PropertyID:  propertyID,
		HorizonDays: horizon,
		MinNights:   minNights,
		Periods:     periods,
	})
}
