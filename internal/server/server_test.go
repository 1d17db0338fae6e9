package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaldesk/internal/middleware"
	"rentaldesk/internal/pkg/jwt"
	"rentaldesk/internal/pkg/lock"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/repository/repotest"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (a apiClient) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func setupAPI(t *testing.T) (manager, viewer apiClient, propertyID, channelID int64) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := repotest.Open(t)
	p := repotest.Property(t, db, "Casa Mar", 4)
	vat := repotest.TaxType(t, db, "VAT", "21")
	ch := repotest.Channel(t, db, "OTA", "10", "2", &vat)

	tokens := jwt.New("server-test-secret", time.Hour)
	router := NewRouter(Deps{
		DB:          db,
		Tokens:      tokens,
		Locker:      lock.Nop{},
		Log:         logger.Discard(),
		CORSOrigins: []string{"http://localhost:5173"},
		HorizonDays: 30,
		Clock:       func() time.Time { return repotest.Day("2024-03-01") },
	})

	managerToken, err := tokens.Issue(1, middleware.RoleManager)
	require.NoError(t, err)
	viewerToken, err := tokens.Issue(2, middleware.RoleViewer)
	require.NoError(t, err)
	return apiClient{t, router, managerToken}, apiClient{t, router, viewerToken}, p.ID, ch.ID
}

func TestHealthIsPublic(t *testing.T) {
	manager, _, _, _ := setupAPI(t)
	anon := apiClient{t: t, router: manager.router}

	rr, _ := anon.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env := anon.do(http.MethodGet, "/api/v1/bookings/1", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "AUTH_HEADER_MISSING", env.Error.Code)
}

func TestBookingAndPaymentFlow(t *testing.T) {
	manager, viewer, propertyID, channelID := setupAPI(t)

	rr, env := manager.do(http.MethodPost, "/api/v1/bookings", map[string]any{
		"property_id":  propertyID,
		"guest_name":   "Ana",
		"guest_count":  2,
		"check_in":     "2024-03-10",
		"check_out":    "2024-03-14",
		"booking_type": "commercial",
		"channel_id":   channelID,
		"total_amount": 1000,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		Booking struct {
			ID        int64   `json:"id"`
			Code      string  `json:"code"`
			NetAmount float64 `json:"net_amount"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 854.80, created.Booking.NetAmount)
	bookingPath := fmt.Sprintf("/api/v1/bookings/%d", created.Booking.ID)

	// Viewers can read but not write.
	rr, _ = viewer.do(http.MethodGet, bookingPath, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr, _ = viewer.do(http.MethodPost, bookingPath+"/cancel", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Same-day turnover is available; one night earlier is not.
	rr, env = manager.do(http.MethodGet, fmt.Sprintf("/api/v1/properties/%d/availability?check_in=2024-03-14&check_out=2024-03-16&guests=2", propertyID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), `"available":true`)
	rr, env = manager.do(http.MethodGet, fmt.Sprintf("/api/v1/properties/%d/availability?check_in=2024-03-13&check_out=2024-03-16", propertyID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), `"available":false`)
	assert.Contains(t, string(env.Data), `"kind":"commercial"`)

	rr, env = manager.do(http.MethodGet, fmt.Sprintf("/api/v1/properties/%d/availability?check_in=13-03-2024&check_out=2024-03-16", propertyID), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	// Overlapping create is a conflict with details.
	rr, env = manager.do(http.MethodPost, "/api/v1/bookings", map[string]any{
		"property_id": propertyID, "guest_name": "Luis", "check_in": "2024-03-12", "check_out": "2024-03-15",
		"booking_type": "commercial", "total_amount": 300, "guest_count": 1,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "BOOKING_CONFLICT", env.Error.Code)
	assert.Contains(t, env.Error.Details, "conflicts")

	// Payments: 800 then 100 is over the 854.80 owed.
	rr, _ = manager.do(http.MethodPost, "/api/v1/movements/income", map[string]any{
		"booking_id": created.Booking.ID, "amount": 800, "movement_date": "2024-03-01", "payment_method": "transfer",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, env = manager.do(http.MethodPost, "/api/v1/movements/income", map[string]any{
		"booking_id": created.Booking.ID, "amount": 100, "movement_date": "2024-03-02",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "OVERPAYMENT", env.Error.Code)
	assert.Equal(t, 54.8, env.Error.Details["pending_amount"])

	rr, env = manager.do(http.MethodPost, bookingPath+"/payments/validate", map[string]any{"amount": 54.80})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), `"valid":true`)

	rr, env = manager.do(http.MethodGet, bookingPath+"/payment-info", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"booking_id":%d,"total_to_pay":854.8,"paid_amount":800,"pending_amount":54.8}`, created.Booking.ID), string(env.Data))

	rr, env = manager.do(http.MethodPost, "/api/v1/bookings/payment-info", map[string]any{"booking_ids": []int64{created.Booking.ID}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), `"pending_amount":54.8`)

	// Income without a booking is rejected before persistence.
	rr, env = manager.do(http.MethodPost, "/api/v1/movements/income", map[string]any{"amount": 10, "movement_date": "2024-03-02"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "booking_id", env.Error.Details["field"])

	// The total cannot be edited below what was already paid.
	rr, env = manager.do(http.MethodPut, bookingPath, map[string]any{
		"guest_name": "Ana", "guest_count": 2, "check_in": "2024-03-10", "check_out": "2024-03-14",
		"booking_type": "commercial", "total_amount": 500,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PAID_EXCEEDS_TOTAL", env.Error.Code)
	assert.Equal(t, 800.0, env.Error.Details["paid_amount"])
	assert.Equal(t, 500.0, env.Error.Details["total_to_pay"])
}

func TestCalendarPeriodsAndExport(t *testing.T) {
	manager, _, propertyID, _ := setupAPI(t)

	for _, stay := range [][2]string{{"2024-03-01", "2024-03-10"}, {"2024-03-14", "2024-03-20"}, {"2024-03-25", "2024-04-05"}} {
		rr, _ := manager.do(http.MethodPost, "/api/v1/bookings", map[string]any{
			"property_id": propertyID, "guest_name": "Guest", "guest_count": 2,
			"check_in": stay[0], "check_out": stay[1], "booking_type": "commercial", "total_amount": 500,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr, env := manager.do(http.MethodGet, fmt.Sprintf("/api/v1/properties/%d/available-periods?min_nights=3", propertyID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var periods struct {
		HorizonDays int `json:"horizon_days"`
		Periods     []struct {
			Nights int `json:"nights"`
		} `json:"periods"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &periods))
	assert.Equal(t, 30, periods.HorizonDays)
	require.Len(t, periods.Periods, 2)
	assert.Equal(t, 4, periods.Periods[0].Nights)
	assert.Equal(t, 5, periods.Periods[1].Nights)

	rr, env = manager.do(http.MethodGet, fmt.Sprintf("/api/v1/properties/%d/calendar?from=2024-03-09&to=2024-03-11", propertyID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var cal struct {
		Days []struct {
			IsAvailable bool `json:"is_available"`
			IsCheckOut  bool `json:"is_check_out"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cal))
	require.Len(t, cal.Days, 2)
	assert.False(t, cal.Days[0].IsAvailable)
	assert.True(t, cal.Days[1].IsAvailable)
	assert.True(t, cal.Days[1].IsCheckOut)

	rr, _ = manager.do(http.MethodGet, fmt.Sprintf("/api/v1/properties/%d/balances/export?from=2024-03-01&to=2024-04-01", propertyID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rr.Body.Bytes())

	rr, env = manager.do(http.MethodGet, fmt.Sprintf("/api/v1/properties/%d/balances/export?from=2024-03-01&to=2024-04-01", propertyID+100), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestExpenseFlow(t *testing.T) {
	manager, _, _, _ := setupAPI(t)

	rr, env := manager.do(http.MethodPost, "/api/v1/movements/expense", map[string]any{
		"service_provider_id": 3,
		"movement_date":       "2024-03-05",
		"amount":              50,
		"items": []map[string]any{
			{"service_name": "cleaning", "amount": 40},
			{"service_name": "laundry", "amount": 15},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var res struct {
		Movement struct {
			ID    int64 `json:"id"`
			Items []struct {
				ID int64 `json:"id"`
			} `json:"items"`
		} `json:"movement"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res.Warnings, 1)
	require.Len(t, res.Movement.Items, 2)

	path := fmt.Sprintf("/api/v1/movements/expense/%d", res.Movement.ID)
	rr, env = manager.do(http.MethodPut, path, map[string]any{
		"service_provider_id": 3,
		"movement_date":       "2024-03-05",
		"items": []map[string]any{
			{"id": res.Movement.Items[0].ID, "service_name": "cleaning", "amount": 45},
			{"service_name": "repairs", "amount": 20},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, string(env.Data), `"amount":65`)
	assert.Contains(t, string(env.Data), `"warnings":[]`)

	rr, _ = manager.do(http.MethodDelete, fmt.Sprintf("/api/v1/movements/%d", res.Movement.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr, _ = manager.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
