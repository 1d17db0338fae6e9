// Package server wires repositories, services and handlers into a gin engine.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rentaldesk/internal/middleware"
	"rentaldesk/internal/modules/availability"
	"rentaldesk/internal/modules/booking"
	"rentaldesk/internal/modules/expense"
	"rentaldesk/internal/modules/ledger"
	"rentaldesk/internal/modules/report"
	"rentaldesk/internal/pkg/jwt"
	"rentaldesk/internal/pkg/lock"
	"rentaldesk/internal/repository"
)

type Deps struct {
	DB          *gorm.DB
	Tokens      *jwt.Service
	Locker      lock.Locker
	Log         logrus.FieldLogger
	CORSOrigins []string
	HorizonDays int
	// Clock overrides time.Now for availability sweeps. Optional.
	Clock func() time.Time
}

func NewRouter(d Deps) *gin.Engine {
	bookingRepo := repository.NewBookingRepository(d.DB)
	propertyRepo := repository.NewPropertyRepository(d.DB)
	channelRepo := repository.NewChannelRepository(d.DB)
	taxRepo := repository.NewTaxTypeRepository(d.DB)
	movementRepo := repository.NewMovementRepository(d.DB)

	availabilityService := availability.NewService(bookingRepo, propertyRepo, d.Log).WithDefaultHorizon(d.HorizonDays)
	if d.Clock != nil {
		availabilityService.WithClock(d.Clock)
	}
	ledgerService := ledger.NewService(bookingRepo, movementRepo, d.Locker, d.Log)
	expenseService := expense.NewService(movementRepo, taxRepo, d.Log)
	bookingService := booking.NewService(bookingRepo, channelRepo, availabilityService, ledgerService, d.Log)
	reportService := report.NewService(bookingRepo, propertyRepo, ledgerService, d.Log)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(d.Log))
	if len(d.CORSOrigins) > 0 {
		r.Use(corsMiddleware(d.CORSOrigins))
	}

	r.GET("/health", health(d.DB))

	v1 := r.Group("/api/v1", middleware.JWTAuth(d.Tokens))
	write := v1.Group("", middleware.CanWrite())

	availability.NewHandler(availabilityService).RegisterRoutes(v1)
	booking.NewHandler(bookingService).RegisterRoutes(v1, write)
	ledger.NewHandler(ledgerService).RegisterRoutes(v1, write)
	expense.NewHandler(expenseService).RegisterRoutes(v1, write)
	report.NewHandler(reportService).RegisterRoutes(v1)

	return r
}

// corsMiddleware allows credentials unless a wildcard origin is configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowCredentials := true
	for _, o := range origins {
		if o == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	})
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
