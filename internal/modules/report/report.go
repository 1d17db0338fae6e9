// Package report exports booking balances of a property as an XLSX workbook.
package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"rentaldesk/internal/domain"
	"rentaldesk/internal/pkg/daterange"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/pkg/request"
	"rentaldesk/internal/pkg/response"
	"rentaldesk/internal/pkg/tracing"
)

const (
	SheetName = "Balances"
	xlsxMIME  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{
	"Code", "Guest", "Type", "Check-in", "Check-out", "Nights", "Channel",
	"Total", "Sales commission", "Collection commission", "Tax", "Net",
	"Total to pay", "Paid", "Pending",
}

type BookingLister interface {
	ListForProperty(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error)
}

type PropertyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

type PaymentInfoReader interface {
	GetPaymentInfoBatch(ctx context.Context, bookings []domain.Booking) ([]domain.BookingPaymentInfo, error)
}

type Service struct {
	bookings   BookingLister
	properties PropertyReader
	payments   PaymentInfoReader
	log        logrus.FieldLogger
}

func NewService(bookings BookingLister, properties PropertyReader, payments PaymentInfoReader, log logrus.FieldLogger) *Service {
	return &Service{bookings: bookings, properties: properties, payments: payments, log: logger.For(log, "report")}
}

// ExportBalances writes one row per live booking overlapping [from, to) and
// a totals row.
func (s *Service) ExportBalances(ctx context.Context, propertyID int64, from, to time.Time) (data []byte, err error) {
	ctx, span := tracing.Start(ctx, "report.ExportBalances", tracing.Property(propertyID))
	defer tracing.End(span, &err)

	window, err := daterange.New(from, to)
	if err != nil {
		return nil, &domain.InvalidInputError{Field: "to", Reason: "must be after from"}
	}
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}
	all, err := s.bookings.ListForProperty(ctx, propertyID, window.CheckIn, window.CheckOut)
	if err != nil {
		return nil, err
	}
	bookings := make([]domain.Booking, 0, len(all))
	for _, b := range all {
		if !b.IsCancelled() {
			bookings = append(bookings, b)
		}
	}
	infos, err := s.payments.GetPaymentInfoBatch(ctx, bookings)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.log.WithError(cerr).Warn("close workbook")
		}
	}()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}

	var totals [8]decimal.Decimal
	for i, b := range bookings {
		info := infos[i]
		money := []decimal.Decimal{
			b.TotalAmount, b.SalesCommissionAmount, b.CollectionCommissionAmount, b.TaxAmount, b.NetAmount,
			info.TotalToPay, info.PaidAmount, info.PendingAmount,
		}
		row := i + 2
		channel := ""
		if b.Channel != nil {
			channel = b.Channel.Name
		}
		texts := []any{
			b.Code, b.GuestName, string(b.BookingType),
			daterange.Format(b.CheckIn), daterange.Format(b.CheckOut),
			daterange.DaysBetween(b.CheckIn, b.CheckOut), channel,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &texts); err != nil {
			return nil, err
		}
		for j, m := range money {
			totals[j] = totals[j].Add(m)
			if err := setMoney(f, len(texts)+1+j, row, m); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(bookings) + 2
	if err := f.SetCellStr(SheetName, fmt.Sprintf("A%d", totalRow), "TOTAL"); err != nil {
		return nil, err
	}
	for j, m := range totals {
		if err := setMoney(f, 8+j, totalRow, m); err != nil {
			return nil, err
		}
	}
	if err := s.style(f, totalRow); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"funcName":    "ExportBalances",
		"property_id": propertyID,
		"rows":        len(bookings),
	}).Info("balances exported")
	return buf.Bytes(), nil
}

func setMoney(f *excelize.File, col, row int, d decimal.Decimal) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellFloat(SheetName, cell, domain.Round2(d).InexactFloat64(), 2, 64)
}

func (s *Service) style(f *excelize.File, totalRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), totalRow)
	if err := f.SetCellStyle(SheetName, "H2", last, money); err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", "B", 22); err != nil {
		return err
	}
	return f.SetColWidth(SheetName, "H", "O", 14)
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(read *gin.RouterGroup) {
	read.GET("/properties/:id/balances/export", h.ExportBalances)
}

// GET /properties/:id/balances/export?from=&to=
func (h *Handler) ExportBalances(c *gin.Context) {
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
	data, err := h.service.ExportBalances(c.Request.Context(), propertyID, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	name := fmt.Sprintf("balances_%d_%s_%s.xlsx", propertyID, daterange.Format(from), daterange.Format(to))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxMIME, data)
}
