package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type propertyModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;size:255;not null"`
	MaxGuests int       `gorm:"column:max_guests;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (propertyModel) TableName() string { return "properties" }

type taxTypeModel struct {
	ID   int64           `gorm:"column:id;primaryKey"`
	Name string          `gorm:"column:name;size:100;not null"`
	Rate decimal.Decimal `gorm:"column:rate;type:decimal(7,4);not null"`
}

func (taxTypeModel) TableName() string { return "tax_types" }

type channelModel struct {
	ID                       int64           `gorm:"column:id;primaryKey"`
	Name                     string          `gorm:"column:name;size:255;not null"`
	SalesCommissionRate      decimal.Decimal `gorm:"column:sales_commission_rate;type:decimal(7,4);not null"`
	CollectionCommissionRate decimal.Decimal `gorm:"column:collection_commission_rate;type:decimal(7,4);not null"`
	ApplyTax                 bool            `gorm:"column:apply_tax;not null;default:false"`
	TaxTypeID                *int64          `gorm:"column:tax_type_id"`
	TaxType                  *taxTypeModel   `gorm:"foreignKey:TaxTypeID"`
}

func (channelModel) TableName() string { return "channels" }

type bookingModel struct {
	ID                         int64           `gorm:"column:id;primaryKey"`
	Code                       string          `gorm:"column:code;size:32;not null;uniqueIndex"`
	PropertyID                 int64           `gorm:"column:property_id;not null;index:idx_bookings_property_stay"`
	GuestName                  *string         `gorm:"column:guest_name;size:255"`
	GuestCount                 int             `gorm:"column:guest_count;not null;default:0"`
	CheckIn                    datatypes.Date  `gorm:"column:check_in;not null;index:idx_bookings_property_stay"`
	CheckOut                   datatypes.Date  `gorm:"column:check_out;not null;index:idx_bookings_property_stay"`
	BookingType                string          `gorm:"column:booking_type;size:32;not null"`
	Status                     string          `gorm:"column:status;size:32;not null;index"`
	ChannelID                  *int64          `gorm:"column:channel_id"`
	Channel                    *channelModel   `gorm:"foreignKey:ChannelID"`
	TotalAmount                decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null"`
	SalesCommissionAmount      decimal.Decimal `gorm:"column:sales_commission_amount;type:decimal(12,2);not null"`
	CollectionCommissionAmount decimal.Decimal `gorm:"column:collection_commission_amount;type:decimal(12,2);not null"`
	TaxAmount                  decimal.Decimal `gorm:"column:tax_amount;type:decimal(12,2);not null"`
	NetAmount                  decimal.Decimal `gorm:"column:net_amount;type:decimal(12,2);not null"`
	Notes                      *string         `gorm:"column:notes;type:text"`
	CreatedAt                  time.Time       `gorm:"column:created_at"`
	UpdatedAt                  time.Time       `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

type movementModel struct {
	ID                int64              `gorm:"column:id;primaryKey"`
	MovementType      string             `gorm:"column:movement_type;size:16;not null;index:idx_movements_booking_type"`
	Amount            decimal.Decimal    `gorm:"column:amount;type:decimal(12,2);not null"`
	MovementDate      datatypes.Date     `gorm:"column:movement_date;not null"`
	BookingID         *int64             `gorm:"column:booking_id;index:idx_movements_booking_type"`
	ServiceProviderID *int64             `gorm:"column:service_provider_id;index"`
	Concept           *string            `gorm:"column:concept;size:255"`
	PaymentMethod     *string            `gorm:"column:payment_method;size:32"`
	Items             []expenseItemModel `gorm:"foreignKey:MovementID"`
	CreatedAt         time.Time          `gorm:"column:created_at"`
	UpdatedAt         time.Time          `gorm:"column:updated_at"`
}

func (movementModel) TableName() string { return "movements" }

type expenseItemModel struct {
	ID          int64           `gorm:"column:id;primaryKey"`
	MovementID  int64           `gorm:"column:movement_id;not null;index"`
	Position    int             `gorm:"column:position;not null;default:0"`
	ServiceName string          `gorm:"column:service_name;size:255;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null"`
	TaxTypeID   *int64          `gorm:"column:tax_type_id"`
	TaxAmount   decimal.Decimal `gorm:"column:tax_amount;type:decimal(12,2);not null"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null"`
}

func (expenseItemModel) TableName() string { return "expense_items" }

func optString(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func fromDate(d datatypes.Date) time.Time {
	y, m, day := time.Time(d).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
