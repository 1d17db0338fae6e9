package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentaldesk/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func toDomainBooking(m bookingModel) domain.Booking {
	b := domain.Booking{
		ID:                         m.ID,
		Code:                       m.Code,
		PropertyID:                 m.PropertyID,
		GuestName:                  derefString(m.GuestName),
		GuestCount:                 m.GuestCount,
		CheckIn:                    fromDate(m.CheckIn),
		CheckOut:                   fromDate(m.CheckOut),
		BookingType:                domain.BookingType(m.BookingType),
		Status:                     domain.BookingStatus(m.Status),
		ChannelID:                  m.ChannelID,
		TotalAmount:                m.TotalAmount,
		SalesCommissionAmount:      m.SalesCommissionAmount,
		CollectionCommissionAmount: m.CollectionCommissionAmount,
		TaxAmount:                  m.TaxAmount,
		NetAmount:                  m.NetAmount,
		Notes:                      derefString(m.Notes),
		CreatedAt:                  m.CreatedAt,
		UpdatedAt:                  m.UpdatedAt,
	}
	if m.Channel != nil {
		ch := toDomainChannel(*m.Channel)
		b.Channel = &ch
	}
	return b
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                         b.ID,
		Code:                       b.Code,
		PropertyID:                 b.PropertyID,
		GuestName:                  optString(b.GuestName),
		GuestCount:                 b.GuestCount,
		CheckIn:                    toDate(b.CheckIn),
		CheckOut:                   toDate(b.CheckOut),
		BookingType:                string(b.BookingType),
		Status:                     string(b.Status),
		ChannelID:                  b.ChannelID,
		TotalAmount:                b.TotalAmount,
		SalesCommissionAmount:      b.SalesCommissionAmount,
		CollectionCommissionAmount: b.CollectionCommissionAmount,
		TaxAmount:                  b.TaxAmount,
		NetAmount:                  b.NetAmount,
		Notes:                      optString(b.Notes),
		CreatedAt:                  b.CreatedAt,
		UpdatedAt:                  b.UpdatedAt,
	}
}

func toDomainBookings(rows []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomainBooking(r))
	}
	return out
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).Preload("Channel.TaxType").First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	b := toDomainBooking(m)
	return &b, nil
}

func (r *BookingRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Booking, error) {
	if len(ids) == 0 {
		return []domain.Booking{}, nil
	}
	var rows []bookingModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

// ListOverlapping returns the non-cancelled bookings of a property whose stay
// shares at least one night with [start, end), ordered by check-in.
func (r *BookingRepository) ListOverlapping(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	err := overlapping(r.db.WithContext(ctx), propertyID, start, end).
		Where("status <> ?", string(domain.BookingCancelled)).
		Order("check_in ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

// ListForProperty is ListOverlapping including cancelled bookings, for listings.
func (r *BookingRepository) ListForProperty(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	err := overlapping(r.db.WithContext(ctx), propertyID, start, end).
		Preload("Channel.TaxType").
		Order("check_in ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

// Create inserts b after re-checking, inside the same transaction, that no
// other live booking holds any of its nights. The property row lock makes
// concurrent writers for one property take turns.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProperty(tx, m.PropertyID); err != nil {
			return err
		}
		if err := ensureFree(tx, m.PropertyID, b.CheckIn, b.CheckOut, 0); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&m).Error
	})
	if err != nil {
		return translate(err)
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

// Update saves b. The stay is re-checked against every other live booking
// and, when guard is not nil, guard must accept b with the income already
// recorded against it. Both checks run under the booking and property locks.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking, guard domain.BalanceGuard) error {
	m := toBookingModel(b)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current bookingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, b.ID).Error; err != nil {
			return err
		}
		if b.Status != domain.BookingCancelled {
			if err := lockProperty(tx, m.PropertyID); err != nil {
				return err
			}
			if err := ensureFree(tx, m.PropertyID, b.CheckIn, b.CheckOut, b.ID); err != nil {
				return err
			}
		}
		if guard != nil {
			paid, err := sumIncome(tx, b.ID, 0)
			if err != nil {
				return err
			}
			if err := guard(*b, paid); err != nil {
				return err
			}
		}
		m.CreatedAt = current.CreatedAt
		return tx.Omit(clause.Associations).Save(&m).Error
	})
	if err != nil {
		return translate(err)
	}
	b.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Update("status", string(status))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func overlapping(db *gorm.DB, propertyID int64, start, end time.Time) *gorm.DB {
	return db.Model(&bookingModel{}).
		Where("property_id = ?", propertyID).
		Where("check_in < ? AND check_out > ?", toDate(end), toDate(start))
}

// lockProperty takes the property row lock that serialises booking writes
// for one property.
func lockProperty(tx *gorm.DB, propertyID int64) error {
	var p propertyModel
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&p, propertyID).Error
}

func ensureFree(tx *gorm.DB, propertyID int64, checkIn, checkOut time.Time, excludeID int64) error {
	q := overlapping(tx, propertyID, checkIn, checkOut).
		Where("status <> ?", string(domain.BookingCancelled))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return domain.ErrOverbooking
	}
	return nil
}
