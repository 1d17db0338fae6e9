package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentaldesk/internal/domain"
)

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

func toDomainMovement(m movementModel) domain.Movement {
	out := domain.Movement{
		ID:                m.ID,
		MovementType:      domain.MovementType(m.MovementType),
		Amount:            m.Amount,
		MovementDate:      fromDate(m.MovementDate),
		BookingID:         m.BookingID,
		ServiceProviderID: m.ServiceProviderID,
		Concept:           derefString(m.Concept),
		PaymentMethod:     derefString(m.PaymentMethod),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if len(m.Items) > 0 {
		out.Items = make([]domain.ExpenseItem, 0, len(m.Items))
		for _, it := range m.Items {
			out.Items = append(out.Items, toDomainItem(it))
		}
	}
	return out
}

func toMovementModel(m *domain.Movement) movementModel {
	return movementModel{
		ID:                m.ID,
		MovementType:      string(m.MovementType),
		Amount:            m.Amount,
		MovementDate:      toDate(m.MovementDate),
		BookingID:         m.BookingID,
		ServiceProviderID: m.ServiceProviderID,
		Concept:           optString(m.Concept),
		PaymentMethod:     optString(m.PaymentMethod),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toDomainItem(m expenseItemModel) domain.ExpenseItem {
	return domain.ExpenseItem{
		ID:          m.ID,
		MovementID:  m.MovementID,
		Position:    m.Position,
		ServiceName: m.ServiceName,
		Amount:      m.Amount,
		TaxTypeID:   m.TaxTypeID,
		TaxAmount:   m.TaxAmount,
		TotalAmount: m.TotalAmount,
	}
}

func toItemModel(movementID int64, it domain.ExpenseItem) expenseItemModel {
	return expenseItemModel{
		ID:          it.ID,
		MovementID:  movementID,
		Position:    it.Position,
		ServiceName: it.ServiceName,
		Amount:      it.Amount,
		TaxTypeID:   it.TaxTypeID,
		TaxAmount:   it.TaxAmount,
		TotalAmount: it.TotalAmount,
	}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	})
}

func (r *MovementRepository) GetByID(ctx context.Context, id int64) (*domain.Movement, error) {
	var m movementModel
	if err := preloadItems(r.db.WithContext(ctx)).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	out := toDomainMovement(m)
	return &out, nil
}

func (r *MovementRepository) ListIncomeByBooking(ctx context.Context, bookingID int64) ([]domain.Movement, error) {
	return r.ListIncomeByBookings(ctx, []int64{bookingID})
}

// ListIncomeByBookings loads the income movements of many bookings in one query.
func (r *MovementRepository) ListIncomeByBookings(ctx context.Context, bookingIDs []int64) ([]domain.Movement, error) {
	if len(bookingIDs) == 0 {
		return []domain.Movement{}, nil
	}
	var rows []movementModel
	err := r.db.WithContext(ctx).
		Where("movement_type = ? AND booking_id IN ?", string(domain.MovementIncome), bookingIDs).
		Order("movement_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Movement, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainMovement(row))
	}
	return out, nil
}

// CreateIncome inserts an income movement. The owning booking row is locked,
// its income is summed again inside the transaction and guard must accept the
// result before the insert happens.
func (r *MovementRepository) CreateIncome(ctx context.Context, m *domain.Movement, guard domain.BalanceGuard) error {
	row := toMovementModel(m)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkBalance(tx, *m.BookingID, 0, guard); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&row).Error
	})
	if err != nil {
		return translate(err)
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	m.UpdatedAt = row.UpdatedAt
	return nil
}

// UpdateIncome rewrites an income movement under the same guard as CreateIncome,
// leaving the movement itself out of the sum. When the movement moves to
// another booking only the new booking is checked.
func (r *MovementRepository) UpdateIncome(ctx context.Context, m *domain.Movement, guard domain.BalanceGuard) error {
	row := toMovementModel(m)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current movementModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, m.ID).Error; err != nil {
			return err
		}
		if current.MovementType != string(domain.MovementIncome) {
			return &domain.InvalidMovementError{InvalidInputError: domain.InvalidInputError{
				Field: "movement_type", Reason: "cannot change an expense movement into an income",
			}}
		}
		if err := checkBalance(tx, *m.BookingID, m.ID, guard); err != nil {
			return err
		}
		row.CreatedAt = current.CreatedAt
		return tx.Omit(clause.Associations).Save(&row).Error
	})
	if err != nil {
		return translate(err)
	}
	m.CreatedAt = row.CreatedAt
	m.UpdatedAt = row.UpdatedAt
	return nil
}

func checkBalance(tx *gorm.DB, bookingID, excludingID int64, guard domain.BalanceGuard) error {
	var b bookingModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, bookingID).Error; err != nil {
		return err
	}
	paid, err := sumIncome(tx, bookingID, excludingID)
	if err != nil {
		return err
	}
	return guard(toDomainBooking(b), paid)
}

// sumIncome adds up a booking's income movements, skipping excludingID.
// Callers hold the booking row lock.
func sumIncome(tx *gorm.DB, bookingID, excludingID int64) (decimal.Decimal, error) {
	q := tx.Model(&movementModel{}).
		Where("movement_type = ? AND booking_id = ?", string(domain.MovementIncome), bookingID)
	if excludingID != 0 {
		q = q.Where("id <> ?", excludingID)
	}
	var amounts []decimal.Decimal
	if err := q.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	paid := decimal.Zero
	for _, a := range amounts {
		paid = paid.Add(domain.Round2(a))
	}
	return paid, nil
}

// CreateExpense inserts an expense movement and its items atomically.
func (r *MovementRepository) CreateExpense(ctx context.Context, m *domain.Movement) error {
	row := toMovementModel(m)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		for i := range m.Items {
			item := toItemModel(row.ID, m.Items[i])
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			m.Items[i].ID = item.ID
			m.Items[i].MovementID = row.ID
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	m.UpdatedAt = row.UpdatedAt
	return nil
}

// UpdateExpense saves the movement header and applies item changes in one
// transaction: updates in place, inserts new lines, removes dropped ones.
func (r *MovementRepository) UpdateExpense(ctx context.Context, m *domain.Movement, changes domain.ExpenseItemChanges) error {
	row := toMovementModel(m)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current movementModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, m.ID).Error; err != nil {
			return err
		}
		if current.MovementType != string(domain.MovementExpense) {
			return &domain.InvalidMovementError{InvalidInputError: domain.InvalidInputError{
				Field: "movement_type", Reason: "cannot change an income movement into an expense",
			}}
		}
		row.CreatedAt = current.CreatedAt
		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return err
		}

		if len(changes.Delete) > 0 {
			if err := tx.Where("movement_id = ? AND id IN ?", m.ID, changes.Delete).Delete(&expenseItemModel{}).Error; err != nil {
				return err
			}
		}
		for _, it := range changes.Update {
			res := tx.Model(&expenseItemModel{}).
				Where("id = ? AND movement_id = ?", it.ID, m.ID).
				Updates(map[string]any{
					"position":     it.Position,
					"service_name": it.ServiceName,
					"amount":       it.Amount,
					"tax_type_id":  it.TaxTypeID,
					"tax_amount":   it.TaxAmount,
					"total_amount": it.TotalAmount,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("expense item %d of movement %d: %w", it.ID, m.ID, domain.ErrNotFound)
			}
		}
		for _, it := range changes.Insert {
			item := toItemModel(m.ID, it)
			item.ID = 0
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}
	m.CreatedAt = row.CreatedAt
	m.UpdatedAt = row.UpdatedAt
	return nil
}

// Delete removes a movement and its items. Deleting never needs a balance check.
func (r *MovementRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movement_id = ?", id).Delete(&expenseItemModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&movementModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
