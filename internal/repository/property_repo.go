package repository

import (
	"context"

	"gorm.io/gorm"

	"rentaldesk/internal/domain"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	var m propertyModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &domain.Property{ID: m.ID, Name: m.Name, MaxGuests: m.MaxGuests}, nil
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	m := propertyModel{ID: p.ID, Name: p.Name, MaxGuests: p.MaxGuests}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	p.ID = m.ID
	return nil
}
