package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentaldesk/internal/domain"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

func toDomainChannel(m channelModel) domain.Channel {
	ch := domain.Channel{
		ID:                       m.ID,
		Name:                     m.Name,
		SalesCommissionRate:      m.SalesCommissionRate,
		CollectionCommissionRate: m.CollectionCommissionRate,
		ApplyTax:                 m.ApplyTax,
		TaxTypeID:                m.TaxTypeID,
	}
	if m.TaxType != nil {
		ch.TaxType = &domain.TaxType{ID: m.TaxType.ID, Name: m.TaxType.Name, Rate: m.TaxType.Rate}
	}
	return ch
}

// GetByID loads a channel together with its tax type.
func (r *ChannelRepository) GetByID(ctx context.Context, id int64) (*domain.Channel, error) {
	var m channelModel
	if err := r.db.WithContext(ctx).Preload("TaxType").First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	ch := toDomainChannel(m)
	return &ch, nil
}

func (r *ChannelRepository) Create(ctx context.Context, ch *domain.Channel) error {
	m := channelModel{
		ID:                       ch.ID,
		Name:                     ch.Name,
		SalesCommissionRate:      ch.SalesCommissionRate,
		CollectionCommissionRate: ch.CollectionCommissionRate,
		ApplyTax:                 ch.ApplyTax,
		TaxTypeID:                ch.TaxTypeID,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return translate(err)
	}
	ch.ID = m.ID
	return nil
}

type TaxTypeRepository struct {
	db *gorm.DB
}

func NewTaxTypeRepository(db *gorm.DB) *TaxTypeRepository {
	return &TaxTypeRepository{db: db}
}

// GetRates returns the rate of every known id. Unknown ids are absent from the map.
func (r *TaxTypeRepository) GetRates(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []taxTypeModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Rate
	}
	return out, nil
}

func (r *TaxTypeRepository) Create(ctx context.Context, t *domain.TaxType) error {
	m := taxTypeModel{ID: t.ID, Name: t.Name, Rate: t.Rate}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	t.ID = m.ID
	return nil
}
