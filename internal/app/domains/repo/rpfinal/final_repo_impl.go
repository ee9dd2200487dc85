package rpfinal

import (
	"context"
	"errors"

	"wbhub/internal/app/domains/entity/etsupply"
	"wbhub/internal/app/infra/persistence/entity"

	"gorm.io/gorm"
)

// FinalRepositoryImpl is the Postgres implementation.
type FinalRepositoryImpl struct {
	db *gorm.DB
}

// NewFinalRepository creates the final supply repository.
func NewFinalRepository(db *gorm.DB) FinalRepository {
	return &FinalRepositoryImpl{db: db}
}

// Save records a newly created final supply.
func (r *FinalRepositoryImpl) Save(ctx context.Context, record *etsupply.FinalRecord) error {
	po := &entity.FinalSupply{
		SupplyID:   record.SupplyID,
		Account:    record.Account,
		SupplyName: record.SupplyName,
	}
	return r.db.WithContext(ctx).Create(po).Error
}

// GetLatest returns the account's newest final supply, nil when none exists.
func (r *FinalRepositoryImpl) GetLatest(ctx context.Context, account string) (*etsupply.FinalRecord, error) {
	var po entity.FinalSupply
	err := r.db.WithContext(ctx).
		Where("account = ?", account).
		Order("created_at DESC").
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &etsupply.FinalRecord{
		SupplyID:   po.SupplyID,
		Account:    po.Account,
		SupplyName: po.SupplyName,
		CreatedAt:  po.CreatedAt,
	}, nil
}
