package rpstatuslog

import (
	"context"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/infra/persistence/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusLogRepositoryImpl is the Postgres implementation of the ledger.
type StatusLogRepositoryImpl struct {
	db *gorm.DB
}

// NewStatusLogRepository creates the ledger repository.
func NewStatusLogRepository(db *gorm.DB) StatusLogRepository {
	return &StatusLogRepositoryImpl{db: db}
}

// InsertBatch appends entries with ON CONFLICT DO NOTHING so replays of the
// same lifecycle fact never produce a second row or an error.
func (r *StatusLogRepositoryImpl) InsertBatch(ctx context.Context, entries []etorder.StatusLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	pos := make([]entity.OrderStatusLog, 0, len(entries))
	for _, e := range entries {
		po := entity.OrderStatusLog{
			OrderID: e.OrderID,
			Status:  string(e.Status),
			Account: e.Account,
		}
		if e.SupplyID != "" {
			supplyID := e.SupplyID
			po.SupplyID = &supplyID
		}
		if e.Operator != "" {
			operator := e.Operator
			po.Operator = &operator
		}
		pos = append(pos, po)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&pos).Error
}

// GetOrderIDsBySupplies returns distinct order ids logged against the supplies.
func (r *StatusLogRepositoryImpl) GetOrderIDsBySupplies(ctx context.Context, supplyIDs []string) ([]int64, error) {
	if len(supplyIDs) == 0 {
		return nil, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&entity.OrderStatusLog{}).
		Distinct("order_id").
		Where("supply_id IN ?", supplyIDs).
		Pluck("order_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetBySupply returns one supply's log entries ordered by insertion time.
func (r *StatusLogRepositoryImpl) GetBySupply(ctx context.Context, supplyID string) ([]etorder.StatusLogEntry, error) {
	var pos []entity.OrderStatusLog
	err := r.db.WithContext(ctx).
		Where("supply_id = ?", supplyID).
		Order("created_at ASC, id ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	entries := make([]etorder.StatusLogEntry, 0, len(pos))
	for _, po := range pos {
		entry := etorder.StatusLogEntry{
			OrderID:   po.OrderID,
			Status:    etorder.OrderStatus(po.Status),
			Account:   po.Account,
			CreatedAt: po.CreatedAt,
		}
		if po.SupplyID != nil {
			entry.SupplyID = *po.SupplyID
		}
		if po.Operator != nil {
			entry.Operator = *po.Operator
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
