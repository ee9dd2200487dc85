package rpsnapshot

import (
	"context"

	"wbhub/internal/app/infra/persistence/entity"

	"gorm.io/gorm"
)

// SnapshotRepositoryImpl is the Postgres implementation.
type SnapshotRepositoryImpl struct {
	db *gorm.DB
}

// NewSnapshotRepository creates the order mirror repository.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &SnapshotRepositoryImpl{db: db}
}

// GetLatestByIDs returns the newest mirrored row per order id using
// DISTINCT ON, Postgres-specific on purpose.
func (r *SnapshotRepositoryImpl) GetLatestByIDs(ctx context.Context, orderIDs []int64) (map[int64]OrderDetails, error) {
	if len(orderIDs) == 0 {
		return map[int64]OrderDetails{}, nil
	}

	var pos []entity.AssemblyTaskStatus
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (id) id, nm_id, converted_price, account, supplier_status, wb_status, created_at
		     FROM assembly_task_status_model
		     WHERE id IN ?
		     ORDER BY id, created_at_db DESC`, orderIDs).
		Scan(&pos).Error
	if err != nil {
		return nil, err
	}

	details := make(map[int64]OrderDetails, len(pos))
	for _, po := range pos {
		details[po.ID] = OrderDetails{
			OrderID:        po.ID,
			NMID:           po.NMID,
			ConvertedPrice: po.ConvertedPrice,
			Account:        po.Account,
			SupplierStatus: po.SupplierStatus,
			WBStatus:       po.WBStatus,
			CreatedAt:      po.CreatedAt,
		}
	}
	return details, nil
}
