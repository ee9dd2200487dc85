package rphanging

import (
	"context"
	"encoding/json"
	"time"

	"wbhub/internal/app/domains/entity/etsupply"
	"wbhub/internal/app/infra/persistence/entity"

	"gorm.io/gorm"
)

// HangingRepositoryImpl is the Postgres implementation.
type HangingRepositoryImpl struct {
	db *gorm.DB
}

// NewHangingRepository creates the hanging supply repository.
func NewHangingRepository(db *gorm.DB) HangingRepository {
	return &HangingRepositoryImpl{db: db}
}

// Save inserts a new hanging supply record.
func (r *HangingRepositoryImpl) Save(ctx context.Context, record *etsupply.HangingRecord) error {
	po, err := r.toGormModel(record)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(po).Error
}

// GetByID fetches one record by supply id.
func (r *HangingRepositoryImpl) GetByID(ctx context.Context, supplyID string) (*etsupply.HangingRecord, error) {
	var po entity.HangingSupply
	err := r.db.WithContext(ctx).Where("supply_id = ?", supplyID).First(&po).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainModel(&po)
}

// GetAll returns every tracked record, newest first.
func (r *HangingRepositoryImpl) GetAll(ctx context.Context) ([]*etsupply.HangingRecord, error) {
	return r.list(ctx, r.db.WithContext(ctx).Order("created_at DESC"))
}

// GetVisible returns listing records: fully processed fictitious-delivered
// supplies are filtered out in memory since "fully processed" compares two
// JSON columns.
func (r *HangingRepositoryImpl) GetVisible(ctx context.Context) ([]*etsupply.HangingRecord, error) {
	records, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*etsupply.HangingRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsFictitiousDelivered && rec.FullyProcessed() {
			continue
		}
		visible = append(visible, rec)
	}
	return visible, nil
}

// GetActiveNotFictitious returns records awaiting promotion.
func (r *HangingRepositoryImpl) GetActiveNotFictitious(ctx context.Context) ([]*etsupply.HangingRecord, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("is_fictitious_delivered = ?", false).
		Order("created_at ASC"))
}

// UpdateOrderData overwrites the stored snapshot of one supply.
func (r *HangingRepositoryImpl) UpdateOrderData(ctx context.Context, supplyID string, snapshot etsupply.OrderSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&entity.HangingSupply{}).
		Where("supply_id = ?", supplyID).
		Update("order_data", data).Error
}

// AppendChangesLog appends deltas to the supply's change log. Read-modify-write
// is safe: a single reconciler owns all change-log writes.
func (r *HangingRepositoryImpl) AppendChangesLog(ctx context.Context, supplyID string, changes []etsupply.ChangeEntry) error {
	if len(changes) == 0 {
		return nil
	}

	record, err := r.GetByID(ctx, supplyID)
	if err != nil {
		return err
	}
	combined := append(record.ChangesLog, changes...)
	data, err := json.Marshal(combined)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&entity.HangingSupply{}).
		Where("supply_id = ?", supplyID).
		Update("changes_log", data).Error
}

// AppendShippedOrders records orders fictitiously shipped out of the supply.
func (r *HangingRepositoryImpl) AppendShippedOrders(ctx context.Context, supplyID string, shipped []etsupply.ShippedOrder) error {
	if len(shipped) == 0 {
		return nil
	}

	record, err := r.GetByID(ctx, supplyID)
	if err != nil {
		return err
	}
	combined := append(record.ShippedOrders, shipped...)
	data, err := json.Marshal(combined)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&entity.HangingSupply{}).
		Where("supply_id = ?", supplyID).
		Update("shipped_orders", data).Error
}

// MarkFictitiousDelivered sets the one-way fictitious delivery flag.
func (r *HangingRepositoryImpl) MarkFictitiousDelivered(ctx context.Context, supplyID, operator string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.HangingSupply{}).
		Where("supply_id = ?", supplyID).
		Updates(map[string]interface{}{
			"is_fictitious_delivered":      true,
			"fictitious_delivered_at":      at,
			"fictitious_delivery_operator": operator,
		}).Error
}

// Delete removes a tracked record.
func (r *HangingRepositoryImpl) Delete(ctx context.Context, supplyID string) error {
	return r.db.WithContext(ctx).
		Where("supply_id = ?", supplyID).
		Delete(&entity.HangingSupply{}).Error
}

// CleanupOldChanges drops change-log entries older than the cutoff.
func (r *HangingRepositoryImpl) CleanupOldChanges(ctx context.Context, cutoff time.Time) (int64, error) {
	records, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, rec := range records {
		kept := make([]etsupply.ChangeEntry, 0, len(rec.ChangesLog))
		for _, c := range rec.ChangesLog {
			if c.Timestamp.After(cutoff) {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(rec.ChangesLog) {
			continue
		}
		removed += int64(len(rec.ChangesLog) - len(kept))

		data, err := json.Marshal(kept)
		if err != nil {
			return removed, err
		}
		err = r.db.WithContext(ctx).
			Model(&entity.HangingSupply{}).
			Where("supply_id = ?", rec.SupplyID).
			Update("changes_log", data).Error
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// GetStatistics aggregates counters over the whole table.
func (r *HangingRepositoryImpl) GetStatistics(ctx context.Context) (*Statistics, error) {
	records, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{TotalSupplies: int64(len(records))}
	for _, rec := range records {
		if rec.IsFictitiousDelivered {
			stats.FictitiousDelivered++
		} else {
			stats.PendingDelivery++
		}
		stats.TotalTrackedOrders += int64(len(rec.OrderData.Orders))
		stats.TotalShippedOrders += int64(len(rec.ShippedOrders))
	}
	return stats, nil
}

func (r *HangingRepositoryImpl) list(ctx context.Context, query *gorm.DB) ([]*etsupply.HangingRecord, error) {
	var pos []entity.HangingSupply
	if err := query.Find(&pos).Error; err != nil {
		return nil, err
	}

	records := make([]*etsupply.HangingRecord, 0, len(pos))
	for i := range pos {
		rec, err := r.toDomainModel(&pos[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// toGormModel converts a domain record into the GORM model.
func (r *HangingRepositoryImpl) toGormModel(record *etsupply.HangingRecord) (*entity.HangingSupply, error) {
	orderData, err := json.Marshal(record.OrderData)
	if err != nil {
		return nil, err
	}

	po := &entity.HangingSupply{
		SupplyID:              record.SupplyID,
		Account:               record.Account,
		OrderData:             orderData,
		IsFictitiousDelivered: record.IsFictitiousDelivered,
		FictitiousDeliveredAt: record.FictitiousDeliveredAt,
	}
	if record.Operator != "" {
		operator := record.Operator
		po.Operator = &operator
	}
	if record.FictitiousDeliveryOperator != "" {
		operator := record.FictitiousDeliveryOperator
		po.FictitiousDeliveryOperator = &operator
	}
	if len(record.ShippedOrders) > 0 {
		shipped, err := json.Marshal(record.ShippedOrders)
		if err != nil {
			return nil, err
		}
		po.ShippedOrders = shipped
	}
	if len(record.ChangesLog) > 0 {
		changes, err := json.Marshal(record.ChangesLog)
		if err != nil {
			return nil, err
		}
		po.ChangesLog = changes
	}
	return po, nil
}

// toDomainModel converts the GORM model into a domain record.
func (r *HangingRepositoryImpl) toDomainModel(po *entity.HangingSupply) (*etsupply.HangingRecord, error) {
	record := &etsupply.HangingRecord{
		SupplyID:              po.SupplyID,
		Account:               po.Account,
		IsFictitiousDelivered: po.IsFictitiousDelivered,
		FictitiousDeliveredAt: po.FictitiousDeliveredAt,
		CreatedAt:             po.CreatedAt,
	}
	if po.Operator != nil {
		record.Operator = *po.Operator
	}
	if po.FictitiousDeliveryOperator != nil {
		record.FictitiousDeliveryOperator = *po.FictitiousDeliveryOperator
	}
	if len(po.OrderData) > 0 {
		if err := json.Unmarshal(po.OrderData, &record.OrderData); err != nil {
			return nil, err
		}
	}
	if len(po.ShippedOrders) > 0 {
		if err := json.Unmarshal(po.ShippedOrders, &record.ShippedOrders); err != nil {
			return nil, err
		}
	}
	if len(po.ChangesLog) > 0 {
		if err := json.Unmarshal(po.ChangesLog, &record.ChangesLog); err != nil {
			return nil, err
		}
	}
	return record, nil
}
