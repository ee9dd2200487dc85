package rphanging

import (
	"context"
	"time"

	"wbhub/internal/app/domains/entity/etsupply"
)

// Statistics summarizes the hanging supply table for the listing endpoint.
type Statistics struct {
	TotalSupplies       int64 `json:"total_supplies"`
	FictitiousDelivered int64 `json:"fictitious_delivered"`
	PendingDelivery     int64 `json:"pending_delivery"`
	TotalTrackedOrders  int64 `json:"total_tracked_orders"`
	TotalShippedOrders  int64 `json:"total_shipped_orders"`
}

// HangingRepository stores hanging supply records together with their order
// snapshots, shipment marks and reconciliation change log.
type HangingRepository interface {
	// Save inserts a new hanging supply record.
	Save(ctx context.Context, record *etsupply.HangingRecord) error

	// GetByID fetches one record by supply id; gorm.ErrRecordNotFound when
	// the supply is not tracked.
	GetByID(ctx context.Context, supplyID string) (*etsupply.HangingRecord, error)

	// GetAll returns every tracked record, newest first.
	GetAll(ctx context.Context) ([]*etsupply.HangingRecord, error)

	// GetVisible returns records for listings: fictitious-delivered records
	// whose every order has been shipped out are suppressed.
	GetVisible(ctx context.Context) ([]*etsupply.HangingRecord, error)

	// GetActiveNotFictitious returns records not yet marked fictitious
	// delivered, for the reconciliation auto-promotion pass.
	GetActiveNotFictitious(ctx context.Context) ([]*etsupply.HangingRecord, error)

	// UpdateOrderData overwrites the stored snapshot of one supply.
	UpdateOrderData(ctx context.Context, supplyID string, snapshot etsupply.OrderSnapshot) error

	// AppendChangesLog appends reconciliation deltas to the supply's log.
	AppendChangesLog(ctx context.Context, supplyID string, changes []etsupply.ChangeEntry) error

	// AppendShippedOrders records orders fictitiously shipped out of the supply.
	AppendShippedOrders(ctx context.Context, supplyID string, shipped []etsupply.ShippedOrder) error

	// MarkFictitiousDelivered sets the one-way fictitious delivery flag.
	MarkFictitiousDelivered(ctx context.Context, supplyID, operator string, at time.Time) error

	// Delete removes a tracked record entirely (empty-supply cleanup only).
	Delete(ctx context.Context, supplyID string) error

	// CleanupOldChanges drops change-log entries older than the cutoff from
	// every record and reports how many entries were removed.
	CleanupOldChanges(ctx context.Context, cutoff time.Time) (int64, error)

	// GetStatistics aggregates counters over the whole table.
	GetStatistics(ctx context.Context) (*Statistics, error)
}
