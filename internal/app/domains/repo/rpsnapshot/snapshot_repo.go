package rpsnapshot

import (
	"context"
	"time"
)

// OrderDetails is the locally mirrored view of one marketplace order, as the
// ERP payload and shipment aggregation need it.
type OrderDetails struct {
	OrderID        int64
	NMID           int64
	ConvertedPrice int64
	Account        string
	SupplierStatus string
	WBStatus       string
	CreatedAt      time.Time
}

// SnapshotRepository reads the periodically synced mirror of marketplace
// order data. The sync that fills the table lives outside this service; only
// the latest row per order id is ever relevant here.
type SnapshotRepository interface {
	// GetLatestByIDs returns the newest mirrored row per order id. Orders
	// never synced are simply absent from the result.
	GetLatestByIDs(ctx context.Context, orderIDs []int64) (map[int64]OrderDetails, error)
}
