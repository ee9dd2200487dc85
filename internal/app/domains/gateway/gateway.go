package gateway

import (
	"context"
	"time"

	"wbhub/internal/app/domains/entity/etorder"
)

// SupplyOrder is one raw marketplace order as reported inside a supply or the
// account-wide order list.
type SupplyOrder struct {
	ID             int64
	Article        string
	NMID           int64
	Price          int64
	ConvertedPrice int64
	CreatedAt      time.Time
}

// SupplyInfo is the marketplace-side supply header.
type SupplyInfo struct {
	ID        string
	Name      string
	Done      bool
	CreatedAt time.Time
}

// Sticker is one order label returned by the marketplace.
type Sticker struct {
	OrderID int64
	File    string // base64 PNG
	PartA   int64
	PartB   int64
	Barcode string
}

// Marketplace is the thin client over the remote supply/order endpoints.
// Implementations batch internally (statuses ≤1000 per call, stickers ≤99)
// and retry transient failures with bounded backoff; errors returned here are
// already retry-exhausted.
type Marketplace interface {
	// CreateSupply creates a named supply and returns its marketplace id.
	CreateSupply(ctx context.Context, account, name string) (string, error)

	// AddOrderToSupply moves one order into the supply. The marketplace is
	// the arbiter of membership: concurrent movers race here and one loses.
	AddOrderToSupply(ctx context.Context, account, supplyID string, orderID int64) error

	// DeliverSupply switches the supply to delivery (done=true).
	DeliverSupply(ctx context.Context, account, supplyID string) error

	// DeleteSupply removes an empty supply.
	DeleteSupply(ctx context.Context, account, supplyID string) error

	// GetSupplyOrders returns the current order set of a supply.
	GetSupplyOrders(ctx context.Context, account, supplyID string) ([]SupplyOrder, error)

	// GetSupplyInfo returns the supply header.
	GetSupplyInfo(ctx context.Context, account, supplyID string) (*SupplyInfo, error)

	// ListSupplies returns every supply of the account, paginated internally.
	ListSupplies(ctx context.Context, account string) ([]SupplyInfo, error)

	// GetOrders returns the full account order list, paginated internally.
	GetOrders(ctx context.Context, account string) ([]SupplyOrder, error)

	// GetOrderStatuses returns the (supplierStatus, wbStatus) pair per order.
	GetOrderStatuses(ctx context.Context, account string, orderIDs []int64) (map[int64]etorder.StatusPair, error)

	// GetStickers returns labels for the given orders. The result may be
	// partial; callers must check which ids actually came back.
	GetStickers(ctx context.Context, account, supplyID string, orderIDs []int64) (map[int64]Sticker, error)
}
