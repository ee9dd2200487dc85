// Package gatewaytest provides a configurable in-memory Marketplace for
// service and module tests.
package gatewaytest

import (
	"context"
	"fmt"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/gateway"
)

// Fake implements gateway.Marketplace through overridable function fields.
// Unset fields answer with empty success values.
type Fake struct {
	CreateSupplyFn     func(ctx context.Context, account, name string) (string, error)
	AddOrderFn         func(ctx context.Context, account, supplyID string, orderID int64) error
	DeliverSupplyFn    func(ctx context.Context, account, supplyID string) error
	DeleteSupplyFn     func(ctx context.Context, account, supplyID string) error
	GetSupplyOrdersFn  func(ctx context.Context, account, supplyID string) ([]gateway.SupplyOrder, error)
	GetSupplyInfoFn    func(ctx context.Context, account, supplyID string) (*gateway.SupplyInfo, error)
	ListSuppliesFn     func(ctx context.Context, account string) ([]gateway.SupplyInfo, error)
	GetOrdersFn        func(ctx context.Context, account string) ([]gateway.SupplyOrder, error)
	GetOrderStatusesFn func(ctx context.Context, account string, orderIDs []int64) (map[int64]etorder.StatusPair, error)
	GetStickersFn      func(ctx context.Context, account, supplyID string, orderIDs []int64) (map[int64]gateway.Sticker, error)

	createCount int
}

var _ gateway.Marketplace = (*Fake)(nil)

func (f *Fake) CreateSupply(ctx context.Context, account, name string) (string, error) {
	if f.CreateSupplyFn != nil {
		return f.CreateSupplyFn(ctx, account, name)
	}
	f.createCount++
	return fmt.Sprintf("WB-GI-%d", f.createCount), nil
}

func (f *Fake) AddOrderToSupply(ctx context.Context, account, supplyID string, orderID int64) error {
	if f.AddOrderFn != nil {
		return f.AddOrderFn(ctx, account, supplyID, orderID)
	}
	return nil
}

func (f *Fake) DeliverSupply(ctx context.Context, account, supplyID string) error {
	if f.DeliverSupplyFn != nil {
		return f.DeliverSupplyFn(ctx, account, supplyID)
	}
	return nil
}

func (f *Fake) DeleteSupply(ctx context.Context, account, supplyID string) error {
	if f.DeleteSupplyFn != nil {
		return f.DeleteSupplyFn(ctx, account, supplyID)
	}
	return nil
}

func (f *Fake) GetSupplyOrders(ctx context.Context, account, supplyID string) ([]gateway.SupplyOrder, error) {
	if f.GetSupplyOrdersFn != nil {
		return f.GetSupplyOrdersFn(ctx, account, supplyID)
	}
	return nil, nil
}

func (f *Fake) GetSupplyInfo(ctx context.Context, account, supplyID string) (*gateway.SupplyInfo, error) {
	if f.GetSupplyInfoFn != nil {
		return f.GetSupplyInfoFn(ctx, account, supplyID)
	}
	return &gateway.SupplyInfo{ID: supplyID}, nil
}

func (f *Fake) ListSupplies(ctx context.Context, account string) ([]gateway.SupplyInfo, error) {
	if f.ListSuppliesFn != nil {
		return f.ListSuppliesFn(ctx, account)
	}
	return nil, nil
}

func (f *Fake) GetOrders(ctx context.Context, account string) ([]gateway.SupplyOrder, error) {
	if f.GetOrdersFn != nil {
		return f.GetOrdersFn(ctx, account)
	}
	return nil, nil
}

func (f *Fake) GetOrderStatuses(ctx context.Context, account string, orderIDs []int64) (map[int64]etorder.StatusPair, error) {
	if f.GetOrderStatusesFn != nil {
		return f.GetOrderStatusesFn(ctx, account, orderIDs)
	}
	pairs := make(map[int64]etorder.StatusPair, len(orderIDs))
	for _, id := range orderIDs {
		pairs[id] = etorder.StatusPair{SupplierStatus: "new", WBStatus: "waiting"}
	}
	return pairs, nil
}

func (f *Fake) GetStickers(ctx context.Context, account, supplyID string, orderIDs []int64) (map[int64]gateway.Sticker, error) {
	if f.GetStickersFn != nil {
		return f.GetStickersFn(ctx, account, supplyID, orderIDs)
	}
	stickers := make(map[int64]gateway.Sticker, len(orderIDs))
	for _, id := range orderIDs {
		stickers[id] = gateway.Sticker{OrderID: id, File: "cGVw"}
	}
	return stickers, nil
}
