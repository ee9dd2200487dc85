package wbclient

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/gateway"
)

const (
	// statusBatchSize is the marketplace cap on one status lookup call.
	statusBatchSize = 1000
	// stickerBatchSize is the marketplace cap on one sticker call.
	stickerBatchSize = 99
	pageLimit        = 1000
)

// Marketplace implements gateway.Marketplace over the Wildberries API v3.
type Marketplace struct {
	client *Client
}

// NewMarketplace wraps the transport into the gateway implementation.
func NewMarketplace(client *Client) *Marketplace {
	return &Marketplace{client: client}
}

type rawSupply struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"createdAt"`
}

type rawOrder struct {
	ID             int64  `json:"id"`
	Article        string `json:"article"`
	NMID           int64  `json:"nmId"`
	Price          int64  `json:"price"`
	ConvertedPrice int64  `json:"convertedPrice"`
	CreatedAt      string `json:"createdAt"`
}

func parseWBTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r rawOrder) toGateway() gateway.SupplyOrder {
	return gateway.SupplyOrder{
		ID:             r.ID,
		Article:        r.Article,
		NMID:           r.NMID,
		Price:          r.Price,
		ConvertedPrice: r.ConvertedPrice,
		CreatedAt:      parseWBTime(r.CreatedAt),
	}
}

func (r rawSupply) toGateway() gateway.SupplyInfo {
	return gateway.SupplyInfo{
		ID:        r.ID,
		Name:      r.Name,
		Done:      r.Done,
		CreatedAt: parseWBTime(r.CreatedAt),
	}
}

// CreateSupply creates a named supply and returns its marketplace id.
func (m *Marketplace) CreateSupply(ctx context.Context, account, name string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	body := map[string]string{"name": name}
	if err := m.client.do(ctx, account, http.MethodPost, "/supplies", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// AddOrderToSupply moves one order into the supply.
func (m *Marketplace) AddOrderToSupply(ctx context.Context, account, supplyID string, orderID int64) error {
	path := "/supplies/" + supplyID + "/orders/" + strconv.FormatInt(orderID, 10)
	return m.client.do(ctx, account, http.MethodPatch, path, nil, nil, nil)
}

// DeliverSupply switches the supply to delivery.
func (m *Marketplace) DeliverSupply(ctx context.Context, account, supplyID string) error {
	return m.client.do(ctx, account, http.MethodPatch, "/supplies/"+supplyID+"/deliver", nil, nil, nil)
}

// DeleteSupply removes an empty supply.
func (m *Marketplace) DeleteSupply(ctx context.Context, account, supplyID string) error {
	return m.client.do(ctx, account, http.MethodDelete, "/supplies/"+supplyID, nil, nil, nil)
}

// GetSupplyOrders returns the current order set of a supply.
func (m *Marketplace) GetSupplyOrders(ctx context.Context, account, supplyID string) ([]gateway.SupplyOrder, error) {
	var resp struct {
		Orders []rawOrder `json:"orders"`
	}
	if err := m.client.do(ctx, account, http.MethodGet, "/supplies/"+supplyID+"/orders", nil, nil, &resp); err != nil {
		return nil, err
	}
	orders := make([]gateway.SupplyOrder, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		orders = append(orders, o.toGateway())
	}
	return orders, nil
}

// GetSupplyInfo returns the supply header.
func (m *Marketplace) GetSupplyInfo(ctx context.Context, account, supplyID string) (*gateway.SupplyInfo, error) {
	var resp rawSupply
	if err := m.client.do(ctx, account, http.MethodGet, "/supplies/"+supplyID, nil, nil, &resp); err != nil {
		return nil, err
	}
	info := resp.toGateway()
	return &info, nil
}

// ListSupplies returns every supply of the account, following the opaque
// cursor until exhausted.
func (m *Marketplace) ListSupplies(ctx context.Context, account string) ([]gateway.SupplyInfo, error) {
	var supplies []gateway.SupplyInfo
	next := int64(0)
	for {
		var resp struct {
			Supplies []rawSupply `json:"supplies"`
			Next     int64       `json:"next"`
		}
		query := map[string]string{
			"limit": strconv.Itoa(pageLimit),
			"next":  strconv.FormatInt(next, 10),
		}
		if err := m.client.do(ctx, account, http.MethodGet, "/supplies", query, nil, &resp); err != nil {
			return nil, err
		}
		for _, s := range resp.Supplies {
			supplies = append(supplies, s.toGateway())
		}
		if resp.Next == 0 {
			break
		}
		next = resp.Next
	}
	return supplies, nil
}

// GetOrders returns the full account order list, following the cursor.
func (m *Marketplace) GetOrders(ctx context.Context, account string) ([]gateway.SupplyOrder, error) {
	var orders []gateway.SupplyOrder
	next := int64(0)
	for {
		var resp struct {
			Orders []rawOrder `json:"orders"`
			Next   int64      `json:"next"`
		}
		query := map[string]string{
			"limit": strconv.Itoa(pageLimit),
			"next":  strconv.FormatInt(next, 10),
		}
		if err := m.client.do(ctx, account, http.MethodGet, "/orders", query, nil, &resp); err != nil {
			return nil, err
		}
		for _, o := range resp.Orders {
			orders = append(orders, o.toGateway())
		}
		if resp.Next == 0 {
			break
		}
		next = resp.Next
	}
	return orders, nil
}

// GetOrderStatuses returns the status pair per order, batching by the
// marketplace cap.
func (m *Marketplace) GetOrderStatuses(ctx context.Context, account string, orderIDs []int64) (map[int64]etorder.StatusPair, error) {
	result := make(map[int64]etorder.StatusPair, len(orderIDs))
	for start := 0; start < len(orderIDs); start += statusBatchSize {
		end := start + statusBatchSize
		if end > len(orderIDs) {
			end = len(orderIDs)
		}
		var resp struct {
			Orders []struct {
				ID             int64  `json:"id"`
				SupplierStatus string `json:"supplierStatus"`
				WBStatus       string `json:"wbStatus"`
			} `json:"orders"`
		}
		body := map[string][]int64{"orders": orderIDs[start:end]}
		if err := m.client.do(ctx, account, http.MethodPost, "/orders/status", nil, body, &resp); err != nil {
			return nil, err
		}
		for _, o := range resp.Orders {
			result[o.ID] = etorder.StatusPair{SupplierStatus: o.SupplierStatus, WBStatus: o.WBStatus}
		}
	}
	return result, nil
}

// GetStickers returns labels for the given orders in batches of the
// marketplace cap. The result may be partial: orders the marketplace did not
// return a sticker for are simply absent.
func (m *Marketplace) GetStickers(ctx context.Context, account, supplyID string, orderIDs []int64) (map[int64]gateway.Sticker, error) {
	query := map[string]string{"type": "png", "width": "58", "height": "40"}
	result := make(map[int64]gateway.Sticker, len(orderIDs))
	for start := 0; start < len(orderIDs); start += stickerBatchSize {
		end := start + stickerBatchSize
		if end > len(orderIDs) {
			end = len(orderIDs)
		}
		var resp struct {
			Stickers []struct {
				OrderID int64  `json:"orderId"`
				File    string `json:"file"`
				PartA   int64  `json:"partA"`
				PartB   int64  `json:"partB"`
				Barcode string `json:"barcode"`
			} `json:"stickers"`
		}
		body := map[string][]int64{"orders": orderIDs[start:end]}
		if err := m.client.do(ctx, account, http.MethodPost, "/orders/stickers", query, body, &resp); err != nil {
			return nil, err
		}
		for _, s := range resp.Stickers {
			result[s.OrderID] = gateway.Sticker{
				OrderID: s.OrderID,
				File:    s.File,
				PartA:   s.PartA,
				PartB:   s.PartB,
				Barcode: s.Barcode,
			}
		}
	}
	return result, nil
}
