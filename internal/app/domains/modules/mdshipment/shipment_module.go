package mdshipment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wbhub/internal/app/pkg/logger"
)

// DeliveryTypeFBS tags rows shipped under the marketplace-fulfilled scheme.
const DeliveryTypeFBS = "ФБС"

// LogRow is one aggregated shipment fact: quantity of one article moved out
// of one supply.
type LogRow struct {
	Author       string `json:"author"`
	SupplyID     string `json:"supply_id"`
	ProductID    string `json:"product_id"`
	WarehouseID  int    `json:"warehouse_id"`
	DeliveryType string `json:"delivery_type"`
	Account      string `json:"account"`
	Quantity     int    `json:"quantity"`
}

// ShippedItem is the flat input aggregated into log rows.
type ShippedItem struct {
	SupplyID string
	Wild     string
	Account  string
}

// ShipmentModule talks to the internal warehouse service: shipment journal
// rows plus stock reservation adjustments.
type ShipmentModule struct {
	baseURL     string
	warehouseID int
	httpClient  *http.Client
	log         logger.Logger
}

// NewShipmentModule creates the shipment module.
func NewShipmentModule(baseURL string, warehouseID int, timeout time.Duration, log logger.Logger) *ShipmentModule {
	return &ShipmentModule{
		baseURL:     baseURL,
		warehouseID: warehouseID,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

// Aggregate folds shipped items into one row per (supply, article, account).
func (m *ShipmentModule) Aggregate(author string, items []ShippedItem) []LogRow {
	type rowKey struct {
		supply, wild, account string
	}

	counts := make(map[rowKey]int)
	order := make([]rowKey, 0)
	for _, item := range items {
		key := rowKey{supply: item.SupplyID, wild: item.Wild, account: item.Account}
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	rows := make([]LogRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, LogRow{
			Author:       author,
			SupplyID:     key.supply,
			ProductID:    key.wild,
			WarehouseID:  m.warehouseID,
			DeliveryType: DeliveryTypeFBS,
			Account:      key.account,
			Quantity:     counts[key],
		})
	}
	return rows
}

// SendLog posts shipment journal rows in one batch.
func (m *ShipmentModule) SendLog(ctx context.Context, rows []LogRow) error {
	if len(rows) == 0 {
		return nil
	}
	return m.post(ctx, "/shipment-of-goods/add-data", rows)
}

// ReleaseReservation frees reserved stock after orders physically left a
// supply.
func (m *ShipmentModule) ReleaseReservation(ctx context.Context, supplyID, productID string, quantityShipped int) error {
	body := map[string]interface{}{
		"supply_id":        supplyID,
		"product_id":       productID,
		"quantity_shipped": quantityShipped,
	}
	return m.post(ctx, "/reservation/release", body)
}

// MovementReservation books stock against a freshly created hanging supply
// while recording which supply it was drained from, so the reservation
// ledger stays traceable.
type MovementReservation struct {
	ProductID      string    `json:"product_id"`
	WarehouseID    int       `json:"warehouse_id"`
	Ordered        int       `json:"ordered"`
	Account        string    `json:"account"`
	SupplyID       string    `json:"supply_id"`
	MoveFromSupply string    `json:"move_from_supply"`
	QuantityToMove int       `json:"quantity_to_move"`
	ReserveDate    time.Time `json:"reserve_date"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// CreateReservationWithMovement books stock against a hanging supply that
// just received orders.
func (m *ShipmentModule) CreateReservationWithMovement(ctx context.Context, reservation MovementReservation) error {
	reservation.WarehouseID = m.warehouseID
	return m.post(ctx, "/reservation/create-with-movement", reservation)
}

func (m *ShipmentModule) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode shipment payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build shipment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shipment request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("shipment request %s: status %d: %s", path, resp.StatusCode, string(raw))
	}
	return nil
}
