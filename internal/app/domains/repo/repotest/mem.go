// Package repotest provides in-memory repository implementations for
// service tests.
package repotest

import (
	"context"
	"sync"
	"time"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/entity/etsupply"
	"wbhub/internal/app/domains/repo/rphanging"
	"wbhub/internal/app/domains/repo/rpoperation"
	"wbhub/internal/app/domains/repo/rpsnapshot"

	"gorm.io/gorm"
)

// MemStatusLog is an in-memory StatusLogRepository with the same duplicate
// suppression the Postgres implementation gets from ON CONFLICT DO NOTHING.
type MemStatusLog struct {
	mu      sync.Mutex
	entries []etorder.StatusLogEntry
}

func (m *MemStatusLog) InsertBatch(_ context.Context, entries []etorder.StatusLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		dup := false
		for _, have := range m.entries {
			if have.OrderID == e.OrderID && have.Status == e.Status && have.SupplyID == e.SupplyID && have.Account == e.Account {
				dup = true
				break
			}
		}
		if !dup {
			m.entries = append(m.entries, e)
		}
	}
	return nil
}

func (m *MemStatusLog) GetOrderIDsBySupplies(_ context.Context, supplyIDs []string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]struct{}, len(supplyIDs))
	for _, id := range supplyIDs {
		want[id] = struct{}{}
	}
	seen := make(map[int64]struct{})
	var out []int64
	for _, e := range m.entries {
		if _, ok := want[e.SupplyID]; !ok {
			continue
		}
		if _, ok := seen[e.OrderID]; ok {
			continue
		}
		seen[e.OrderID] = struct{}{}
		out = append(out, e.OrderID)
	}
	return out, nil
}

func (m *MemStatusLog) GetBySupply(_ context.Context, supplyID string) ([]etorder.StatusLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []etorder.StatusLogEntry
	for _, e := range m.entries {
		if e.SupplyID == supplyID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Statuses returns every status recorded for the order, in insertion order.
func (m *MemStatusLog) Statuses(orderID int64) []etorder.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []etorder.OrderStatus
	for _, e := range m.entries {
		if e.OrderID == orderID {
			out = append(out, e.Status)
		}
	}
	return out
}

// MemHanging is an in-memory HangingRepository.
type MemHanging struct {
	mu      sync.Mutex
	records map[string]*etsupply.HangingRecord
}

func NewMemHanging() *MemHanging {
	return &MemHanging{records: make(map[string]*etsupply.HangingRecord)}
}

func (m *MemHanging) Save(_ context.Context, record *etsupply.HangingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *record
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	m.records[record.SupplyID] = &clone
	return nil
}

func (m *MemHanging) GetByID(_ context.Context, supplyID string) (*etsupply.HangingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[supplyID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

func (m *MemHanging) GetAll(_ context.Context) ([]*etsupply.HangingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*etsupply.HangingRecord, 0, len(m.records))
	for _, rec := range m.records {
		clone := *rec
		out = append(out, &clone)
	}
	return out, nil
}

func (m *MemHanging) GetVisible(ctx context.Context) ([]*etsupply.HangingRecord, error) {
	all, _ := m.GetAll(ctx)
	var out []*etsupply.HangingRecord
	for _, rec := range all {
		if rec.IsFictitiousDelivered && rec.FullyProcessed() {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemHanging) GetActiveNotFictitious(ctx context.Context) ([]*etsupply.HangingRecord, error) {
	all, _ := m.GetAll(ctx)
	var out []*etsupply.HangingRecord
	for _, rec := range all {
		if !rec.IsFictitiousDelivered {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MemHanging) UpdateOrderData(_ context.Context, supplyID string, snapshot etsupply.OrderSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[supplyID]; ok {
		rec.OrderData = snapshot
	}
	return nil
}

func (m *MemHanging) AppendChangesLog(_ context.Context, supplyID string, changes []etsupply.ChangeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[supplyID]; ok {
		rec.ChangesLog = append(rec.ChangesLog, changes...)
	}
	return nil
}

func (m *MemHanging) AppendShippedOrders(_ context.Context, supplyID string, shipped []etsupply.ShippedOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[supplyID]; ok {
		rec.ShippedOrders = append(rec.ShippedOrders, shipped...)
	}
	return nil
}

func (m *MemHanging) MarkFictitiousDelivered(_ context.Context, supplyID, operator string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[supplyID]; ok {
		rec.IsFictitiousDelivered = true
		rec.FictitiousDeliveredAt = &at
		rec.FictitiousDeliveryOperator = operator
	}
	return nil
}

func (m *MemHanging) Delete(_ context.Context, supplyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, supplyID)
	return nil
}

func (m *MemHanging) CleanupOldChanges(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for _, rec := range m.records {
		kept := rec.ChangesLog[:0]
		for _, c := range rec.ChangesLog {
			if c.Timestamp.After(cutoff) {
				kept = append(kept, c)
			} else {
				removed++
			}
		}
		rec.ChangesLog = kept
	}
	return removed, nil
}

func (m *MemHanging) GetStatistics(_ context.Context) (*rphanging.Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &rphanging.Statistics{TotalSupplies: int64(len(m.records))}
	for _, rec := range m.records {
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

// MemFinal is an in-memory FinalRepository keeping the latest record per
// account.
type MemFinal struct {
	mu      sync.Mutex
	records map[string]*etsupply.FinalRecord
}

func (m *MemFinal) Save(_ context.Context, record *etsupply.FinalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]*etsupply.FinalRecord)
	}
	clone := *record
	m.records[record.Account] = &clone
	return nil
}

func (m *MemFinal) GetLatest(_ context.Context, account string) (*etsupply.FinalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[account]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

// MemOperation is an in-memory OperationRepository.
type MemOperation struct {
	mu  sync.Mutex
	ops map[string]*rpoperation.Operation
}

func (m *MemOperation) SaveStart(_ context.Context, operationID, operator string, request []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ops == nil {
		m.ops = make(map[string]*rpoperation.Operation)
	}
	if _, ok := m.ops[operationID]; ok {
		return false, nil
	}
	m.ops[operationID] = &rpoperation.Operation{
		OperationID: operationID,
		Operator:    operator,
		Request:     request,
		Status:      rpoperation.StatusProcessing,
		CreatedAt:   time.Now(),
	}
	return true, nil
}

func (m *MemOperation) SaveSuccess(_ context.Context, operationID string, response []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op, ok := m.ops[operationID]; ok {
		now := time.Now()
		op.Status = rpoperation.StatusSuccess
		op.Response = response
		op.CompletedAt = &now
	}
	return nil
}

func (m *MemOperation) SaveError(_ context.Context, operationID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op, ok := m.ops[operationID]; ok {
		now := time.Now()
		op.Status = rpoperation.StatusFailed
		op.ErrorMessage = message
		op.CompletedAt = &now
	}
	return nil
}

func (m *MemOperation) UpdateResponse(_ context.Context, operationID string, response []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op, ok := m.ops[operationID]; ok {
		op.Response = response
	}
	return nil
}

func (m *MemOperation) GetByID(_ context.Context, operationID string) (*rpoperation.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.ops[operationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *op
	return &clone, nil
}

func (m *MemOperation) CleanupOld(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, op := range m.ops {
		if op.Status != rpoperation.StatusProcessing && op.CreatedAt.Before(cutoff) {
			delete(m.ops, id)
			removed++
		}
	}
	return removed, nil
}

// MemSnapshot is a SnapshotRepository backed by a fixed map.
type MemSnapshot struct {
	Details map[int64]rpsnapshot.OrderDetails
}

func (m MemSnapshot) GetLatestByIDs(_ context.Context, orderIDs []int64) (map[int64]rpsnapshot.OrderDetails, error) {
	out := make(map[int64]rpsnapshot.OrderDetails, len(orderIDs))
	for _, id := range orderIDs {
		if d, ok := m.Details[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

// MemEmptyTracker counts empty observations per supply without TTL expiry.
type MemEmptyTracker struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (m *MemEmptyTracker) MarkEmptySeen(_ context.Context, supplyID string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int64)
	}
	m.counts[supplyID]++
	return m.counts[supplyID], nil
}

func (m *MemEmptyTracker) ClearEmptySeen(_ context.Context, supplyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, supplyID)
	return nil
}

// Count reports the current consecutive-empty counter for a supply.
func (m *MemEmptyTracker) Count(supplyID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[supplyID]
}
