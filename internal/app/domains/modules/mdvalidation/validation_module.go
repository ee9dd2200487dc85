package mdvalidation

import (
	"context"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/gateway"
	"wbhub/internal/app/pkg/logger"
)

// ValidationModule classifies orders against the two eligibility policies.
//
// Move eligibility is a blocklist: anything not already delivered and not
// canceled may move, unknown statuses included. Shipment eligibility is an
// allowlist: only complete+waiting ships, unknown statuses excluded. The
// asymmetry is intentional: a wrongly blocked move is a retry, a wrongly
// shipped order is a business incident.
type ValidationModule struct {
	marketplace gateway.Marketplace
	log         logger.Logger
}

// NewValidationModule creates the validation module.
func NewValidationModule(marketplace gateway.Marketplace, log logger.Logger) *ValidationModule {
	return &ValidationModule{marketplace: marketplace, log: log}
}

// FetchStatuses pulls current status pairs for one account's orders. When the
// lookup fails the whole batch degrades to error placeholders instead of
// failing the caller: every order then classifies as blocked, nothing moves.
func (m *ValidationModule) FetchStatuses(ctx context.Context, account string, orderIDs []int64) map[int64]etorder.StatusPair {
	pairs := make(map[int64]etorder.StatusPair, len(orderIDs))
	if len(orderIDs) == 0 {
		return pairs
	}

	fetched, err := m.marketplace.GetOrderStatuses(ctx, account, orderIDs)
	if err != nil {
		m.log.Errorf(ctx, "status lookup failed for account %s, blocking %d orders: %v", account, len(orderIDs), err)
		for _, id := range orderIDs {
			pairs[id] = etorder.ErrorPair()
		}
		return pairs
	}

	for _, id := range orderIDs {
		pair, ok := fetched[id]
		if !ok {
			// missing from the response degrades the same way as a failed call
			pair = etorder.ErrorPair()
		}
		pairs[id] = pair
	}
	return pairs
}

// MoveEligible applies the blocklist policy for moving between supplies.
func (m *ValidationModule) MoveEligible(pair etorder.StatusPair) bool {
	if pair.SupplierStatus == etorder.SupplierStatusError {
		return false
	}
	return pair.SupplierStatus != etorder.SupplierStatusComplete &&
		pair.SupplierStatus != etorder.SupplierStatusCancel
}

// ShipmentEligible applies the allowlist policy for fictitious shipment.
func (m *ValidationModule) ShipmentEligible(pair etorder.StatusPair) bool {
	return pair.SupplierStatus == etorder.SupplierStatusComplete &&
		pair.WBStatus == etorder.WBStatusWaiting
}

// SplitForMove partitions orders into movable ids and blocked entries keyed
// by the specific blocked status to record.
func (m *ValidationModule) SplitForMove(orderIDs []int64, pairs map[int64]etorder.StatusPair) (movable []int64, blocked map[int64]etorder.OrderStatus) {
	blocked = make(map[int64]etorder.OrderStatus)
	for _, id := range orderIDs {
		pair := pairs[id]
		if m.MoveEligible(pair) {
			movable = append(movable, id)
			continue
		}
		blocked[id] = etorder.BlockReason(pair)
	}
	return movable, blocked
}
