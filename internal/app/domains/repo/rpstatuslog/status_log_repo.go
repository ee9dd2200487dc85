package rpstatuslog

import (
	"context"

	"wbhub/internal/app/domains/entity/etorder"
)

// StatusLogRepository is the append-only order lifecycle ledger.
// Implementation lives next to the interface, backed by Postgres.
type StatusLogRepository interface {
	// InsertBatch appends log entries, silently skipping duplicates of an
	// already recorded (order, status, supply, account) tuple.
	InsertBatch(ctx context.Context, entries []etorder.StatusLogEntry) error

	// GetOrderIDsBySupplies returns every order id ever logged against the
	// given supply ids.
	GetOrderIDsBySupplies(ctx context.Context, supplyIDs []string) ([]int64, error)

	// GetBySupply returns the log entries recorded for one supply, oldest first.
	GetBySupply(ctx context.Context, supplyID string) ([]etorder.StatusLogEntry, error)
}
