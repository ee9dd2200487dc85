package svreconcile

import (
	"context"
	"time"

	"wbhub/internal/app/domains/entity/etsupply"
	"wbhub/internal/app/domains/gateway"
	"wbhub/internal/app/domains/repo/rphanging"
	"wbhub/internal/app/domains/repo/rpoperation"
	"wbhub/internal/app/pkg/logger"
	"wbhub/internal/app/pkg/wildcode"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// AutoSystemOperator tags changes made by reconciliation itself rather than
// a human operator.
const AutoSystemOperator = "auto_system"

// EmptyTracker counts consecutive empty observations per supply. Implemented
// by the Redis dedup client in production.
type EmptyTracker interface {
	MarkEmptySeen(ctx context.Context, supplyID string, ttl time.Duration) (int64, error)
	ClearEmptySeen(ctx context.Context, supplyID string) error
}

// emptySeenThreshold: a supply must look empty on this many consecutive
// passes before cleanup touches it, to ride out transient marketplace
// reporting gaps.
const emptySeenThreshold = 2

// Reconciler periodically re-derives the live order set of every hanging
// supply, logs the deltas, promotes externally delivered supplies to
// fictitious and cleans up persistently empty ones.
type Reconciler struct {
	marketplace gateway.Marketplace
	hanging     rphanging.HangingRepository
	operation   rpoperation.OperationRepository
	empties     EmptyTracker

	interval      time.Duration
	retentionDays int
	closing       atomic.Bool
	log           logger.Logger
}

// NewReconciler creates the reconciliation task.
func NewReconciler(
	marketplace gateway.Marketplace,
	hanging rphanging.HangingRepository,
	operation rpoperation.OperationRepository,
	empties EmptyTracker,
	interval time.Duration,
	retentionDays int,
	log logger.Logger,
) *Reconciler {
	return &Reconciler{
		marketplace:   marketplace,
		hanging:       hanging,
		operation:     operation,
		empties:       empties,
		interval:      interval,
		retentionDays: retentionDays,
		log:           log,
	}
}

// Run loops until the context is canceled or Stop is called. The pass in
// flight when shutdown starts is allowed to finish.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Infof(ctx, "reconciler started, interval=%s", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.log.Infof(ctx, "reconciler stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			if r.closing.Load() {
				r.log.Infof(ctx, "reconciler closing, skipping pass")
				return
			}
			r.RunOnce(ctx)
		}
	}
}

// Stop asks the loop to exit after the current pass.
func (r *Reconciler) Stop() {
	r.closing.Store(true)
}

// RunOnce executes one full reconciliation pass. Every sub-pass tolerates
// per-record failures: one corrupted record never aborts the rest.
func (r *Reconciler) RunOnce(ctx context.Context) {
	session := uuid.NewString()
	ctx = logger.WithSyncSession(ctx, session)
	r.log.Infof(ctx, "reconciliation pass started")

	records, err := r.hanging.GetActiveNotFictitious(ctx)
	if err != nil {
		r.log.Errorf(ctx, "load hanging records: %v", err)
		return
	}

	liveSets := make(map[string][]gateway.SupplyOrder, len(records))
	for _, rec := range records {
		live, err := r.syncRecord(ctx, rec, session)
		if err != nil {
			r.log.Errorf(ctx, "sync supply %s failed: %v", rec.SupplyID, err)
			continue
		}
		liveSets[rec.SupplyID] = live
	}

	r.autoPromote(ctx, records, liveSets)
	r.cleanupEmpty(ctx, records, liveSets)
	r.cleanupRetention(ctx)

	r.log.Infof(ctx, "reconciliation pass finished, records=%d", len(records))
}

// syncRecord diffs one record's live order set against the stored snapshot,
// appends the deltas and overwrites the snapshot. An empty live set is valid
// and meaningful: the supply was drained externally.
func (r *Reconciler) syncRecord(ctx context.Context, rec *etsupply.HangingRecord, session string) ([]gateway.SupplyOrder, error) {
	live, err := r.marketplace.GetSupplyOrders(ctx, rec.Account, rec.SupplyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	known := make(map[int64]etsupply.SnapshotOrder, len(rec.OrderData.Orders))
	for _, o := range rec.OrderData.Orders {
		known[o.ID] = o
	}
	current := make(map[int64]etsupply.SnapshotOrder, len(live))
	fresh := make([]etsupply.SnapshotOrder, 0, len(live))
	for _, o := range live {
		snap := etsupply.SnapshotOrder{
			ID:        o.ID,
			Wild:      wildcode.Normalize(o.Article),
			NMID:      o.NMID,
			Price:     o.ConvertedPrice,
			CreatedAt: o.CreatedAt.Format(time.RFC3339),
		}
		current[o.ID] = snap
		fresh = append(fresh, snap)
	}

	var changes []etsupply.ChangeEntry
	for id, snap := range current {
		if _, ok := known[id]; !ok {
			changes = append(changes, etsupply.ChangeEntry{
				Timestamp:   now,
				ChangeType:  etsupply.ChangeAdded,
				OrderID:     id,
				OrderData:   snap,
				SyncSession: session,
			})
		}
	}
	for id, snap := range known {
		if _, ok := current[id]; !ok {
			changes = append(changes, etsupply.ChangeEntry{
				Timestamp:   now,
				ChangeType:  etsupply.ChangeRemoved,
				OrderID:     id,
				OrderData:   snap,
				SyncSession: session,
			})
		}
	}

	if len(changes) > 0 {
		if err := r.hanging.AppendChangesLog(ctx, rec.SupplyID, changes); err != nil {
			return nil, err
		}
		r.log.Infof(ctx, "supply %s: %d order changes", rec.SupplyID, len(changes))
	}

	snapshot := etsupply.OrderSnapshot{Orders: fresh, Source: rec.OrderData.Source}
	if err := r.hanging.UpdateOrderData(ctx, rec.SupplyID, snapshot); err != nil {
		return nil, err
	}
	return live, nil
}

// autoPromote flags hanging records the marketplace already moved into
// delivery without a fictitious-delivery call from here. Empty records are
// skipped: emptiness is for the cleanup pass, not a delivery signal.
func (r *Reconciler) autoPromote(ctx context.Context, records []*etsupply.HangingRecord, liveSets map[string][]gateway.SupplyOrder) {
	assembling := make(map[string]struct{})
	seen := make(map[string]struct{})
	for _, rec := range records {
		if _, ok := seen[rec.Account]; ok {
			continue
		}
		seen[rec.Account] = struct{}{}

		supplies, err := r.marketplace.ListSupplies(ctx, rec.Account)
		if err != nil {
			r.log.Errorf(ctx, "list supplies for account %s: %v", rec.Account, err)
			// lookup failure must not promote this account's records
			for _, other := range records {
				if other.Account == rec.Account {
					assembling[other.SupplyID] = struct{}{}
				}
			}
			continue
		}
		for _, s := range supplies {
			if !s.Done {
				assembling[s.ID] = struct{}{}
			}
		}
	}

	for _, rec := range records {
		live, synced := liveSets[rec.SupplyID]
		if !synced || len(live) == 0 {
			continue
		}
		if _, active := assembling[rec.SupplyID]; active {
			continue
		}

		err := r.hanging.MarkFictitiousDelivered(ctx, rec.SupplyID, AutoSystemOperator, time.Now())
		if err != nil {
			r.log.Errorf(ctx, "auto-promote supply %s: %v", rec.SupplyID, err)
			continue
		}
		r.log.Infof(ctx, "supply %s auto-promoted to fictitious delivered", rec.SupplyID)
	}
}

// cleanupEmpty deletes supplies observed empty on two consecutive passes,
// re-verifying against the live API right before deletion.
func (r *Reconciler) cleanupEmpty(ctx context.Context, records []*etsupply.HangingRecord, liveSets map[string][]gateway.SupplyOrder) {
	for _, rec := range records {
		live, synced := liveSets[rec.SupplyID]
		if !synced {
			continue
		}
		if len(live) > 0 {
			if err := r.empties.ClearEmptySeen(ctx, rec.SupplyID); err != nil {
				r.log.Warnf(ctx, "clear empty counter %s: %v", rec.SupplyID, err)
			}
			continue
		}

		count, err := r.empties.MarkEmptySeen(ctx, rec.SupplyID, 3*r.interval)
		if err != nil {
			r.log.Warnf(ctx, "mark empty counter %s: %v", rec.SupplyID, err)
			continue
		}
		if count < emptySeenThreshold {
			continue
		}

		// final live check right before the destructive step
		verify, err := r.marketplace.GetSupplyOrders(ctx, rec.Account, rec.SupplyID)
		if err != nil || len(verify) > 0 {
			continue
		}

		if err := r.marketplace.DeleteSupply(ctx, rec.Account, rec.SupplyID); err != nil {
			r.log.Errorf(ctx, "delete empty supply %s: %v", rec.SupplyID, err)
			continue
		}
		if err := r.hanging.Delete(ctx, rec.SupplyID); err != nil {
			r.log.Errorf(ctx, "delete hanging record %s: %v", rec.SupplyID, err)
			continue
		}
		if err := r.empties.ClearEmptySeen(ctx, rec.SupplyID); err != nil {
			r.log.Warnf(ctx, "clear empty counter %s: %v", rec.SupplyID, err)
		}
		r.log.Infof(ctx, "empty supply %s removed", rec.SupplyID)
	}
}

// cleanupRetention trims old change-log entries and finished operations.
func (r *Reconciler) cleanupRetention(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -r.retentionDays)

	removed, err := r.hanging.CleanupOldChanges(ctx, cutoff)
	if err != nil {
		r.log.Errorf(ctx, "changes-log retention cleanup: %v", err)
	} else if removed > 0 {
		r.log.Infof(ctx, "changes-log retention cleanup removed %d entries", removed)
	}

	deleted, err := r.operation.CleanupOld(ctx, cutoff)
	if err != nil {
		r.log.Errorf(ctx, "operation retention cleanup: %v", err)
	} else if deleted > 0 {
		r.log.Infof(ctx, "operation retention cleanup removed %d records", deleted)
	}
}
