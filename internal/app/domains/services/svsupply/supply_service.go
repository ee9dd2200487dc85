package svsupply

import (
	"context"
	"sort"
	"sync"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/gateway"
	"wbhub/internal/app/domains/modules/mderp"
	"wbhub/internal/app/domains/modules/mdselection"
	"wbhub/internal/app/domains/modules/mdshipment"
	"wbhub/internal/app/domains/modules/mdvalidation"
	"wbhub/internal/app/domains/repo/rpfinal"
	"wbhub/internal/app/domains/repo/rphanging"
	"wbhub/internal/app/domains/repo/rpoperation"
	"wbhub/internal/app/domains/repo/rpsnapshot"
	"wbhub/internal/app/domains/repo/rpstatuslog"
	"wbhub/internal/app/pkg/logger"
)

// SupplyService coordinates the supply lifecycle: candidate retrieval,
// status validation, target supply creation, marketplace moves, reservation
// bookkeeping, ERP notification and ledger logging.
type SupplyService struct {
	marketplace gateway.Marketplace
	validation  *mdvalidation.ValidationModule
	selection   *mdselection.SelectionModule
	erp         *mderp.ERPModule
	shipment    *mdshipment.ShipmentModule

	statusLog rpstatuslog.StatusLogRepository
	hanging   rphanging.HangingRepository
	final     rpfinal.FinalRepository
	operation rpoperation.OperationRepository
	snapshot  rpsnapshot.SnapshotRepository

	accounts []string
	log      logger.Logger
}

// NewSupplyService wires the orchestrator.
func NewSupplyService(
	marketplace gateway.Marketplace,
	validation *mdvalidation.ValidationModule,
	selection *mdselection.SelectionModule,
	erp *mderp.ERPModule,
	shipment *mdshipment.ShipmentModule,
	statusLog rpstatuslog.StatusLogRepository,
	hanging rphanging.HangingRepository,
	final rpfinal.FinalRepository,
	operation rpoperation.OperationRepository,
	snapshot rpsnapshot.SnapshotRepository,
	accounts []string,
	log logger.Logger,
) *SupplyService {
	return &SupplyService{
		marketplace: marketplace,
		validation:  validation,
		selection:   selection,
		erp:         erp,
		shipment:    shipment,
		statusLog:   statusLog,
		hanging:     hanging,
		final:       final,
		operation:   operation,
		snapshot:    snapshot,
		accounts:    accounts,
		log:         log,
	}
}

// AccountSupplies is one account's supply list, or the error that kept it
// from loading. Fan-out results never abort siblings.
type AccountSupplies struct {
	Account  string               `json:"account"`
	Supplies []gateway.SupplyInfo `json:"supplies"`
	Error    string               `json:"error,omitempty"`
}

// ListSupplies fans out over every configured account and gathers the supply
// lists; a failed account comes back as an error entry.
func (s *SupplyService) ListSupplies(ctx context.Context) []AccountSupplies {
	results := make([]AccountSupplies, len(s.accounts))

	var wg sync.WaitGroup
	for i, account := range s.accounts {
		wg.Add(1)
		go func(i int, account string) {
			defer wg.Done()
			supplies, err := s.marketplace.ListSupplies(ctx, account)
			if err != nil {
				s.log.Errorf(ctx, "list supplies failed for account %s: %v", account, err)
				results[i] = AccountSupplies{Account: account, Error: err.Error()}
				return
			}
			results[i] = AccountSupplies{Account: account, Supplies: supplies}
		}(i, account)
	}
	wg.Wait()

	return results
}

// SupplyRef addresses one supply on one account.
type SupplyRef struct {
	Account  string `json:"account" binding:"required"`
	SupplyID string `json:"supply_id" binding:"required"`
}

// DeleteOutcome is the per-supply result of a batch delete.
type DeleteOutcome struct {
	SupplyID string `json:"supply_id"`
	Account  string `json:"account"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// DeleteSupplies removes marketplace supplies one by one; every outcome is
// reported individually and a tracked hanging record is removed with it.
func (s *SupplyService) DeleteSupplies(ctx context.Context, refs []SupplyRef) []DeleteOutcome {
	outcomes := make([]DeleteOutcome, 0, len(refs))
	for _, ref := range refs {
		outcome := DeleteOutcome{SupplyID: ref.SupplyID, Account: ref.Account, Success: true}
		if err := s.marketplace.DeleteSupply(ctx, ref.Account, ref.SupplyID); err != nil {
			s.log.Errorf(ctx, "delete supply %s failed: %v", ref.SupplyID, err)
			outcome.Success = false
			outcome.Error = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}
		if err := s.hanging.Delete(ctx, ref.SupplyID); err != nil {
			s.log.Warnf(ctx, "delete hanging record %s failed: %v", ref.SupplyID, err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// DeliverOutcome is the per-supply result of a batch deliver.
type DeliverOutcome struct {
	SupplyID string `json:"supply_id"`
	Account  string `json:"account"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// DeliverSupplies switches marketplace supplies into delivery, fanning out
// per supply; one failure never cancels the rest.
func (s *SupplyService) DeliverSupplies(ctx context.Context, refs []SupplyRef) []DeliverOutcome {
	outcomes := make([]DeliverOutcome, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref SupplyRef) {
			defer wg.Done()
			outcome := DeliverOutcome{SupplyID: ref.SupplyID, Account: ref.Account, Success: true}
			if err := s.marketplace.DeliverSupply(ctx, ref.Account, ref.SupplyID); err != nil {
				s.log.Errorf(ctx, "deliver supply %s failed: %v", ref.SupplyID, err)
				outcome.Success = false
				outcome.Error = err.Error()
			}
			outcomes[i] = outcome
		}(i, ref)
	}
	wg.Wait()

	return outcomes
}

// DeliveredOrder is one order reported physically delivered.
type DeliveredOrder struct {
	OrderID  int64  `json:"order_id" binding:"required"`
	Account  string `json:"account" binding:"required"`
	SupplyID string `json:"supply_id"`
}

// LogDelivered appends DELIVERED facts to the ledger, only for the orders
// the request names. Ledger history per supply is checked first: orders the
// ledger knows but the request omits stay undelivered and are reported.
// Replays are harmless: the ledger ignores duplicate tuples.
func (s *SupplyService) LogDelivered(ctx context.Context, orders []DeliveredOrder, operator string) error {
	bySupply := make(map[string]map[int64]struct{})
	for _, o := range orders {
		if o.SupplyID == "" {
			continue
		}
		if bySupply[o.SupplyID] == nil {
			bySupply[o.SupplyID] = make(map[int64]struct{})
		}
		bySupply[o.SupplyID][o.OrderID] = struct{}{}
	}
	for supplyID, actual := range bySupply {
		known, err := s.statusLog.GetOrderIDsBySupplies(ctx, []string{supplyID})
		if err != nil {
			s.log.Warnf(ctx, "ledger lookup for supply %s failed, delivery left unreconciled: %v", supplyID, err)
			continue
		}
		missing := make([]int64, 0)
		for _, id := range known {
			if _, ok := actual[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
			s.log.Warnf(ctx, "supply %s: ledger has %d orders, request has %d; not marked delivered: %v",
				supplyID, len(known), len(actual), missing)
		}
	}

	entries := make([]etorder.StatusLogEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, etorder.StatusLogEntry{
			OrderID:  o.OrderID,
			Status:   etorder.StatusDelivered,
			SupplyID: o.SupplyID,
			Account:  o.Account,
			Operator: operator,
		})
	}
	return s.statusLog.InsertBatch(ctx, entries)
}

// GetOperation returns one tracked operation record.
func (s *SupplyService) GetOperation(ctx context.Context, operationID string) (*rpoperation.Operation, error) {
	return s.operation.GetByID(ctx, operationID)
}

// GetHangingList returns hanging records for listings plus table statistics.
func (s *SupplyService) GetHangingList(ctx context.Context) ([]*HangingView, *rphanging.Statistics, error) {
	records, err := s.hanging.GetVisible(ctx)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.hanging.GetStatistics(ctx)
	if err != nil {
		return nil, nil, err
	}

	views := make([]*HangingView, 0, len(records))
	for _, rec := range records {
		views = append(views, newHangingView(rec))
	}
	return views, stats, nil
}

// GetHangingByID returns one hanging record in listing form.
func (s *SupplyService) GetHangingByID(ctx context.Context, supplyID string) (*HangingView, error) {
	rec, err := s.hanging.GetByID(ctx, supplyID)
	if err != nil {
		return nil, err
	}
	return newHangingView(rec), nil
}
