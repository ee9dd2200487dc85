package svsupply

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/entity/etsupply"
	"wbhub/internal/app/domains/gateway"
	"wbhub/internal/app/domains/modules/mderp"
	"wbhub/internal/app/domains/modules/mdshipment"
	"wbhub/internal/app/pkg/errorx"
	"wbhub/internal/app/pkg/logger"
	"wbhub/internal/app/pkg/wildcode"
)

// MoveSupplySource names one source supply and the order ids to consider
// from it.
type MoveSupplySource struct {
	Account  string  `json:"account" binding:"required"`
	SupplyID string  `json:"supply_id" binding:"required"`
	OrderIDs []int64 `json:"order_ids" binding:"required"`
}

// MoveProductGroup is the per-article slice of a move request.
type MoveProductGroup struct {
	Supplies    []MoveSupplySource `json:"supplies" binding:"required,dive"`
	RemoveCount int                `json:"remove_count"`
}

// MoveRequest asks for orders to leave their technical supplies toward the
// final supply or fresh hanging supplies.
type MoveRequest struct {
	OperationID string                      `json:"operation_id"`
	Orders      map[string]MoveProductGroup `json:"orders" binding:"required"`
	MoveToFinal bool                        `json:"move_to_final"`
	Operator    string                      `json:"operator"`
}

// MoveResult is the counts-only summary returned to clients; per-order
// detail stays in the ledger.
type MoveResult struct {
	Success                bool     `json:"success"`
	RemovedOrderIDs        []int64  `json:"removed_order_ids"`
	ProcessedSupplies      []string `json:"processed_supplies"`
	ProcessedWilds         []string `json:"processed_wilds"`
	TotalOrders            int      `json:"total_orders"`
	SuccessfulCount        int      `json:"successful_count"`
	InvalidStatusCount     int      `json:"invalid_status_count"`
	BlockedButShippedCount int      `json:"blocked_but_shipped_count"`
	FailedMovementCount    int      `json:"failed_movement_count"`
	TotalFailedCount       int      `json:"total_failed_count"`
}

// candidate is one fetched order with its source coordinates.
type candidate struct {
	order          etorder.Order
	sourceSupply   string
	sourceSupplyNm string // source supply display name, needed for final naming
}

// moveTarget is one resolved destination supply.
type moveTarget struct {
	supplyID string
	account  string
	wild     string
}

// MoveOrders is the top-level move state machine. When the request carries
// an operation id the whole run is tracked: a duplicate id is rejected while
// the first run is still in flight, and the final summary is persisted for
// polling.
func (s *SupplyService) MoveOrders(ctx context.Context, req *MoveRequest) (*MoveResult, error) {
	if req.OperationID == "" {
		return s.moveOrders(ctx, req)
	}

	ctx = logger.WithOperationID(ctx, req.OperationID)

	rawReq, _ := json.Marshal(req)
	claimed, err := s.operation.SaveStart(ctx, req.OperationID, req.Operator, rawReq)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, errorx.ErrOperationExists
	}

	result, err := s.moveOrders(ctx, req)
	if err != nil {
		if saveErr := s.operation.SaveError(ctx, req.OperationID, err.Error()); saveErr != nil {
			s.log.Errorf(ctx, "persist operation failure: %v", saveErr)
		}
		return nil, err
	}

	rawResult, _ := json.Marshal(result)
	if err := s.operation.SaveSuccess(ctx, req.OperationID, rawResult); err != nil {
		s.log.Errorf(ctx, "persist operation result: %v", err)
	}
	s.pruneOperationResponse(ctx, req, result)
	return result, nil
}

// pruneOperationResponse rewrites the stored operation response with the
// source supplies as they look after the move: removed order ids stripped,
// emptied supplies and articles dropped. Polling clients see what is still
// left to work with instead of the stale pre-move listing.
func (s *SupplyService) pruneOperationResponse(ctx context.Context, req *MoveRequest, result *MoveResult) {
	removed := make(map[int64]struct{}, len(result.RemovedOrderIDs))
	for _, id := range result.RemovedOrderIDs {
		removed[id] = struct{}{}
	}

	remaining := make(map[string]MoveProductGroup, len(req.Orders))
	for wild, group := range req.Orders {
		kept := make([]MoveSupplySource, 0, len(group.Supplies))
		for _, src := range group.Supplies {
			ids := make([]int64, 0, len(src.OrderIDs))
			for _, id := range src.OrderIDs {
				if _, gone := removed[id]; !gone {
					ids = append(ids, id)
				}
			}
			if len(ids) > 0 {
				kept = append(kept, MoveSupplySource{Account: src.Account, SupplyID: src.SupplyID, OrderIDs: ids})
			}
		}
		if len(kept) > 0 {
			remaining[wild] = MoveProductGroup{Supplies: kept, RemoveCount: group.RemoveCount}
		}
	}

	raw, err := json.Marshal(map[string]interface{}{
		"result":           result,
		"remaining_orders": remaining,
	})
	if err != nil {
		return
	}
	if err := s.operation.UpdateResponse(ctx, req.OperationID, raw); err != nil {
		s.log.Errorf(ctx, "prune operation response: %v", err)
	}
}

func (s *SupplyService) moveOrders(ctx context.Context, req *MoveRequest) (*MoveResult, error) {
	dest := etsupply.DestinationHanging
	if req.MoveToFinal {
		dest = etsupply.DestinationFinal
	}

	// 1. gather candidate orders per article, fanning out over source supplies
	candidates := s.fetchCandidates(ctx, req)

	// 2. pick concrete orders per article honoring remove_count and the
	// destination's FIFO/LIFO rule
	selected := s.selectOrders(ctx, req, candidates, dest)
	if len(selected) == 0 {
		return nil, errorx.NewValidation("no orders available to move")
	}

	// 3. resolve destination supplies per (article, account)
	targets, err := s.resolveTargets(ctx, selected, dest, req.Operator)
	if err != nil {
		return nil, err
	}

	// 4. pre-validate move eligibility before any marketplace mutation
	movable, blocked := s.preValidate(ctx, selected)

	// 5. fan out the add-order calls, classifying each outcome on its own
	moved, failed := s.executeMoves(ctx, movable, targets)

	// 6. blocked and failed orders: final mode ships them under their
	// original supply; hanging mode leaves them for a future cycle
	var shippedWithBlock []candidate
	if dest == etsupply.DestinationFinal {
		shippedWithBlock = append(shippedWithBlock, blockedCandidates(selected, blocked)...)
		shippedWithBlock = append(shippedWithBlock, failed...)
	}

	// 7. reservation bookkeeping
	s.adjustReservations(ctx, dest, moved, shippedWithBlock, targets)

	// 8. ERP document + shipment journal over everything that physically
	// left its source supply
	erpOK := s.notifyExternal(ctx, req.Operator, dest, moved, shippedWithBlock, targets)

	// 9. ledger logging; SHIPPED_WITH_BLOCK only lands after a successful
	// ERP send
	s.logMoveOutcomes(ctx, req.Operator, dest, moved, blocked, selected, shippedWithBlock, targets, erpOK)

	// 10. counts-only summary
	return s.buildResult(selected, moved, blocked, failed, shippedWithBlock, targets), nil
}

// fetchCandidates loads the live order set of every referenced source supply
// and keeps the requested ids. A failed supply fetch drops only that
// supply's orders.
func (s *SupplyService) fetchCandidates(ctx context.Context, req *MoveRequest) map[string][]candidate {
	type fetchResult struct {
		wild       string
		candidates []candidate
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []fetchResult
	)

	for wild, group := range req.Orders {
		if group.RemoveCount <= 0 {
			continue
		}
		for _, src := range group.Supplies {
			wg.Add(1)
			go func(wild string, src MoveSupplySource) {
				defer wg.Done()

				orders, err := s.marketplace.GetSupplyOrders(ctx, src.Account, src.SupplyID)
				if err != nil {
					s.log.Errorf(ctx, "fetch supply %s orders failed: %v", src.SupplyID, err)
					return
				}
				info, err := s.marketplace.GetSupplyInfo(ctx, src.Account, src.SupplyID)
				if err != nil {
					s.log.Errorf(ctx, "fetch supply %s info failed: %v", src.SupplyID, err)
					return
				}

				wanted := make(map[int64]struct{}, len(src.OrderIDs))
				for _, id := range src.OrderIDs {
					wanted[id] = struct{}{}
				}

				batch := make([]candidate, 0, len(src.OrderIDs))
				for _, o := range orders {
					if _, ok := wanted[o.ID]; !ok {
						continue
					}
					batch = append(batch, candidate{
						order: etorder.Order{
							ID:        o.ID,
							WildCode:  wildcode.Normalize(o.Article),
							Account:   src.Account,
							SupplyID:  src.SupplyID,
							NMID:      o.NMID,
							Price:     o.ConvertedPrice,
							CreatedAt: o.CreatedAt,
						},
						sourceSupply:   src.SupplyID,
						sourceSupplyNm: info.Name,
					})
				}

				mu.Lock()
				results = append(results, fetchResult{wild: wild, candidates: batch})
				mu.Unlock()
			}(wild, src)
		}
	}
	wg.Wait()

	pools := make(map[string][]candidate)
	for _, r := range results {
		pools[r.wild] = append(pools[r.wild], r.candidates...)
	}
	return pools
}

// selectOrders applies the selection policy per article.
func (s *SupplyService) selectOrders(ctx context.Context, req *MoveRequest, pools map[string][]candidate, dest etsupply.Destination) []candidate {
	var selected []candidate
	for wild, group := range req.Orders {
		pool := pools[wild]
		if group.RemoveCount <= 0 || len(pool) == 0 {
			continue
		}

		orders := make([]etorder.Order, 0, len(pool))
		byID := make(map[int64]candidate, len(pool))
		for _, c := range pool {
			orders = append(orders, c.order)
			byID[c.order.ID] = c
		}

		picked := s.selection.Select(orders, group.RemoveCount, dest)
		if len(picked) < group.RemoveCount {
			s.log.Warnf(ctx, "article %s short: requested %d, selected %d", wild, group.RemoveCount, len(picked))
		}
		for _, o := range picked {
			selected = append(selected, byID[o.ID])
		}
	}
	return selected
}

// resolveTargets creates or reuses the destination supply per (article,
// account). Hanging destinations always get a fresh supply persisted with an
// empty snapshot; final destinations reuse the account's latest still-open
// final supply.
func (s *SupplyService) resolveTargets(ctx context.Context, selected []candidate, dest etsupply.Destination, operator string) (map[string]moveTarget, error) {
	targets := make(map[string]moveTarget)

	for _, c := range selected {
		key := targetKey(c.order.WildCode, c.order.Account)
		if _, ok := targets[key]; ok {
			continue
		}

		if dest == etsupply.DestinationHanging {
			name := fmt.Sprintf("%s_%s", c.order.WildCode, time.Now().Format("02.01.2006"))
			supplyID, err := s.marketplace.CreateSupply(ctx, c.order.Account, name)
			if err != nil {
				return nil, errorx.NewRemote("create hanging supply", err)
			}
			record := &etsupply.HangingRecord{
				SupplyID:  supplyID,
				Account:   c.order.Account,
				OrderData: etsupply.OrderSnapshot{Orders: []etsupply.SnapshotOrder{}, Source: "created_for_move"},
				Operator:  operator,
			}
			if err := s.hanging.Save(ctx, record); err != nil {
				return nil, err
			}
			targets[key] = moveTarget{supplyID: supplyID, account: c.order.Account, wild: c.order.WildCode}
			continue
		}

		supplyID, err := s.resolveFinalSupply(ctx, c.order.Account, c.sourceSupplyNm)
		if err != nil {
			return nil, err
		}
		targets[key] = moveTarget{supplyID: supplyID, account: c.order.Account, wild: c.order.WildCode}
	}
	return targets, nil
}

// resolveFinalSupply reuses the account's recorded final supply while the
// marketplace still reports it assembling, otherwise creates a new one named
// after the technical source supply.
func (s *SupplyService) resolveFinalSupply(ctx context.Context, account, sourceName string) (string, error) {
	latest, err := s.final.GetLatest(ctx, account)
	if err != nil {
		return "", err
	}
	if latest != nil {
		info, err := s.marketplace.GetSupplyInfo(ctx, account, latest.SupplyID)
		if err == nil && !info.Done {
			return latest.SupplyID, nil
		}
		if err != nil {
			s.log.Warnf(ctx, "final supply %s lookup failed, creating new: %v", latest.SupplyID, err)
		}
	}

	name := etsupply.FinalName(sourceName)
	supplyID, err := s.marketplace.CreateSupply(ctx, account, name)
	if err != nil {
		return "", errorx.NewRemote("create final supply", err)
	}
	err = s.final.Save(ctx, &etsupply.FinalRecord{SupplyID: supplyID, Account: account, SupplyName: name})
	if err != nil {
		return "", err
	}
	return supplyID, nil
}

// preValidate checks move eligibility per account before mutating anything.
func (s *SupplyService) preValidate(ctx context.Context, selected []candidate) (movable []candidate, blocked map[int64]etorder.OrderStatus) {
	byAccount := make(map[string][]int64)
	for _, c := range selected {
		byAccount[c.order.Account] = append(byAccount[c.order.Account], c.order.ID)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		pairs = make(map[int64]etorder.StatusPair)
	)
	for account, ids := range byAccount {
		wg.Add(1)
		go func(account string, ids []int64) {
			defer wg.Done()
			fetched := s.validation.FetchStatuses(ctx, account, ids)
			mu.Lock()
			for id, pair := range fetched {
				pairs[id] = pair
			}
			mu.Unlock()
		}(account, ids)
	}
	wg.Wait()

	ids := make([]int64, 0, len(selected))
	for _, c := range selected {
		ids = append(ids, c.order.ID)
	}
	movableIDs, blocked := s.validation.SplitForMove(ids, pairs)
	keep := make(map[int64]struct{}, len(movableIDs))
	for _, id := range movableIDs {
		keep[id] = struct{}{}
	}
	for _, c := range selected {
		if _, ok := keep[c.order.ID]; ok {
			movable = append(movable, c)
		}
	}
	return movable, blocked
}

// executeMoves fans out add-order calls; each order's failure is its own.
func (s *SupplyService) executeMoves(ctx context.Context, movable []candidate, targets map[string]moveTarget) (moved, failed []candidate) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, c := range movable {
		target, ok := targets[targetKey(c.order.WildCode, c.order.Account)]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(c candidate, target moveTarget) {
			defer wg.Done()
			err := s.marketplace.AddOrderToSupply(ctx, c.order.Account, target.supplyID, c.order.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Errorf(ctx, "move order %d to %s failed: %v", c.order.ID, target.supplyID, err)
				failed = append(failed, c)
				return
			}
			moved = append(moved, c)
		}(c, target)
	}
	wg.Wait()
	return moved, failed
}

// adjustReservations releases stock on final moves and books movement
// reservations on hanging moves. Reservation failures are logged, never
// fatal: the marketplace move already happened.
func (s *SupplyService) adjustReservations(ctx context.Context, dest etsupply.Destination, moved, shippedWithBlock []candidate, targets map[string]moveTarget) {
	if dest == etsupply.DestinationFinal {
		type relKey struct{ supply, wild string }
		counts := make(map[relKey]int)
		for _, c := range append(append([]candidate{}, moved...), shippedWithBlock...) {
			counts[relKey{supply: c.sourceSupply, wild: c.order.WildCode}]++
		}
		for key, qty := range counts {
			if err := s.shipment.ReleaseReservation(ctx, key.supply, key.wild, qty); err != nil {
				s.log.Errorf(ctx, "release reservation supply=%s wild=%s: %v", key.supply, key.wild, err)
			}
		}
		return
	}

	type mvKey struct{ newSupply, oldSupply, wild, account string }
	counts := make(map[mvKey]int)
	for _, c := range moved {
		target := targets[targetKey(c.order.WildCode, c.order.Account)]
		counts[mvKey{newSupply: target.supplyID, oldSupply: c.sourceSupply, wild: c.order.WildCode, account: c.order.Account}]++
	}
	now := time.Now()
	for key, qty := range counts {
		err := s.shipment.CreateReservationWithMovement(ctx, mdshipment.MovementReservation{
			ProductID:      key.wild,
			Ordered:        qty,
			Account:        key.account,
			SupplyID:       key.newSupply,
			MoveFromSupply: key.oldSupply,
			QuantityToMove: qty,
			ReserveDate:    now,
			ExpiresAt:      now.AddDate(0, 1, 0),
		})
		if err != nil {
			s.log.Errorf(ctx, "movement reservation supply=%s wild=%s: %v", key.newSupply, key.wild, err)
		}
	}
}

// notifyExternal sends the ERP document and the shipment journal rows for
// everything that left its source supply this cycle.
func (s *SupplyService) notifyExternal(ctx context.Context, operator string, dest etsupply.Destination, moved, shippedWithBlock []candidate, targets map[string]moveTarget) bool {
	lines := make([]mderp.OrderLine, 0, len(moved)+len(shippedWithBlock))
	items := make([]mdshipment.ShippedItem, 0, len(moved)+len(shippedWithBlock))

	for _, c := range moved {
		target := targets[targetKey(c.order.WildCode, c.order.Account)]
		lines = append(lines, mderp.OrderLine{
			OrderID:  c.order.ID,
			Article:  c.order.WildCode,
			Account:  c.order.Account,
			SupplyID: target.supplyID,
			Price:    c.order.Price,
			NMID:     c.order.NMID,
		})
		items = append(items, mdshipment.ShippedItem{SupplyID: target.supplyID, Wild: c.order.WildCode, Account: c.order.Account})
	}
	// blocked-but-shipped orders stay under their original supply id
	for _, c := range shippedWithBlock {
		lines = append(lines, mderp.OrderLine{
			OrderID:  c.order.ID,
			Article:  c.order.WildCode,
			Account:  c.order.Account,
			SupplyID: c.sourceSupply,
			Price:    c.order.Price,
			NMID:     c.order.NMID,
		})
		items = append(items, mdshipment.ShippedItem{SupplyID: c.sourceSupply, Wild: c.order.WildCode, Account: c.order.Account})
	}

	if len(lines) == 0 {
		return false
	}
	if dest == etsupply.DestinationHanging {
		// hanging moves do not dispatch anything, nothing to report
		return false
	}

	if err := s.shipment.SendLog(ctx, s.shipment.Aggregate(operator, items)); err != nil {
		s.log.Errorf(ctx, "shipment journal send failed: %v", err)
	}

	result := s.erp.Send(ctx, s.erp.BuildPayload(s.enrichLines(ctx, lines)))
	if !result.Success {
		s.log.Errorf(ctx, "erp send failed: status=%d message=%s", result.StatusCode, result.Message)
	}
	return result.Success
}

// logMoveOutcomes writes every outcome to the ledger.
func (s *SupplyService) logMoveOutcomes(
	ctx context.Context,
	operator string,
	dest etsupply.Destination,
	moved []candidate,
	blocked map[int64]etorder.OrderStatus,
	selected []candidate,
	shippedWithBlock []candidate,
	targets map[string]moveTarget,
	erpOK bool,
) {
	destStatus := etorder.StatusInHangingSupply
	if dest == etsupply.DestinationFinal {
		destStatus = etorder.StatusInFinalSupply
	}

	entries := make([]etorder.StatusLogEntry, 0, len(selected)+len(shippedWithBlock))
	for _, c := range moved {
		target := targets[targetKey(c.order.WildCode, c.order.Account)]
		entries = append(entries, etorder.StatusLogEntry{
			OrderID:  c.order.ID,
			Status:   destStatus,
			SupplyID: target.supplyID,
			Account:  c.order.Account,
			Operator: operator,
		})
	}
	for _, c := range selected {
		status, ok := blocked[c.order.ID]
		if !ok {
			continue
		}
		entries = append(entries, etorder.StatusLogEntry{
			OrderID:  c.order.ID,
			Status:   status,
			SupplyID: c.sourceSupply,
			Account:  c.order.Account,
			Operator: operator,
		})
	}
	if erpOK {
		for _, c := range shippedWithBlock {
			entries = append(entries, etorder.StatusLogEntry{
				OrderID:  c.order.ID,
				Status:   etorder.StatusShippedWithBlock,
				SupplyID: c.sourceSupply,
				Account:  c.order.Account,
				Operator: operator,
			})
		}
	}

	if err := s.statusLog.InsertBatch(ctx, entries); err != nil {
		s.log.Errorf(ctx, "ledger insert failed: %v", err)
	}
}

// enrichLines backfills missing price/nm_id values before the ERP send.
// The account's live order list is the authority; the local order mirror
// only fills what the marketplace no longer returns.
func (s *SupplyService) enrichLines(ctx context.Context, lines []mderp.OrderLine) []mderp.OrderLine {
	missingByAccount := make(map[string][]int)
	for i, line := range lines {
		if line.Price == 0 || line.NMID == 0 {
			missingByAccount[line.Account] = append(missingByAccount[line.Account], i)
		}
	}
	if len(missingByAccount) == 0 {
		return lines
	}

	var unresolved []int64
	for account, idxs := range missingByAccount {
		live, err := s.marketplace.GetOrders(ctx, account)
		if err != nil {
			s.log.Warnf(ctx, "account order fetch for %s failed, falling back to mirror: %v", account, err)
			for _, i := range idxs {
				unresolved = append(unresolved, lines[i].OrderID)
			}
			continue
		}
		byID := make(map[int64]gateway.SupplyOrder, len(live))
		for _, o := range live {
			byID[o.ID] = o
		}
		for _, i := range idxs {
			o, ok := byID[lines[i].OrderID]
			if ok {
				if lines[i].Price == 0 {
					lines[i].Price = o.ConvertedPrice
				}
				if lines[i].NMID == 0 {
					lines[i].NMID = o.NMID
				}
			}
			if lines[i].Price == 0 || lines[i].NMID == 0 {
				unresolved = append(unresolved, lines[i].OrderID)
			}
		}
	}
	if len(unresolved) == 0 {
		return lines
	}

	details, err := s.snapshot.GetLatestByIDs(ctx, unresolved)
	if err != nil {
		s.log.Warnf(ctx, "order mirror lookup failed, sending lines as-is: %v", err)
		return lines
	}
	for i := range lines {
		d, ok := details[lines[i].OrderID]
		if !ok {
			continue
		}
		if lines[i].Price == 0 {
			lines[i].Price = d.ConvertedPrice
		}
		if lines[i].NMID == 0 {
			lines[i].NMID = d.NMID
		}
	}
	return lines
}

// buildResult folds the run into the counts-only summary.
func (s *SupplyService) buildResult(selected, moved []candidate, blocked map[int64]etorder.OrderStatus, failed, shippedWithBlock []candidate, targets map[string]moveTarget) *MoveResult {
	removedIDs := make([]int64, 0, len(moved))
	supplySet := make(map[string]struct{})
	wildSet := make(map[string]struct{})

	for _, c := range moved {
		removedIDs = append(removedIDs, c.order.ID)
		supplySet[c.sourceSupply] = struct{}{}
		target := targets[targetKey(c.order.WildCode, c.order.Account)]
		supplySet[target.supplyID] = struct{}{}
		wildSet[c.order.WildCode] = struct{}{}
	}
	for _, c := range shippedWithBlock {
		supplySet[c.sourceSupply] = struct{}{}
		wildSet[c.order.WildCode] = struct{}{}
	}
	sort.Slice(removedIDs, func(i, j int) bool { return removedIDs[i] < removedIDs[j] })

	supplies := make([]string, 0, len(supplySet))
	for id := range supplySet {
		supplies = append(supplies, id)
	}
	sort.Strings(supplies)

	wilds := make([]string, 0, len(wildSet))
	for w := range wildSet {
		wilds = append(wilds, w)
	}
	sort.Strings(wilds)

	totalFailed := len(blocked) + len(failed)
	return &MoveResult{
		Success:                len(moved)+len(shippedWithBlock) > 0,
		RemovedOrderIDs:        removedIDs,
		ProcessedSupplies:      supplies,
		ProcessedWilds:         wilds,
		TotalOrders:            len(selected),
		SuccessfulCount:        len(moved),
		InvalidStatusCount:     len(blocked),
		BlockedButShippedCount: len(shippedWithBlock),
		FailedMovementCount:    len(failed),
		TotalFailedCount:       totalFailed,
	}
}

func blockedCandidates(selected []candidate, blocked map[int64]etorder.OrderStatus) []candidate {
	out := make([]candidate, 0, len(blocked))
	for _, c := range selected {
		if _, ok := blocked[c.order.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

func targetKey(wild, account string) string {
	return wild + "|" + account
}
