package svsupply

import (
	"context"
	"errors"
	"time"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/entity/etsupply"
	"wbhub/internal/app/domains/gateway"
	"wbhub/internal/app/domains/modules/mderp"
	"wbhub/internal/app/domains/modules/mdshipment"
	"wbhub/internal/app/pkg/errorx"
	"wbhub/internal/app/pkg/logger"
	"wbhub/internal/app/pkg/wildcode"

	"gorm.io/gorm"
)

// HangingView is the listing shape of one hanging record.
type HangingView struct {
	SupplyID              string                   `json:"supply_id"`
	Account               string                   `json:"account"`
	TotalOrders           int                      `json:"total_orders"`
	ShippedCount          int                      `json:"shipped_count"`
	RemainingCount        int                      `json:"remaining_count"`
	IsFictitiousDelivered bool                     `json:"is_fictitious_delivered"`
	FictitiousDeliveredAt *time.Time               `json:"fictitious_delivered_at,omitempty"`
	Operator              string                   `json:"operator,omitempty"`
	CreatedAt             time.Time                `json:"created_at"`
	Orders                []etsupply.SnapshotOrder `json:"orders"`
}

func newHangingView(rec *etsupply.HangingRecord) *HangingView {
	remaining := len(rec.OrderData.Orders) - len(rec.ShippedOrders)
	if remaining < 0 {
		remaining = 0
	}
	return &HangingView{
		SupplyID:              rec.SupplyID,
		Account:               rec.Account,
		TotalOrders:           len(rec.OrderData.Orders),
		ShippedCount:          len(rec.ShippedOrders),
		RemainingCount:        remaining,
		IsFictitiousDelivered: rec.IsFictitiousDelivered,
		FictitiousDeliveredAt: rec.FictitiousDeliveredAt,
		Operator:              rec.Operator,
		CreatedAt:             rec.CreatedAt,
		Orders:                rec.OrderData.Orders,
	}
}

// FictitiousOutcome is the per-supply result of a fictitious delivery batch.
type FictitiousOutcome struct {
	SupplyID   string `json:"supply_id"`
	Account    string `json:"account"`
	Success    bool   `json:"success"`
	OrderCount int    `json:"order_count"`
	Error      string `json:"error,omitempty"`
}

// FictitiousBatchResult summarizes a fictitious delivery batch.
type FictitiousBatchResult struct {
	Success         bool                `json:"success"`
	TotalProcessed  int                 `json:"total_processed"`
	SuccessfulCount int                 `json:"successful_count"`
	FailedCount     int                 `json:"failed_count"`
	Results         []FictitiousOutcome `json:"results"`
}

// DeliverFictitiousBatch marks hanging supplies fictitiously delivered: the
// supply stays physically in the warehouse while the paperwork treats it as
// dispatched. Stock reservations deliberately stay in place. Each supply's
// live order set is re-fetched first; an empty set aborts that supply as a
// data-integrity violation instead of recording a delivery of nothing.
func (s *SupplyService) DeliverFictitiousBatch(ctx context.Context, supplies map[string]string, operator string) *FictitiousBatchResult {
	result := &FictitiousBatchResult{TotalProcessed: len(supplies)}

	for supplyID, account := range supplies {
		outcome := s.deliverFictitious(ctx, supplyID, account, operator)
		if outcome.Success {
			result.SuccessfulCount++
		} else {
			result.FailedCount++
		}
		result.Results = append(result.Results, outcome)
	}
	result.Success = result.SuccessfulCount > 0
	return result
}

func (s *SupplyService) deliverFictitious(ctx context.Context, supplyID, account, operator string) FictitiousOutcome {
	ctx = logger.WithAccount(ctx, account)
	outcome := FictitiousOutcome{SupplyID: supplyID, Account: account}

	record, err := s.hanging.GetByID(ctx, supplyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome.Error = errorx.ErrSupplyNotFound.Error()
		} else {
			outcome.Error = err.Error()
		}
		return outcome
	}
	if record.IsFictitiousDelivered {
		outcome.Error = errorx.ErrAlreadyDelivered.Error()
		return outcome
	}

	// always re-derive the live order set, never trust the stored snapshot
	orders, err := s.marketplace.GetSupplyOrders(ctx, account, supplyID)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if len(orders) == 0 {
		outcome.Error = errorx.NewIntegrity("supply has no orders, refusing fictitious delivery", nil).Error()
		return outcome
	}

	snapshot := etsupply.OrderSnapshot{Orders: snapshotOrders(orders), Source: record.OrderData.Source}
	if err := s.hanging.UpdateOrderData(ctx, supplyID, snapshot); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if err := s.hanging.MarkFictitiousDelivered(ctx, supplyID, operator, time.Now()); err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	entries := make([]etorder.StatusLogEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, etorder.StatusLogEntry{
			OrderID:  o.ID,
			Status:   etorder.StatusFictitiousDelivered,
			SupplyID: supplyID,
			Account:  account,
			Operator: operator,
		})
	}
	if err := s.statusLog.InsertBatch(ctx, entries); err != nil {
		s.log.Errorf(ctx, "ledger insert for fictitious delivery %s: %v", supplyID, err)
	}

	outcome.Success = true
	outcome.OrderCount = len(orders)
	return outcome
}

// ShipRequest asks for a quantity of orders to be fictitiously shipped out of
// one or more hanging supplies. Supplies maps supply id to its account.
type ShipRequest struct {
	Supplies map[string]string `json:"supplies" binding:"required,min=1"`
	Quantity int               `json:"shipped_quantity" binding:"required,gt=0"`
	Operator string            `json:"operator"`
}

// ShipResult carries the committed shipment and its labels.
type ShipResult struct {
	ShippedCount   int               `json:"shipped_count"`
	RequestedCount int               `json:"requested_count"`
	Supplies       map[string]int    `json:"supplies"`
	Stickers       []gateway.Sticker `json:"stickers"`
}

// shipPool tracks one supply's live order set during a fictitious shipment.
type shipPool struct {
	account       string
	liveCount     int
	shippedBefore int
}

// ShipFictitious dispatches part of the hanging supplies. The candidate pool
// is the live marketplace order set of every requested supply, minus orders
// already marked shipped. Eligibility is the strict allowlist (complete +
// waiting); the commit is gated on stickers: only orders whose label actually
// came back are recorded as shipped, so the warehouse never holds a shipped
// order it cannot label.
func (s *SupplyService) ShipFictitious(ctx context.Context, req *ShipRequest) (*ShipResult, error) {
	pools := make(map[string]*shipPool, len(req.Supplies))
	candidatesByAccount := make(map[string][]gateway.SupplyOrder)
	supplyByOrder := make(map[int64]string)

	for supplyID, account := range req.Supplies {
		record, err := s.hanging.GetByID(ctx, supplyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.ErrSupplyNotFound
			}
			return nil, err
		}

		// always re-derive the live order set, never trust the stored snapshot
		live, err := s.marketplace.GetSupplyOrders(ctx, account, supplyID)
		if err != nil {
			return nil, errorx.NewRemote("fetch supply orders", err)
		}
		snapshot := etsupply.OrderSnapshot{Orders: snapshotOrders(live), Source: record.OrderData.Source}
		if err := s.hanging.UpdateOrderData(ctx, supplyID, snapshot); err != nil {
			return nil, err
		}

		shipped := record.ShippedOrderIDs()
		pool := &shipPool{account: account, liveCount: len(live)}
		for _, o := range live {
			if _, ok := shipped[o.ID]; ok {
				pool.shippedBefore++
				continue
			}
			candidatesByAccount[account] = append(candidatesByAccount[account], o)
			supplyByOrder[o.ID] = supplyID
		}
		pools[supplyID] = pool
	}
	if len(supplyByOrder) == 0 {
		return nil, errorx.NewValidation("supplies have no unshipped orders")
	}

	eligible := make([]etorder.Order, 0, len(supplyByOrder))
	for account, candidates := range candidatesByAccount {
		ids := make([]int64, 0, len(candidates))
		for _, o := range candidates {
			ids = append(ids, o.ID)
		}
		pairs := s.validation.FetchStatuses(logger.WithAccount(ctx, account), account, ids)
		for _, o := range candidates {
			if !s.validation.ShipmentEligible(pairs[o.ID]) {
				continue
			}
			eligible = append(eligible, etorder.Order{
				ID:        o.ID,
				WildCode:  wildcode.Normalize(o.Article),
				Account:   account,
				SupplyID:  supplyByOrder[o.ID],
				NMID:      o.NMID,
				Price:     o.ConvertedPrice,
				CreatedAt: o.CreatedAt,
			})
		}
	}
	if len(eligible) == 0 {
		return nil, errorx.NewValidation("no orders eligible for shipment")
	}

	// oldest first; a shortfall against the requested quantity clamps
	picked := s.selection.Select(eligible, req.Quantity, etsupply.DestinationFinal)
	if len(picked) < req.Quantity {
		s.log.Warnf(ctx, "short on shippable orders: requested %d, eligible %d", req.Quantity, len(picked))
	}

	idsBySupply := make(map[string][]int64)
	for _, o := range picked {
		idsBySupply[o.SupplyID] = append(idsBySupply[o.SupplyID], o.ID)
	}

	stickers := make(map[int64]gateway.Sticker, len(picked))
	for supplyID, ids := range idsBySupply {
		got, err := s.marketplace.GetStickers(ctx, pools[supplyID].account, supplyID, ids)
		if err != nil {
			return nil, errorx.NewRemote("fetch stickers", err)
		}
		for id, st := range got {
			stickers[id] = st
		}
	}

	// commit only what can be labeled
	committed := make([]etorder.Order, 0, len(picked))
	labels := make([]gateway.Sticker, 0, len(picked))
	for _, o := range picked {
		sticker, ok := stickers[o.ID]
		if !ok {
			s.log.Warnf(ctx, "no sticker for order %d, excluded from shipment", o.ID)
			continue
		}
		committed = append(committed, o)
		labels = append(labels, sticker)
	}
	if len(committed) == 0 {
		return nil, errorx.NewRemote("no stickers returned for selected orders", nil)
	}

	perSupply := s.commitFictitiousShipment(ctx, req.Operator, committed, pools)

	return &ShipResult{
		ShippedCount:   len(committed),
		RequestedCount: req.Quantity,
		Supplies:       perSupply,
		Stickers:       labels,
	}, nil
}

// commitFictitiousShipment performs the side effects of a labeled shipment:
// journal, ERP, reservation release, shipped-orders bookkeeping, ledger. A
// supply whose live order set is exhausted by this commit gets its orders
// logged as fictitiously delivered instead of partially shipped.
func (s *SupplyService) commitFictitiousShipment(ctx context.Context, operator string, committed []etorder.Order, pools map[string]*shipPool) map[string]int {
	items := make([]mdshipment.ShippedItem, 0, len(committed))
	lines := make([]mderp.OrderLine, 0, len(committed))
	bySupply := make(map[string][]etorder.Order)
	perSupply := make(map[string]int)
	for _, o := range committed {
		wild := wildcode.Normalize(o.WildCode)
		items = append(items, mdshipment.ShippedItem{SupplyID: o.SupplyID, Wild: wild, Account: o.Account})
		lines = append(lines, mderp.OrderLine{
			OrderID:  o.ID,
			Article:  wild,
			Account:  o.Account,
			SupplyID: o.SupplyID,
			Price:    o.Price,
			NMID:     o.NMID,
		})
		bySupply[o.SupplyID] = append(bySupply[o.SupplyID], o)
		perSupply[o.SupplyID]++
	}

	if err := s.shipment.SendLog(ctx, s.shipment.Aggregate(operator, items)); err != nil {
		s.log.Errorf(ctx, "shipment journal send failed: %v", err)
	}
	if result := s.erp.Send(ctx, s.erp.BuildPayload(s.enrichLines(ctx, lines))); !result.Success {
		s.log.Errorf(ctx, "erp send failed: status=%d message=%s", result.StatusCode, result.Message)
	}
	for supplyID, orders := range bySupply {
		for wild, group := range s.selection.GroupByWild(orders) {
			if err := s.shipment.ReleaseReservation(ctx, supplyID, wild, len(group)); err != nil {
				s.log.Errorf(ctx, "release reservation supply=%s wild=%s: %v", supplyID, wild, err)
			}
		}
	}

	now := time.Now()
	marksBySupply := make(map[string][]etsupply.ShippedOrder)
	entries := make([]etorder.StatusLogEntry, 0, len(committed))
	for _, o := range committed {
		marksBySupply[o.SupplyID] = append(marksBySupply[o.SupplyID], etsupply.ShippedOrder{OrderID: o.ID, ShippedAt: now, Operator: operator})

		status := etorder.StatusPartiallyShipped
		if pool := pools[o.SupplyID]; pool != nil && pool.shippedBefore+perSupply[o.SupplyID] >= pool.liveCount {
			status = etorder.StatusFictitiousDelivered
		}
		entries = append(entries, etorder.StatusLogEntry{
			OrderID:  o.ID,
			Status:   status,
			SupplyID: o.SupplyID,
			Account:  o.Account,
			Operator: operator,
		})
	}
	for supplyID, marks := range marksBySupply {
		if err := s.hanging.AppendShippedOrders(ctx, supplyID, marks); err != nil {
			s.log.Errorf(ctx, "record shipped orders for %s: %v", supplyID, err)
		}
	}
	if err := s.statusLog.InsertBatch(ctx, entries); err != nil {
		s.log.Errorf(ctx, "ledger insert for fictitious shipment: %v", err)
	}
	return perSupply
}

// snapshotOrders converts live marketplace orders into the stored snapshot
// shape.
func snapshotOrders(orders []gateway.SupplyOrder) []etsupply.SnapshotOrder {
	out := make([]etsupply.SnapshotOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, etsupply.SnapshotOrder{
			ID:        o.ID,
			Wild:      wildcode.Normalize(o.Article),
			NMID:      o.NMID,
			Price:     o.ConvertedPrice,
			CreatedAt: o.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
