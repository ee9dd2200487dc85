package svsupply

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/entity/etsupply"
	"wbhub/internal/app/domains/gateway"
	"wbhub/internal/app/domains/gateway/gatewaytest"
	"wbhub/internal/app/domains/modules/mderp"
	"wbhub/internal/app/domains/modules/mdselection"
	"wbhub/internal/app/domains/modules/mdshipment"
	"wbhub/internal/app/domains/modules/mdvalidation"
	"wbhub/internal/app/domains/repo/repotest"
	"wbhub/internal/app/domains/repo/rpoperation"
	"wbhub/internal/app/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service   *SupplyService
	statusLog *repotest.MemStatusLog
	hanging   *repotest.MemHanging
	final     *repotest.MemFinal
	operation *repotest.MemOperation
	erpBodies *[]mderp.Payload
}

func newFixture(t *testing.T, fake *gatewaytest.Fake) *fixture {
	t.Helper()

	var (
		erpMu     sync.Mutex
		erpBodies []mderp.Payload
	)
	erpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload mderp.Payload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		erpMu.Lock()
		erpBodies = append(erpBodies, payload)
		erpMu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status_code": 200})
	}))
	t.Cleanup(erpServer.Close)

	shipServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(shipServer.Close)

	log := logger.Nop()
	statusLog := &repotest.MemStatusLog{}
	hanging := repotest.NewMemHanging()
	final := &repotest.MemFinal{}
	operation := &repotest.MemOperation{}

	service := NewSupplyService(
		fake,
		mdvalidation.NewValidationModule(fake, log),
		mdselection.NewSelectionModule(),
		mderp.NewERPModule(erpServer.URL, "user", "pass", map[string]string{"acc1": "7701234567"}, 5*time.Second, log),
		mdshipment.NewShipmentModule(shipServer.URL, 1, 5*time.Second, log),
		statusLog, hanging, final, operation, repotest.MemSnapshot{},
		[]string{"acc1"},
		log,
	)

	return &fixture{
		service:   service,
		statusLog: statusLog,
		hanging:   hanging,
		final:     final,
		operation: operation,
		erpBodies: &erpBodies,
	}
}

func techSupplyFake(pairs map[int64]etorder.StatusPair) *gatewaytest.Fake {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, account, supplyID string) ([]gateway.SupplyOrder, error) {
			return []gateway.SupplyOrder{
				{ID: 1, Article: "wild5", NMID: 111, ConvertedPrice: 1500, CreatedAt: base},
				{ID: 2, Article: "wild5", NMID: 111, ConvertedPrice: 1500, CreatedAt: base.Add(5 * time.Minute)},
			}, nil
		},
		GetSupplyInfoFn: func(_ context.Context, account, supplyID string) (*gateway.SupplyInfo, error) {
			return &gateway.SupplyInfo{ID: supplyID, Name: "Поставка_ТЕХ"}, nil
		},
		GetOrderStatusesFn: func(_ context.Context, account string, orderIDs []int64) (map[int64]etorder.StatusPair, error) {
			return pairs, nil
		},
	}
}

// ---- moveOrders ----

func TestMoveOrdersToHangingSelectsNewest(t *testing.T) {
	fake := techSupplyFake(map[int64]etorder.StatusPair{
		1: {SupplierStatus: "new", WBStatus: "waiting"},
		2: {SupplierStatus: "new", WBStatus: "waiting"},
	})
	fx := newFixture(t, fake)

	result, err := fx.service.MoveOrders(context.Background(), &MoveRequest{
		Orders: map[string]MoveProductGroup{
			"wild5": {
				Supplies:    []MoveSupplySource{{Account: "acc1", SupplyID: "S1", OrderIDs: []int64{1, 2}}},
				RemoveCount: 1,
			},
		},
		MoveToFinal: false,
		Operator:    "tester",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.TotalOrders)
	assert.Equal(t, 1, result.SuccessfulCount)
	assert.Equal(t, []int64{2}, result.RemovedOrderIDs)

	// a fresh hanging supply was persisted, tagged created_for_move
	records, _ := fx.hanging.GetAll(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, "created_for_move", records[0].OrderData.Source)
	assert.Equal(t, "acc1", records[0].Account)

	// only the newer order got the hanging status
	assert.Equal(t, []etorder.OrderStatus{etorder.StatusInHangingSupply}, fx.statusLog.Statuses(2))
	assert.Empty(t, fx.statusLog.Statuses(1))

	// hanging moves never touch the ERP
	assert.Empty(t, *fx.erpBodies)
}

func TestMoveOrdersToFinalShipsBlockedUnderOriginalSupply(t *testing.T) {
	fake := techSupplyFake(map[int64]etorder.StatusPair{
		1: {SupplierStatus: "complete", WBStatus: "waiting"},
		2: {SupplierStatus: "new", WBStatus: "waiting"},
	})
	fx := newFixture(t, fake)

	result, err := fx.service.MoveOrders(context.Background(), &MoveRequest{
		Orders: map[string]MoveProductGroup{
			"wild5": {
				Supplies:    []MoveSupplySource{{Account: "acc1", SupplyID: "S1", OrderIDs: []int64{1, 2}}},
				RemoveCount: 2,
			},
		},
		MoveToFinal: true,
		Operator:    "tester",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalOrders)
	assert.Equal(t, 1, result.SuccessfulCount)
	assert.Equal(t, 1, result.InvalidStatusCount)
	assert.Equal(t, 1, result.BlockedButShippedCount)
	assert.Equal(t, []int64{2}, result.RemovedOrderIDs)

	// final supply recorded with the derived name
	finalRec, _ := fx.final.GetLatest(context.Background(), "acc1")
	require.NotNil(t, finalRec)
	assert.Equal(t, "Поставка_ФИНАЛ", finalRec.SupplyName)

	// order 1: blocked, then shipped with block under the original supply
	assert.ElementsMatch(t,
		[]etorder.OrderStatus{etorder.StatusBlockedAlreadyDelivered, etorder.StatusShippedWithBlock},
		fx.statusLog.Statuses(1))
	assert.Equal(t, []etorder.OrderStatus{etorder.StatusInFinalSupply}, fx.statusLog.Statuses(2))

	blockedEntries, _ := fx.statusLog.GetBySupply(context.Background(), "S1")
	require.NotEmpty(t, blockedEntries)
	for _, e := range blockedEntries {
		assert.Equal(t, int64(1), e.OrderID)
	}

	// ERP received both orders in one document
	require.Len(t, *fx.erpBodies, 1)
	payload := (*fx.erpBodies)[0]
	require.Len(t, payload.Accounts, 1)
	assert.Equal(t, "7701234567", payload.Accounts[0].INN)
	var orderIDs []int64
	for _, product := range payload.Accounts[0].Data {
		for _, supply := range product.Supplies {
			for _, o := range supply.Orders {
				orderIDs = append(orderIDs, o.OrderID)
				assert.Equal(t, 1, o.Count)
			}
		}
	}
	assert.ElementsMatch(t, []int64{1, 2}, orderIDs)
}

func TestMoveOrdersPartialBatchIsolation(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, account, supplyID string) ([]gateway.SupplyOrder, error) {
			return []gateway.SupplyOrder{
				{ID: 1, Article: "wild5", NMID: 111, ConvertedPrice: 100, CreatedAt: base},
				{ID: 2, Article: "wild5", NMID: 111, ConvertedPrice: 100, CreatedAt: base.Add(time.Minute)},
				{ID: 3, Article: "wild5", NMID: 111, ConvertedPrice: 100, CreatedAt: base.Add(2 * time.Minute)},
			}, nil
		},
		GetSupplyInfoFn: func(_ context.Context, account, supplyID string) (*gateway.SupplyInfo, error) {
			return &gateway.SupplyInfo{ID: supplyID, Name: "Поставка_ТЕХ"}, nil
		},
		AddOrderFn: func(_ context.Context, account, supplyID string, orderID int64) error {
			if orderID == 2 {
				return errors.New("supply locked")
			}
			return nil
		},
	}
	fx := newFixture(t, fake)

	result, err := fx.service.MoveOrders(context.Background(), &MoveRequest{
		Orders: map[string]MoveProductGroup{
			"wild5": {
				Supplies:    []MoveSupplySource{{Account: "acc1", SupplyID: "S1", OrderIDs: []int64{1, 2, 3}}},
				RemoveCount: 3,
			},
		},
		MoveToFinal: true,
		Operator:    "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessfulCount)
	assert.Equal(t, 1, result.FailedMovementCount)
	assert.ElementsMatch(t, []int64{1, 3}, result.RemovedOrderIDs)
	assert.Contains(t, fx.statusLog.Statuses(1), etorder.StatusInFinalSupply)
	assert.Contains(t, fx.statusLog.Statuses(3), etorder.StatusInFinalSupply)
	assert.NotContains(t, fx.statusLog.Statuses(2), etorder.StatusInFinalSupply)
}

func TestMoveOrdersOperationTracking(t *testing.T) {
	fake := techSupplyFake(map[int64]etorder.StatusPair{
		1: {SupplierStatus: "new", WBStatus: "waiting"},
		2: {SupplierStatus: "new", WBStatus: "waiting"},
	})
	fx := newFixture(t, fake)

	req := &MoveRequest{
		OperationID: "op-42",
		Orders: map[string]MoveProductGroup{
			"wild5": {
				Supplies:    []MoveSupplySource{{Account: "acc1", SupplyID: "S1", OrderIDs: []int64{1, 2}}},
				RemoveCount: 1,
			},
		},
		Operator: "tester",
	}

	_, err := fx.service.MoveOrders(context.Background(), req)
	require.NoError(t, err)

	op, err := fx.service.GetOperation(context.Background(), "op-42")
	require.NoError(t, err)
	assert.Equal(t, rpoperation.StatusSuccess, op.Status)

	// the stored response carries the result plus the pruned source listing
	var persisted struct {
		Result          MoveResult                  `json:"result"`
		RemainingOrders map[string]MoveProductGroup `json:"remaining_orders"`
	}
	require.NoError(t, json.Unmarshal(op.Response, &persisted))
	assert.Equal(t, 1, persisted.Result.SuccessfulCount)
	require.Contains(t, persisted.RemainingOrders, "wild5")
	require.Len(t, persisted.RemainingOrders["wild5"].Supplies, 1)
	// order 2 moved away, order 1 is still in the source supply
	assert.Equal(t, []int64{1}, persisted.RemainingOrders["wild5"].Supplies[0].OrderIDs)

	// a second submission of the same id is refused while results exist
	_, err = fx.service.MoveOrders(context.Background(), req)
	assert.Error(t, err)
}

func TestMoveOrdersNothingSelectable(t *testing.T) {
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, account, supplyID string) ([]gateway.SupplyOrder, error) {
			return nil, nil
		},
	}
	fx := newFixture(t, fake)

	_, err := fx.service.MoveOrders(context.Background(), &MoveRequest{
		Orders: map[string]MoveProductGroup{
			"wild5": {
				Supplies:    []MoveSupplySource{{Account: "acc1", SupplyID: "S1", OrderIDs: []int64{1}}},
				RemoveCount: 1,
			},
		},
	})
	assert.Error(t, err)
}

// ---- fictitious delivery ----

func TestDeliverFictitiousRefusesEmptyLiveSet(t *testing.T) {
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, account, supplyID string) ([]gateway.SupplyOrder, error) {
			return nil, nil
		},
	}
	fx := newFixture(t, fake)

	require.NoError(t, fx.hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID: "H1",
		Account:  "acc1",
		OrderData: etsupply.OrderSnapshot{Orders: []etsupply.SnapshotOrder{
			{ID: 1, Wild: "wild5"},
		}},
	}))

	result := fx.service.DeliverFictitiousBatch(context.Background(), map[string]string{"H1": "acc1"}, "tester")

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.FailedCount)

	rec, _ := fx.hanging.GetByID(context.Background(), "H1")
	assert.False(t, rec.IsFictitiousDelivered)
}

func TestDeliverFictitiousMarksAndLogs(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, account, supplyID string) ([]gateway.SupplyOrder, error) {
			return []gateway.SupplyOrder{
				{ID: 7, Article: "wild5", NMID: 1, ConvertedPrice: 500, CreatedAt: base},
			}, nil
		},
	}
	fx := newFixture(t, fake)

	require.NoError(t, fx.hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: etsupply.OrderSnapshot{Source: "created_for_move"},
	}))

	result := fx.service.DeliverFictitiousBatch(context.Background(), map[string]string{"H1": "acc1"}, "tester")

	assert.True(t, result.Success)
	rec, _ := fx.hanging.GetByID(context.Background(), "H1")
	assert.True(t, rec.IsFictitiousDelivered)
	assert.Equal(t, "tester", rec.FictitiousDeliveryOperator)
	require.Len(t, rec.OrderData.Orders, 1)
	assert.Equal(t, []etorder.OrderStatus{etorder.StatusFictitiousDelivered}, fx.statusLog.Statuses(7))

	// repeating the call fails: the flag is one-way
	again := fx.service.DeliverFictitiousBatch(context.Background(), map[string]string{"H1": "acc1"}, "tester")
	assert.False(t, again.Success)
}

// ---- fictitious shipment ----

func liveOrderSet(n int) func(ctx context.Context, account, supplyID string) ([]gateway.SupplyOrder, error) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
		orders := make([]gateway.SupplyOrder, 0, n)
		for i := 0; i < n; i++ {
			orders = append(orders, gateway.SupplyOrder{
				ID:             int64(i + 1),
				Article:        "wild5",
				NMID:           1,
				ConvertedPrice: 500,
				CreatedAt:      base.Add(time.Duration(i) * time.Minute),
			})
		}
		return orders, nil
	}
}

func allShippable(_ context.Context, _ string, orderIDs []int64) (map[int64]etorder.StatusPair, error) {
	pairs := make(map[int64]etorder.StatusPair, len(orderIDs))
	for _, id := range orderIDs {
		pairs[id] = etorder.StatusPair{SupplierStatus: "complete", WBStatus: "waiting"}
	}
	return pairs, nil
}

func hangingRecord(supplyID string) *etsupply.HangingRecord {
	return &etsupply.HangingRecord{SupplyID: supplyID, Account: "acc1"}
}

func TestShipFictitiousClampsToEligible(t *testing.T) {
	fake := &gatewaytest.Fake{GetSupplyOrdersFn: liveOrderSet(7), GetOrderStatusesFn: allShippable}
	fx := newFixture(t, fake)
	require.NoError(t, fx.hanging.Save(context.Background(), hangingRecord("H1")))

	result, err := fx.service.ShipFictitious(context.Background(), &ShipRequest{
		Supplies: map[string]string{"H1": "acc1"}, Quantity: 100, Operator: "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, 7, result.ShippedCount)
	assert.Equal(t, 100, result.RequestedCount)
	assert.Equal(t, map[string]int{"H1": 7}, result.Supplies)
	assert.Len(t, result.Stickers, 7)
}

func TestShipFictitiousPoolIsLiveOrderSet(t *testing.T) {
	// stale snapshot knows one order, the marketplace reports two
	fake := &gatewaytest.Fake{GetSupplyOrdersFn: liveOrderSet(2), GetOrderStatusesFn: allShippable}
	fx := newFixture(t, fake)
	require.NoError(t, fx.hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID: "H1",
		Account:  "acc1",
		OrderData: etsupply.OrderSnapshot{Orders: []etsupply.SnapshotOrder{
			{ID: 1, Wild: "wild5", NMID: 1, Price: 500},
		}},
	}))

	result, err := fx.service.ShipFictitious(context.Background(), &ShipRequest{
		Supplies: map[string]string{"H1": "acc1"}, Quantity: 2, Operator: "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ShippedCount)

	// the stored snapshot was refreshed from the live set
	rec, _ := fx.hanging.GetByID(context.Background(), "H1")
	assert.Len(t, rec.OrderData.Orders, 2)
}

func TestShipFictitiousSpansSupplies(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, supplyID string) ([]gateway.SupplyOrder, error) {
			if supplyID == "H1" {
				return []gateway.SupplyOrder{
					{ID: 1, Article: "wild5", NMID: 1, ConvertedPrice: 500, CreatedAt: base},
				}, nil
			}
			return []gateway.SupplyOrder{
				{ID: 2, Article: "wild7", NMID: 2, ConvertedPrice: 700, CreatedAt: base.Add(time.Minute)},
			}, nil
		},
		GetOrderStatusesFn: allShippable,
	}
	fx := newFixture(t, fake)
	require.NoError(t, fx.hanging.Save(context.Background(), hangingRecord("H1")))
	require.NoError(t, fx.hanging.Save(context.Background(), hangingRecord("H2")))

	result, err := fx.service.ShipFictitious(context.Background(), &ShipRequest{
		Supplies: map[string]string{"H1": "acc1", "H2": "acc1"}, Quantity: 5, Operator: "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ShippedCount)
	assert.Equal(t, map[string]int{"H1": 1, "H2": 1}, result.Supplies)
}

func TestShipFictitiousNeverReshipsOrders(t *testing.T) {
	fake := &gatewaytest.Fake{GetSupplyOrdersFn: liveOrderSet(3), GetOrderStatusesFn: allShippable}
	fx := newFixture(t, fake)
	require.NoError(t, fx.hanging.Save(context.Background(), hangingRecord("H1")))

	first, err := fx.service.ShipFictitious(context.Background(), &ShipRequest{
		Supplies: map[string]string{"H1": "acc1"}, Quantity: 2, Operator: "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first.ShippedCount)
	// oldest first
	assert.Equal(t, int64(1), first.Stickers[0].OrderID)
	assert.Equal(t, int64(2), first.Stickers[1].OrderID)
	// supply not yet exhausted
	assert.Contains(t, fx.statusLog.Statuses(1), etorder.StatusPartiallyShipped)
	assert.NotContains(t, fx.statusLog.Statuses(1), etorder.StatusFictitiousDelivered)

	second, err := fx.service.ShipFictitious(context.Background(), &ShipRequest{
		Supplies: map[string]string{"H1": "acc1"}, Quantity: 2, Operator: "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.ShippedCount)
	assert.Equal(t, int64(3), second.Stickers[0].OrderID)
	// the last live order shipped, the supply is now fully dispatched
	assert.Contains(t, fx.statusLog.Statuses(3), etorder.StatusFictitiousDelivered)

	// everything shipped now, a third call has nothing left
	_, err = fx.service.ShipFictitious(context.Background(), &ShipRequest{
		Supplies: map[string]string{"H1": "acc1"}, Quantity: 1, Operator: "tester",
	})
	assert.Error(t, err)
}

func TestShipFictitiousZeroEligibleFails(t *testing.T) {
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: liveOrderSet(3),
		GetOrderStatusesFn: func(_ context.Context, _ string, orderIDs []int64) (map[int64]etorder.StatusPair, error) {
			pairs := make(map[int64]etorder.StatusPair, len(orderIDs))
			for _, id := range orderIDs {
				pairs[id] = etorder.StatusPair{SupplierStatus: "new", WBStatus: "sold"}
			}
			return pairs, nil
		},
	}
	fx := newFixture(t, fake)
	require.NoError(t, fx.hanging.Save(context.Background(), hangingRecord("H1")))

	_, err := fx.service.ShipFictitious(context.Background(), &ShipRequest{
		Supplies: map[string]string{"H1": "acc1"}, Quantity: 1, Operator: "tester",
	})
	assert.Error(t, err)
}

func TestShipFictitiousCommitsOnlyLabeledOrders(t *testing.T) {
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn:  liveOrderSet(3),
		GetOrderStatusesFn: allShippable,
		GetStickersFn: func(_ context.Context, _, _ string, orderIDs []int64) (map[int64]gateway.Sticker, error) {
			stickers := make(map[int64]gateway.Sticker)
			for _, id := range orderIDs {
				if id == 2 {
					continue // label generation failed for this order
				}
				stickers[id] = gateway.Sticker{OrderID: id, File: "cGVw"}
			}
			return stickers, nil
		},
	}
	fx := newFixture(t, fake)
	require.NoError(t, fx.hanging.Save(context.Background(), hangingRecord("H1")))

	result, err := fx.service.ShipFictitious(context.Background(), &ShipRequest{
		Supplies: map[string]string{"H1": "acc1"}, Quantity: 3, Operator: "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ShippedCount)

	rec, _ := fx.hanging.GetByID(context.Background(), "H1")
	shipped := rec.ShippedOrderIDs()
	assert.Contains(t, shipped, int64(1))
	assert.Contains(t, shipped, int64(3))
	assert.NotContains(t, shipped, int64(2))
}

// ---- ERP line enrichment ----

func TestMoveOrdersEnrichesErpLinesFromLiveOrders(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := &gatewaytest.Fake{
		// the supply listing came back without pricing
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			return []gateway.SupplyOrder{
				{ID: 1, Article: "wild5", CreatedAt: base},
			}, nil
		},
		GetSupplyInfoFn: func(_ context.Context, _, supplyID string) (*gateway.SupplyInfo, error) {
			return &gateway.SupplyInfo{ID: supplyID, Name: "Поставка_ТЕХ"}, nil
		},
		// the account order list knows the price and nomenclature
		GetOrdersFn: func(_ context.Context, _ string) ([]gateway.SupplyOrder, error) {
			return []gateway.SupplyOrder{
				{ID: 1, Article: "wild5", NMID: 111, ConvertedPrice: 1500, CreatedAt: base},
			}, nil
		},
	}
	fx := newFixture(t, fake)

	_, err := fx.service.MoveOrders(context.Background(), &MoveRequest{
		Orders: map[string]MoveProductGroup{
			"wild5": {
				Supplies:    []MoveSupplySource{{Account: "acc1", SupplyID: "S1", OrderIDs: []int64{1}}},
				RemoveCount: 1,
			},
		},
		MoveToFinal: true,
		Operator:    "tester",
	})
	require.NoError(t, err)

	require.Len(t, *fx.erpBodies, 1)
	payload := (*fx.erpBodies)[0]
	require.Len(t, payload.Accounts, 1)
	require.Len(t, payload.Accounts[0].Data, 1)
	require.Len(t, payload.Accounts[0].Data[0].Supplies, 1)
	require.Len(t, payload.Accounts[0].Data[0].Supplies[0].Orders, 1)
	sent := payload.Accounts[0].Data[0].Supplies[0].Orders[0]
	assert.Equal(t, int64(1500), sent.Price)
	assert.Equal(t, int64(111), sent.NMID)
}

// ---- delivered logging ----

func TestLogDeliveredOnlyMarksRequestedOrders(t *testing.T) {
	fx := newFixture(t, &gatewaytest.Fake{})

	// the ledger knows two orders for S1, the delivery report names one
	require.NoError(t, fx.statusLog.InsertBatch(context.Background(), []etorder.StatusLogEntry{
		{OrderID: 1, Status: etorder.StatusInFinalSupply, SupplyID: "S1", Account: "acc1"},
		{OrderID: 2, Status: etorder.StatusInFinalSupply, SupplyID: "S1", Account: "acc1"},
	}))

	err := fx.service.LogDelivered(context.Background(), []DeliveredOrder{
		{OrderID: 1, Account: "acc1", SupplyID: "S1"},
	}, "tester")
	require.NoError(t, err)

	assert.Contains(t, fx.statusLog.Statuses(1), etorder.StatusDelivered)
	assert.NotContains(t, fx.statusLog.Statuses(2), etorder.StatusDelivered)
}
