package svreconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"wbhub/internal/app/domains/entity/etsupply"
	"wbhub/internal/app/domains/gateway"
	"wbhub/internal/app/domains/gateway/gatewaytest"
	"wbhub/internal/app/domains/repo/repotest"
	"wbhub/internal/app/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReconciler(fake *gatewaytest.Fake, hanging *repotest.MemHanging, empties *repotest.MemEmptyTracker) *Reconciler {
	return NewReconciler(fake, hanging, &repotest.MemOperation{}, empties, time.Minute, 30, logger.Nop())
}

func snapshotWith(ids ...int64) etsupply.OrderSnapshot {
	orders := make([]etsupply.SnapshotOrder, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, etsupply.SnapshotOrder{ID: id, Wild: "wild5"})
	}
	return etsupply.OrderSnapshot{Orders: orders}
}

func liveOrders(ids ...int64) []gateway.SupplyOrder {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]gateway.SupplyOrder, 0, len(ids))
	for i, id := range ids {
		out = append(out, gateway.SupplyOrder{
			ID: id, Article: "wild5", NMID: 1, ConvertedPrice: 100,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

// assemblingSupplies reports every listed supply as still assembling, which
// keeps auto-promotion away from them.
func assemblingSupplies(ids ...string) func(context.Context, string) ([]gateway.SupplyInfo, error) {
	return func(context.Context, string) ([]gateway.SupplyInfo, error) {
		out := make([]gateway.SupplyInfo, 0, len(ids))
		for _, id := range ids {
			out = append(out, gateway.SupplyInfo{ID: id, Done: false})
		}
		return out, nil
	}
}

func TestRunOnceRecordsOrderChanges(t *testing.T) {
	hanging := repotest.NewMemHanging()
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: snapshotWith(1, 2),
	}))

	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			return liveOrders(2, 3), nil // 1 left, 3 arrived
		},
		ListSuppliesFn: assemblingSupplies("H1"),
	}
	r := newReconciler(fake, hanging, &repotest.MemEmptyTracker{})

	r.RunOnce(context.Background())

	rec, err := hanging.GetByID(context.Background(), "H1")
	require.NoError(t, err)

	// snapshot overwritten with the live set
	gotIDs := make([]int64, 0, len(rec.OrderData.Orders))
	for _, o := range rec.OrderData.Orders {
		gotIDs = append(gotIDs, o.ID)
	}
	assert.ElementsMatch(t, []int64{2, 3}, gotIDs)

	// one added, one removed, same session
	require.Len(t, rec.ChangesLog, 2)
	byType := make(map[string]int64)
	for _, c := range rec.ChangesLog {
		byType[c.ChangeType] = c.OrderID
		assert.NotEmpty(t, c.SyncSession)
		assert.Equal(t, rec.ChangesLog[0].SyncSession, c.SyncSession)
	}
	assert.Equal(t, int64(3), byType[etsupply.ChangeAdded])
	assert.Equal(t, int64(1), byType[etsupply.ChangeRemoved])
}

func TestRunOnceNoChangesLeavesLogEmpty(t *testing.T) {
	hanging := repotest.NewMemHanging()
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: snapshotWith(1),
	}))

	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			return liveOrders(1), nil
		},
		ListSuppliesFn: assemblingSupplies("H1"),
	}
	r := newReconciler(fake, hanging, &repotest.MemEmptyTracker{})

	r.RunOnce(context.Background())

	rec, _ := hanging.GetByID(context.Background(), "H1")
	assert.Empty(t, rec.ChangesLog)
}

func TestAutoPromoteMarksDeliveredSupplies(t *testing.T) {
	hanging := repotest.NewMemHanging()
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: snapshotWith(1),
	}))

	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			return liveOrders(1), nil
		},
		ListSuppliesFn: func(context.Context, string) ([]gateway.SupplyInfo, error) {
			// marketplace already switched the supply to delivery
			return []gateway.SupplyInfo{{ID: "H1", Done: true}}, nil
		},
	}
	r := newReconciler(fake, hanging, &repotest.MemEmptyTracker{})

	r.RunOnce(context.Background())

	rec, _ := hanging.GetByID(context.Background(), "H1")
	assert.True(t, rec.IsFictitiousDelivered)
	assert.Equal(t, AutoSystemOperator, rec.FictitiousDeliveryOperator)
}

func TestAutoPromoteSkipsAccountWithFailedLookup(t *testing.T) {
	hanging := repotest.NewMemHanging()
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: snapshotWith(1),
	}))

	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			return liveOrders(1), nil
		},
		ListSuppliesFn: func(context.Context, string) ([]gateway.SupplyInfo, error) {
			return nil, errors.New("marketplace unavailable")
		},
	}
	r := newReconciler(fake, hanging, &repotest.MemEmptyTracker{})

	r.RunOnce(context.Background())

	// a failed supply listing must never promote the account's records
	rec, _ := hanging.GetByID(context.Background(), "H1")
	assert.False(t, rec.IsFictitiousDelivered)
}

func TestAutoPromoteSkipsEmptyRecords(t *testing.T) {
	hanging := repotest.NewMemHanging()
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: snapshotWith(1),
	}))

	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			return nil, nil // drained externally
		},
		ListSuppliesFn: func(context.Context, string) ([]gateway.SupplyInfo, error) {
			return []gateway.SupplyInfo{{ID: "H1", Done: true}}, nil
		},
	}
	r := newReconciler(fake, hanging, &repotest.MemEmptyTracker{})

	r.RunOnce(context.Background())

	// emptiness feeds the cleanup counter, not the delivery flag
	rec, _ := hanging.GetByID(context.Background(), "H1")
	assert.False(t, rec.IsFictitiousDelivered)
}

func TestCleanupEmptyRequiresTwoPasses(t *testing.T) {
	hanging := repotest.NewMemHanging()
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: snapshotWith(1),
	}))

	var deleted []string
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			return nil, nil
		},
		ListSuppliesFn: assemblingSupplies("H1"),
		DeleteSupplyFn: func(_ context.Context, _, supplyID string) error {
			deleted = append(deleted, supplyID)
			return nil
		},
	}
	empties := &repotest.MemEmptyTracker{}
	r := newReconciler(fake, hanging, empties)

	// first pass only counts
	r.RunOnce(context.Background())
	assert.Empty(t, deleted)
	assert.Equal(t, int64(1), empties.Count("H1"))
	_, err := hanging.GetByID(context.Background(), "H1")
	require.NoError(t, err)

	// second consecutive empty pass deletes supply and record
	r.RunOnce(context.Background())
	assert.Equal(t, []string{"H1"}, deleted)
	_, err = hanging.GetByID(context.Background(), "H1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, empties.Count("H1"))
}

func TestCleanupEmptyCounterResetsWhenOrdersReturn(t *testing.T) {
	hanging := repotest.NewMemHanging()
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: snapshotWith(1),
	}))

	empty := true
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			if empty {
				return nil, nil
			}
			return liveOrders(1), nil
		},
		ListSuppliesFn: assemblingSupplies("H1"),
	}
	empties := &repotest.MemEmptyTracker{}
	r := newReconciler(fake, hanging, empties)

	r.RunOnce(context.Background())
	assert.Equal(t, int64(1), empties.Count("H1"))

	// orders came back, the counter resets to zero
	empty = false
	r.RunOnce(context.Background())
	assert.Zero(t, empties.Count("H1"))
}

func TestCleanupEmptyReverifiesBeforeDelete(t *testing.T) {
	hanging := repotest.NewMemHanging()
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:  "H1",
		Account:   "acc1",
		OrderData: snapshotWith(1),
	}))

	calls := 0
	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			calls++
			// sync passes see empty, the pre-delete verification sees an order
			if calls == 3 {
				return liveOrders(9), nil
			}
			return nil, nil
		},
		ListSuppliesFn: assemblingSupplies("H1"),
		DeleteSupplyFn: func(context.Context, string, string) error {
			t.Fatal("delete must not run when the final check finds orders")
			return nil
		},
	}
	r := newReconciler(fake, hanging, &repotest.MemEmptyTracker{})

	r.RunOnce(context.Background())
	r.RunOnce(context.Background())

	_, err := hanging.GetByID(context.Background(), "H1")
	require.NoError(t, err)
}

func TestRetentionTrimsOldChanges(t *testing.T) {
	hanging := repotest.NewMemHanging()
	old := etsupply.ChangeEntry{Timestamp: time.Now().AddDate(0, 0, -60), ChangeType: etsupply.ChangeAdded, OrderID: 5}
	require.NoError(t, hanging.Save(context.Background(), &etsupply.HangingRecord{
		SupplyID:   "H1",
		Account:    "acc1",
		OrderData:  snapshotWith(1),
		ChangesLog: []etsupply.ChangeEntry{old},
	}))

	fake := &gatewaytest.Fake{
		GetSupplyOrdersFn: func(_ context.Context, _, _ string) ([]gateway.SupplyOrder, error) {
			return liveOrders(1), nil
		},
		ListSuppliesFn: assemblingSupplies("H1"),
	}
	r := newReconciler(fake, hanging, &repotest.MemEmptyTracker{})

	r.RunOnce(context.Background())

	rec, _ := hanging.GetByID(context.Background(), "H1")
	for _, c := range rec.ChangesLog {
		assert.NotEqual(t, int64(5), c.OrderID)
	}
}

func TestStopPreventsFurtherPasses(t *testing.T) {
	fake := &gatewaytest.Fake{}
	r := newReconciler(fake, repotest.NewMemHanging(), &repotest.MemEmptyTracker{})

	r.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after Stop and context cancel")
	}
}
