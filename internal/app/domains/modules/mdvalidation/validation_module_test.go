package mdvalidation

import (
	"context"
	"errors"
	"testing"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/gateway/gatewaytest"
	"wbhub/internal/app/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestPolicyDivergence(t *testing.T) {
	m := NewValidationModule(&gatewaytest.Fake{}, logger.Nop())

	// a fresh order moves but does not ship
	pair := etorder.StatusPair{SupplierStatus: "new", WBStatus: "sold"}
	assert.True(t, m.MoveEligible(pair))
	assert.False(t, m.ShipmentEligible(pair))

	// a confirmed waiting order ships but is blocked from moving
	done := etorder.StatusPair{SupplierStatus: "complete", WBStatus: "waiting"}
	assert.False(t, m.MoveEligible(done))
	assert.True(t, m.ShipmentEligible(done))

	// complete without waiting ships nowhere
	sold := etorder.StatusPair{SupplierStatus: "complete", WBStatus: "sold"}
	assert.False(t, m.ShipmentEligible(sold))

	// canceled orders fail both policies
	canceled := etorder.StatusPair{SupplierStatus: "cancel", WBStatus: "canceled"}
	assert.False(t, m.MoveEligible(canceled))
	assert.False(t, m.ShipmentEligible(canceled))

	// error placeholders fail both policies
	assert.False(t, m.MoveEligible(etorder.ErrorPair()))
	assert.False(t, m.ShipmentEligible(etorder.ErrorPair()))
}

func TestFetchStatusesDegradesWholeAccountOnFailure(t *testing.T) {
	fake := &gatewaytest.Fake{
		GetOrderStatusesFn: func(ctx context.Context, account string, orderIDs []int64) (map[int64]etorder.StatusPair, error) {
			return nil, errors.New("network down")
		},
	}
	m := NewValidationModule(fake, logger.Nop())

	pairs := m.FetchStatuses(context.Background(), "acc1", []int64{1, 2, 3})

	assert.Len(t, pairs, 3)
	for _, pair := range pairs {
		assert.Equal(t, etorder.ErrorPair(), pair)
	}
}

func TestFetchStatusesFillsMissingIDsWithErrorPair(t *testing.T) {
	fake := &gatewaytest.Fake{
		GetOrderStatusesFn: func(ctx context.Context, account string, orderIDs []int64) (map[int64]etorder.StatusPair, error) {
			return map[int64]etorder.StatusPair{
				1: {SupplierStatus: "new", WBStatus: "waiting"},
			}, nil
		},
	}
	m := NewValidationModule(fake, logger.Nop())

	pairs := m.FetchStatuses(context.Background(), "acc1", []int64{1, 2})

	assert.Equal(t, "new", pairs[1].SupplierStatus)
	assert.Equal(t, etorder.ErrorPair(), pairs[2])
}

func TestSplitForMoveAssignsBlockReasons(t *testing.T) {
	m := NewValidationModule(&gatewaytest.Fake{}, logger.Nop())

	pairs := map[int64]etorder.StatusPair{
		1: {SupplierStatus: "new", WBStatus: "waiting"},
		2: {SupplierStatus: "complete", WBStatus: "waiting"},
		3: {SupplierStatus: "cancel", WBStatus: "canceled"},
		4: etorder.ErrorPair(),
	}

	movable, blocked := m.SplitForMove([]int64{1, 2, 3, 4}, pairs)

	assert.Equal(t, []int64{1}, movable)
	assert.Equal(t, etorder.StatusBlockedAlreadyDelivered, blocked[2])
	assert.Equal(t, etorder.StatusBlockedCanceled, blocked[3])
	assert.Equal(t, etorder.StatusBlockedInvalidStatus, blocked[4])
}
