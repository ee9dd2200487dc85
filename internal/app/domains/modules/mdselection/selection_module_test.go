package mdselection

import (
	"testing"
	"time"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/entity/etsupply"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordersAt(times ...time.Time) []etorder.Order {
	orders := make([]etorder.Order, 0, len(times))
	for i, ts := range times {
		orders = append(orders, etorder.Order{ID: int64(i + 1), CreatedAt: ts})
	}
	return orders
}

func TestSelectFinalTakesOldestFirst(t *testing.T) {
	m := NewSelectionModule()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pool := ordersAt(base, base.Add(5*time.Minute), base.Add(10*time.Minute))

	picked := m.Select(pool, 2, etsupply.DestinationFinal)

	require.Len(t, picked, 2)
	assert.Equal(t, int64(1), picked[0].ID)
	assert.Equal(t, int64(2), picked[1].ID)
}

func TestSelectHangingTakesNewestFirst(t *testing.T) {
	m := NewSelectionModule()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pool := ordersAt(base, base.Add(5*time.Minute), base.Add(10*time.Minute))

	picked := m.Select(pool, 2, etsupply.DestinationHanging)

	require.Len(t, picked, 2)
	assert.Equal(t, int64(3), picked[0].ID)
	assert.Equal(t, int64(2), picked[1].ID)
}

func TestSelectClampsOnShortfall(t *testing.T) {
	m := NewSelectionModule()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pool := ordersAt(base, base.Add(time.Minute))

	picked := m.Select(pool, 100, etsupply.DestinationFinal)

	assert.Len(t, picked, 2)
}

func TestSelectZeroCountSelectsNothing(t *testing.T) {
	m := NewSelectionModule()
	pool := ordersAt(time.Now())

	assert.Empty(t, m.Select(pool, 0, etsupply.DestinationFinal))
	assert.Empty(t, m.Select(pool, -3, etsupply.DestinationHanging))
	assert.Empty(t, m.Select(nil, 5, etsupply.DestinationFinal))
}

func TestSelectTieBreaksByIDDeterministically(t *testing.T) {
	m := NewSelectionModule()
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pool := []etorder.Order{
		{ID: 30, CreatedAt: ts},
		{ID: 10, CreatedAt: ts},
		{ID: 20, CreatedAt: ts},
	}

	final := m.Select(pool, 2, etsupply.DestinationFinal)
	require.Len(t, final, 2)
	assert.Equal(t, int64(10), final[0].ID)
	assert.Equal(t, int64(20), final[1].ID)

	hanging := m.Select(pool, 2, etsupply.DestinationHanging)
	require.Len(t, hanging, 2)
	assert.Equal(t, int64(30), hanging[0].ID)
	assert.Equal(t, int64(20), hanging[1].ID)
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	m := NewSelectionModule()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pool := ordersAt(base.Add(10*time.Minute), base, base.Add(5*time.Minute))

	m.Select(pool, 3, etsupply.DestinationFinal)

	assert.Equal(t, int64(1), pool[0].ID)
	assert.Equal(t, int64(2), pool[1].ID)
	assert.Equal(t, int64(3), pool[2].ID)
}

func TestGroupByWild(t *testing.T) {
	m := NewSelectionModule()
	groups := m.GroupByWild([]etorder.Order{
		{ID: 1, WildCode: "wild5"},
		{ID: 2, WildCode: "wild5"},
		{ID: 3, WildCode: "wild9"},
	})

	assert.Len(t, groups["wild5"], 2)
	assert.Len(t, groups["wild9"], 1)
}
