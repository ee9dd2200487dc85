package mdselection

import (
	"sort"

	"wbhub/internal/app/domains/entity/etorder"
	"wbhub/internal/app/domains/entity/etsupply"
)

// SelectionModule picks which concrete orders satisfy a requested quantity.
// Final destinations drain oldest orders first so nothing ages in a
// technical supply; hanging destinations take newest first, leaving the old
// stock available for a real shipment.
type SelectionModule struct{}

// NewSelectionModule creates the selection module.
func NewSelectionModule() *SelectionModule {
	return &SelectionModule{}
}

// Select orders candidates by the destination policy and takes up to count.
// A shortfall clamps silently: the caller learns the real number from the
// returned slice. Ties on creation time break by order id so repeated runs
// over the same candidates pick the same orders.
func (m *SelectionModule) Select(candidates []etorder.Order, count int, dest etsupply.Destination) []etorder.Order {
	if count <= 0 || len(candidates) == 0 {
		return nil
	}

	sorted := make([]etorder.Order, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			if dest == etsupply.DestinationHanging {
				return sorted[i].ID > sorted[j].ID
			}
			return sorted[i].ID < sorted[j].ID
		}
		if dest == etsupply.DestinationHanging {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	if count > len(sorted) {
		count = len(sorted)
	}
	return sorted[:count]
}

// GroupByWild buckets orders by normalized product article.
func (m *SelectionModule) GroupByWild(orders []etorder.Order) map[string][]etorder.Order {
	groups := make(map[string][]etorder.Order)
	for _, o := range orders {
		groups[o.WildCode] = append(groups[o.WildCode], o)
	}
	return groups
}
