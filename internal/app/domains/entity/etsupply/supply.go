package etsupply

import (
	"strings"
	"time"
)

// Destination selects where orders move: the account's final supply or a
// fresh hanging supply. The destination drives the selection order (final
// drains oldest first, hanging picks newest first).
type Destination int

const (
	DestinationHanging Destination = iota
	DestinationFinal
)

// Name suffixes used when deriving a final supply name from a technical one.
// Kept byte-exact: the ERP matches supplies by name.
const (
	TechSuffixCyrillic  = "_ТЕХ"
	TechSuffixLatin     = "_TEX"
	FinalSuffixCyrillic = "_ФИНАЛ"
)

// Supply is a marketplace-side container of orders, scoped to one account.
type Supply struct {
	ID        string
	Account   string
	Name      string
	Done      bool // marketplace: false = assembling, true = in delivery
	CreatedAt time.Time
}

// FinalName derives the final-supply name from a technical supply name:
// strip the technical suffix, append the final suffix.
func FinalName(name string) string {
	name = strings.TrimSuffix(name, TechSuffixCyrillic)
	name = strings.TrimSuffix(name, TechSuffixLatin)
	return name + FinalSuffixCyrillic
}

// SnapshotOrder is one order inside a hanging supply's stored snapshot.
type SnapshotOrder struct {
	ID          int64  `json:"id"`
	Wild        string `json:"wild"`
	NMID        int64  `json:"nm_id"`
	Price       int64  `json:"price"`
	SubjectName string `json:"subject_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// OrderSnapshot is the order set of a hanging supply at creation or last
// reconciliation time. Source tags how the record was created
// (e.g. "created_for_move").
type OrderSnapshot struct {
	Orders []SnapshotOrder `json:"orders"`
	Source string          `json:"source,omitempty"`
}

// ShippedOrder marks one order fictitiously dispatched out of a hanging
// supply.
type ShippedOrder struct {
	OrderID   int64     `json:"order_id"`
	ShippedAt time.Time `json:"shipped_at"`
	Operator  string    `json:"operator"`
}

// Change types recorded by reconciliation.
const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
)

// ChangeEntry is one append-only reconciliation delta.
type ChangeEntry struct {
	Timestamp   time.Time     `json:"timestamp"`
	ChangeType  string        `json:"change_type"`
	OrderID     int64         `json:"order_id"`
	OrderData   SnapshotOrder `json:"order_data"`
	SyncSession string        `json:"sync_session"`
}

// HangingRecord is the local record of one hanging (virtual) supply.
type HangingRecord struct {
	SupplyID                   string
	Account                    string
	OrderData                  OrderSnapshot
	ShippedOrders              []ShippedOrder
	ChangesLog                 []ChangeEntry
	IsFictitiousDelivered      bool // one-way flag, never reverts
	FictitiousDeliveredAt      *time.Time
	FictitiousDeliveryOperator string
	CreatedAt                  time.Time
	Operator                   string
}

// ShippedOrderIDs returns the set of order ids already fictitiously shipped
// out of this supply.
func (r *HangingRecord) ShippedOrderIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(r.ShippedOrders))
	for _, s := range r.ShippedOrders {
		ids[s.OrderID] = struct{}{}
	}
	return ids
}

// FullyProcessed reports whether every snapshot order has been shipped out.
// Fully processed fictitious-delivered records are suppressed from listings
// but never deleted.
func (r *HangingRecord) FullyProcessed() bool {
	if len(r.OrderData.Orders) == 0 {
		return false
	}
	shipped := r.ShippedOrderIDs()
	for _, o := range r.OrderData.Orders {
		if _, ok := shipped[o.ID]; !ok {
			return false
		}
	}
	return true
}

// FinalRecord tracks a final supply. At most one is active per account; the
// supply is active while the marketplace still reports done=false for it.
type FinalRecord struct {
	SupplyID   string
	Account    string
	SupplyName string
	CreatedAt  time.Time
}
