package etorder

import "time"

// OrderStatus is one step of the assembly-task lifecycle. The forward chain is
// NEW → IN_TECHNICAL_SUPPLY | IN_HANGING_SUPPLY → IN_FINAL_SUPPLY → SENT_TO_1C
// → DELIVERED; the remaining statuses are terminal side states.
type OrderStatus string

const (
	StatusNew                     OrderStatus = "NEW"
	StatusInTechnicalSupply       OrderStatus = "IN_TECHNICAL_SUPPLY"
	StatusInHangingSupply         OrderStatus = "IN_HANGING_SUPPLY"
	StatusInFinalSupply           OrderStatus = "IN_FINAL_SUPPLY"
	StatusSentTo1C                OrderStatus = "SENT_TO_1C"
	StatusDelivered               OrderStatus = "DELIVERED"
	StatusFictitiousDelivered     OrderStatus = "FICTITIOUS_DELIVERED"
	StatusPartiallyShipped        OrderStatus = "PARTIALLY_SHIPPED"
	StatusBlockedAlreadyDelivered OrderStatus = "BLOCKED_ALREADY_DELIVERED"
	StatusBlockedCanceled         OrderStatus = "BLOCKED_CANCELED"
	StatusBlockedInvalidStatus    OrderStatus = "BLOCKED_INVALID_STATUS"
	StatusShippedWithBlock        OrderStatus = "SHIPPED_WITH_BLOCK"
)

// Marketplace supplier statuses the lifecycle rules key on.
const (
	SupplierStatusComplete = "complete"
	SupplierStatusCancel   = "cancel"
	// SupplierStatusError is the placeholder written when the remote status
	// lookup itself failed; it never validates as movable or shippable.
	SupplierStatusError = "error"
)

// WBStatusWaiting is the marketplace-side status required for fictitious
// shipment eligibility.
const WBStatusWaiting = "waiting"

// Order is one marketplace assembly task mirrored locally. Orders are never
// created or deleted here; only observed status and supply membership change.
type Order struct {
	ID        int64
	WildCode  string
	Account   string
	SupplyID  string // current marketplace supply; empty when outside any supply
	NMID      int64
	Price     int64 // marketplace currency minor units
	CreatedAt time.Time
}

// StatusPair is the (supplierStatus, wbStatus) snapshot the marketplace
// reports for one order.
type StatusPair struct {
	SupplierStatus string
	WBStatus       string
}

// ErrorPair is the placeholder used when a whole account's status lookup
// failed: the move policy classifies it as BLOCKED_INVALID_STATUS, so the
// account's batch degrades to "nothing moves".
func ErrorPair() StatusPair {
	return StatusPair{SupplierStatus: SupplierStatusError, WBStatus: SupplierStatusError}
}

// BlockReason maps a failed move-eligibility check to the specific blocked
// status recorded in the ledger.
func BlockReason(pair StatusPair) OrderStatus {
	switch pair.SupplierStatus {
	case SupplierStatusComplete:
		return StatusBlockedAlreadyDelivered
	case SupplierStatusCancel:
		return StatusBlockedCanceled
	default:
		return StatusBlockedInvalidStatus
	}
}

// StatusLogEntry is one append-only ledger fact. Duplicate
// (order_id, status, supply_id, account) tuples are suppressed on insert.
type StatusLogEntry struct {
	OrderID   int64
	Status    OrderStatus
	SupplyID  string // empty means NULL (order outside any supply)
	Account   string
	Operator  string
	CreatedAt time.Time
}
