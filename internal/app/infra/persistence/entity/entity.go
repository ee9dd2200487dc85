package entity

import (
	"time"

	"gorm.io/datatypes"
)

// OrderStatusLog is one append-only lifecycle fact. The partial unique index
// over (order_id, status, supply_id, account) plus ON CONFLICT DO NOTHING on
// insert gives the ledger its idempotency.
type OrderStatusLog struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64     `gorm:"column:order_id;not null;index:idx_status_log_order;uniqueIndex:uk_status_log_tuple"`
	Status    string    `gorm:"column:status;type:varchar(32);not null;uniqueIndex:uk_status_log_tuple"`
	SupplyID  *string   `gorm:"column:supply_id;type:varchar(64);uniqueIndex:uk_status_log_tuple"`
	Account   string    `gorm:"column:account;type:varchar(128);not null;uniqueIndex:uk_status_log_tuple"`
	Operator  *string   `gorm:"column:operator;type:varchar(128)"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName maps to the ledger table.
func (OrderStatusLog) TableName() string {
	return "order_status_log"
}

// HangingSupply is one hanging (virtual) supply record.
type HangingSupply struct {
	ID                         int64          `gorm:"column:id;primaryKey;autoIncrement"`
	SupplyID                   string         `gorm:"column:supply_id;type:varchar(64);not null;uniqueIndex:uk_hanging_supply"`
	Account                    string         `gorm:"column:account;type:varchar(128);not null;uniqueIndex:uk_hanging_supply"`
	OrderData                  datatypes.JSON `gorm:"column:order_data;type:jsonb;not null"`
	ShippedOrders              datatypes.JSON `gorm:"column:shipped_orders;type:jsonb"`
	ChangesLog                 datatypes.JSON `gorm:"column:changes_log;type:jsonb"`
	IsFictitiousDelivered      bool           `gorm:"column:is_fictitious_delivered;not null;default:false"`
	FictitiousDeliveredAt      *time.Time     `gorm:"column:fictitious_delivered_at"`
	FictitiousDeliveryOperator *string        `gorm:"column:fictitious_delivery_operator;type:varchar(128)"`
	Operator                   *string        `gorm:"column:operator;type:varchar(128)"`
	CreatedAt                  time.Time      `gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName maps to the hanging supplies table.
func (HangingSupply) TableName() string {
	return "hanging_supplies"
}

// FinalSupply tracks a final supply per account.
type FinalSupply struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SupplyID   string    `gorm:"column:supply_id;type:varchar(64);not null;uniqueIndex:uk_final_supply"`
	Account    string    `gorm:"column:account;type:varchar(128);not null;uniqueIndex:uk_final_supply;index:idx_final_account"`
	SupplyName string    `gorm:"column:supply_name;type:varchar(255);not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName maps to the final supplies table.
func (FinalSupply) TableName() string {
	return "final_supplies"
}

// Operation statuses.
const (
	OperationStatusProcessing = "PROCESSING"
	OperationStatusSuccess    = "SUCCESS"
	OperationStatusFailed     = "FAILED"
)

// SupplyOperation records one multi-step operation so a client that lost its
// connection can poll for the persisted result instead of re-submitting.
type SupplyOperation struct {
	ID             int64          `gorm:"column:id;primaryKey;autoIncrement"`
	OperationID    string         `gorm:"column:operation_id;type:varchar(64);not null;uniqueIndex:uk_operation_id"`
	Operator       string         `gorm:"column:operator;type:varchar(128)"`
	RequestPayload datatypes.JSON `gorm:"column:request_payload;type:jsonb"`
	ResponseData   datatypes.JSON `gorm:"column:response_data;type:jsonb"`
	Status         string         `gorm:"column:status;type:varchar(16);not null;default:'PROCESSING'"`
	ErrorMessage   *string        `gorm:"column:error_message;type:text"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;autoCreateTime;index:idx_operation_created"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null;autoUpdateTime"`
	CompletedAt    *time.Time     `gorm:"column:completed_at"`
}

// TableName maps to the operations table.
func (SupplyOperation) TableName() string {
	return "supply_operations"
}

// AssemblyTaskStatus is the local mirror of marketplace order data, refreshed
// by an external sync; reads here avoid marketplace calls for data the ERP
// payload needs.
type AssemblyTaskStatus struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	NMID           int64     `gorm:"column:nm_id"`
	ConvertedPrice int64     `gorm:"column:converted_price"`
	Account        string    `gorm:"column:account;type:varchar(128);not null;index:idx_assembly_account"`
	SupplierStatus string    `gorm:"column:supplier_status;type:text"`
	WBStatus       string    `gorm:"column:wb_status;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	CreatedAtDB    time.Time `gorm:"column:created_at_db;not null;autoCreateTime"`
}

// TableName maps to the status snapshot table.
func (AssemblyTaskStatus) TableName() string {
	return "assembly_task_status_model"
}
