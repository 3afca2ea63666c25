package model

import "time"

type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionSale       TransactionType = "sale"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionOther      TransactionType = "other"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPurchase, TransactionSale, TransactionAdjustment, TransactionOther:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

const DefaultCurrency = "INR"

type AccountTransaction struct {
	BaseModel
	ChemicalID      *int64            `gorm:"index" json:"chemical_id"`
	TransactionType TransactionType   `gorm:"type:varchar(32);not null;index" json:"transaction_type"`
	Quantity        *float64          `gorm:"type:numeric(14,3)" json:"quantity"`
	Unit            *string           `gorm:"type:varchar(50)" json:"unit"`
	Amount          float64           `gorm:"type:numeric(14,2);not null;default:0" json:"amount"`
	Currency        string            `gorm:"type:varchar(8);not null;default:INR" json:"currency"`
	Supplier        *string           `gorm:"type:varchar(255)" json:"supplier"`
	DeliveryDate    *time.Time        `json:"delivery_date"`
	Status          TransactionStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	Notes           *string           `gorm:"type:text" json:"notes"`
	CreatedBy       string            `gorm:"type:varchar(128);not null;index" json:"created_by"`
	ApprovedBy      *string           `gorm:"type:varchar(128)" json:"approved_by"`
	ApprovedAt      *time.Time        `json:"approved_at"`
}

func (*AccountTransaction) TableName() string { return "account_transactions" }

type PurchaseOrderStatus string

const (
	OrderDraft     PurchaseOrderStatus = "draft"
	OrderSubmitted PurchaseOrderStatus = "submitted"
	OrderApproved  PurchaseOrderStatus = "approved"
	OrderReceived  PurchaseOrderStatus = "received"
	OrderCancelled PurchaseOrderStatus = "cancelled"
)

func (s PurchaseOrderStatus) Valid() bool {
	switch s {
	case OrderDraft, OrderSubmitted, OrderApproved, OrderReceived, OrderCancelled:
		return true
	}
	return false
}

type PurchaseOrder struct {
	BaseModel
	OrderNumber      string               `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	Supplier         string               `gorm:"type:varchar(255);not null;index" json:"supplier"`
	TotalAmount      float64              `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`
	Currency         string               `gorm:"type:varchar(8);not null;default:INR" json:"currency"`
	Status           PurchaseOrderStatus  `gorm:"type:varchar(16);not null;default:draft;index" json:"status"`
	OrderDate        time.Time            `gorm:"not null" json:"order_date"`
	ExpectedDelivery *time.Time           `json:"expected_delivery"`
	Notes            *string              `gorm:"type:text" json:"notes"`
	CreatedBy        string               `gorm:"type:varchar(128);not null" json:"created_by"`
	Items            []*PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (*PurchaseOrder) TableName() string { return "purchase_orders" }

type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID int64   `gorm:"not null;index" json:"purchase_order_id"`
	ChemicalID      *int64  `gorm:"index" json:"chemical_id"`
	Quantity        float64 `gorm:"type:numeric(14,3);not null;check:quantity > 0" json:"quantity"`
	Unit            string  `gorm:"type:varchar(50);not null" json:"unit"`
	UnitPrice       float64 `gorm:"type:numeric(14,2);not null;default:0" json:"unit_price"`
	TotalPrice      float64 `gorm:"type:numeric(14,2);not null;default:0" json:"total_price"`
	Notes           *string `gorm:"type:text" json:"notes"`
}

func (*PurchaseOrderItem) TableName() string { return "purchase_order_items" }
