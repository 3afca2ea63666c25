package account

import (
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

type IDReq struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

type TransactionReq struct {
	TransactionType model.TransactionType `json:"transaction_type" binding:"required"`
	ChemicalID      *int64                `json:"chemical_id"`
	Quantity        *float64              `json:"quantity" binding:"omitempty,gte=0"`
	Unit            *string               `json:"unit"`
	Amount          float64               `json:"amount" binding:"gte=0"`
	Currency        string                `json:"currency"`
	Supplier        *string               `json:"supplier"`
	DeliveryDate    *time.Time            `json:"delivery_date"`
	Notes           *string               `json:"notes"`
}

// TransactionUpdateReq never carries status; approve and reject move it.
type TransactionUpdateReq struct {
	ID              int64                  `json:"-" uri:"id"`
	TransactionType *model.TransactionType `json:"transaction_type"`
	ChemicalID      *int64                 `json:"chemical_id"`
	Quantity        *float64               `json:"quantity" binding:"omitempty,gte=0"`
	Unit            *string                `json:"unit"`
	Amount          *float64               `json:"amount" binding:"omitempty,gte=0"`
	Currency        *string                `json:"currency"`
	Supplier        *string                `json:"supplier"`
	DeliveryDate    *time.Time             `json:"delivery_date"`
	Notes           *string                `json:"notes"`
}

type TransactionListReq struct {
	common.PageReq
	Type       *model.TransactionType   `form:"transaction_type"`
	Status     *model.TransactionStatus `form:"status"`
	ChemicalID *int64                   `form:"chemical_id"`
	StartDate  *time.Time               `form:"start_date" time_format:"2006-01-02"`
	EndDate    *time.Time               `form:"end_date" time_format:"2006-01-02"`
}

type PurchaseOrderItemReq struct {
	ChemicalID *int64  `json:"chemical_id"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	Notes      *string `json:"notes"`
}

type PurchaseOrderReq struct {
	Supplier         string                    `json:"supplier" binding:"required"`
	TotalAmount      float64                   `json:"total_amount" binding:"gte=0"`
	Currency         string                    `json:"currency"`
	Status           model.PurchaseOrderStatus `json:"status"`
	OrderDate        *time.Time                `json:"order_date"`
	ExpectedDelivery *time.Time                `json:"expected_delivery"`
	Notes            *string                   `json:"notes"`
	Items            []*PurchaseOrderItemReq   `json:"items" binding:"required,min=1"`
}

type PurchaseOrderUpdateReq struct {
	ID               int64                      `json:"-" uri:"id"`
	Supplier         *string                    `json:"supplier"`
	TotalAmount      *float64                   `json:"total_amount" binding:"omitempty,gte=0"`
	Currency         *string                    `json:"currency"`
	Status           *model.PurchaseOrderStatus `json:"status"`
	ExpectedDelivery *time.Time                 `json:"expected_delivery"`
	Notes            *string                    `json:"notes"`
}

type PurchaseOrderListReq struct {
	common.PageReq
	Status   *model.PurchaseOrderStatus `form:"status"`
	Supplier *string                    `form:"supplier"`
}

type RecentReq struct {
	Limit int `form:"limit" binding:"omitempty,gte=0"`
}

type SummaryResp struct {
	TotalPurchases    float64 `json:"total_purchases"`
	TotalTransactions int64   `json:"total_transactions"`
	PendingOrders     int64   `json:"pending_orders"`
	SpentThisMonth    float64 `json:"total_spent_this_month"`
	SpentThisYear     float64 `json:"total_spent_this_year"`
	Currency          string  `json:"currency"`
}

type HistoryResp struct {
	ChemicalID       int64                       `json:"chemical_id"`
	ChemicalName     string                      `json:"chemical_name"`
	TotalPurchased   float64                     `json:"total_purchased"`
	TotalSpent       float64                     `json:"total_spent"`
	LastPurchaseDate *time.Time                  `json:"last_purchase_date"`
	AverageUnitPrice float64                     `json:"average_unit_price"`
	Currency         string                      `json:"currency"`
	Transactions     []*model.AccountTransaction `json:"transactions"`
}
