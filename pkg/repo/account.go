package repo

import (
	"context"
	"time"

	"github.com/scienceol/chemtrack/pkg/model"
)

type TransactionQuery struct {
	Type       *model.TransactionType
	Status     *model.TransactionStatus
	ChemicalID *int64
	Start      *time.Time
	End        *time.Time
	Offset     int
	Limit      int
}

type PurchaseOrderQuery struct {
	Status   *model.PurchaseOrderStatus
	Supplier *string
	Offset   int
	Limit    int
}

type AccountRepo interface {
	Transactor

	CreateTransaction(ctx context.Context, txn *model.AccountTransaction) error
	GetTransaction(ctx context.Context, id int64) (*model.AccountTransaction, error)
	GetTransactionForUpdate(ctx context.Context, id int64) (*model.AccountTransaction, error)
	// SaveTransaction never writes status, approved_by or approved_at; those move only through TransitionTransaction.
	SaveTransaction(ctx context.Context, txn *model.AccountTransaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, q TransactionQuery) ([]*model.AccountTransaction, int64, error)
	// TransitionTransaction moves id from -> to only while the row is still in from.
	// It reports false when no row matched.
	TransitionTransaction(ctx context.Context, id int64, from, to model.TransactionStatus, by string, at time.Time) (bool, error)

	// SumCompletedPurchases sums amount over completed purchases created at or after since.
	SumCompletedPurchases(ctx context.Context, since *time.Time) (float64, error)
	CountTransactions(ctx context.Context) (int64, error)
	CompletedPurchases(ctx context.Context, chemicalID int64) ([]*model.AccountTransaction, error)

	// CreatePurchaseOrder inserts the header only; items go through CreatePurchaseOrderItem.
	CreatePurchaseOrder(ctx context.Context, order *model.PurchaseOrder) error
	CreatePurchaseOrderItem(ctx context.Context, item *model.PurchaseOrderItem) error
	GetPurchaseOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	SavePurchaseOrder(ctx context.Context, order *model.PurchaseOrder) error
	DeletePurchaseOrder(ctx context.Context, id int64) error
	ListPurchaseOrders(ctx context.Context, q PurchaseOrderQuery) ([]*model.PurchaseOrder, int64, error)
	CountPurchaseOrders(ctx context.Context, statuses ...model.PurchaseOrderStatus) (int64, error)
}
