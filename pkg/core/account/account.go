package account

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

type Service interface {
	CreateTransaction(ctx context.Context, req *TransactionReq) (*model.AccountTransaction, error)
	UpdateTransaction(ctx context.Context, req *TransactionUpdateReq) (*model.AccountTransaction, error)
	ApproveTransaction(ctx context.Context, req *IDReq) (*model.AccountTransaction, error)
	RejectTransaction(ctx context.Context, req *IDReq) (*model.AccountTransaction, error)
	DeleteTransaction(ctx context.Context, req *IDReq) error
	GetTransaction(ctx context.Context, req *IDReq) (*model.AccountTransaction, error)
	ListTransactions(ctx context.Context, req *TransactionListReq) (*common.PageResp[[]*model.AccountTransaction], error)

	CreatePurchaseOrder(ctx context.Context, req *PurchaseOrderReq) (*model.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, req *PurchaseOrderUpdateReq) (*model.PurchaseOrder, error)
	DeletePurchaseOrder(ctx context.Context, req *IDReq) error
	GetPurchaseOrder(ctx context.Context, req *IDReq) (*model.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, req *PurchaseOrderListReq) (*common.PageResp[[]*model.PurchaseOrder], error)

	Summary(ctx context.Context) (*SummaryResp, error)
	RecentTransactions(ctx context.Context, req *RecentReq) ([]*model.AccountTransaction, error)
	PendingPurchases(ctx context.Context) ([]*model.AccountTransaction, error)
	PurchaseHistory(ctx context.Context, req *IDReq) (*HistoryResp, error)
}
