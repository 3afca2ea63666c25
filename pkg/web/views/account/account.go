package account

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/account"
	impl "github.com/scienceol/chemtrack/pkg/core/account/account"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type Handle struct {
	aService account.Service
}

func NewAccountHandle(st *store.Store) *Handle {
	return &Handle{aService: impl.New(st)}
}

func (h *Handle) CreateTransaction(ctx *gin.Context) {
	req := &account.TransactionReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreateTransaction param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.CreateTransaction(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListTransactions(ctx *gin.Context) {
	req := &account.TransactionListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse ListTransactions param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.ListTransactions(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) GetTransaction(ctx *gin.Context) {
	req := &account.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.GetTransaction(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) UpdateTransaction(ctx *gin.Context) {
	req := &account.TransactionUpdateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpdateTransaction param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.UpdateTransaction(ctx, req)
	common.Reply(ctx, err, resp)
}

// @Summary approve a pending transaction
// @Tags account
// @Produce json
// @Param id path int true "transaction id"
// @Success 200 {object} common.Resp
// @Failure 400 {object} common.Resp "not pending"
// @Router /v1/account/transactions/{id}/approve [put]
func (h *Handle) ApproveTransaction(ctx *gin.Context) {
	req := &account.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.ApproveTransaction(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) RejectTransaction(ctx *gin.Context) {
	req := &account.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.RejectTransaction(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) DeleteTransaction(ctx *gin.Context) {
	req := &account.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := h.aService.DeleteTransaction(ctx, req); err != nil {
		logger.Errorf(ctx, "DeleteTransaction err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyOk(ctx, gin.H{"message": "Transaction deleted successfully"})
}

// @Summary create a purchase order with its items atomically
// @Tags account
// @Accept json
// @Produce json
// @Param body body account.PurchaseOrderReq true "order"
// @Success 200 {object} common.Resp
// @Router /v1/account/purchase-orders [post]
func (h *Handle) CreatePurchaseOrder(ctx *gin.Context) {
	req := &account.PurchaseOrderReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreatePurchaseOrder param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.CreatePurchaseOrder(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListPurchaseOrders(ctx *gin.Context) {
	req := &account.PurchaseOrderListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.ListPurchaseOrders(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) GetPurchaseOrder(ctx *gin.Context) {
	req := &account.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.GetPurchaseOrder(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) UpdatePurchaseOrder(ctx *gin.Context) {
	req := &account.PurchaseOrderUpdateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpdatePurchaseOrder param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.UpdatePurchaseOrder(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) DeletePurchaseOrder(ctx *gin.Context) {
	req := &account.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := h.aService.DeletePurchaseOrder(ctx, req); err != nil {
		logger.Errorf(ctx, "DeletePurchaseOrder err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyOk(ctx, gin.H{"message": "Purchase order deleted successfully"})
}

func (h *Handle) Summary(ctx *gin.Context) {
	resp, err := h.aService.Summary(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Recent(ctx *gin.Context) {
	req := &account.RecentReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.RecentTransactions(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) PendingPurchases(ctx *gin.Context) {
	resp, err := h.aService.PendingPurchases(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) PurchaseHistory(ctx *gin.Context) {
	req := &account.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.PurchaseHistory(ctx, req)
	common.Reply(ctx, err, resp)
}
