package alert

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/alert"
	impl "github.com/scienceol/chemtrack/pkg/core/alert/alert"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type Handle struct {
	aService alert.Service
}

func NewAlertHandle(st *store.Store, msgCenter notify.MsgCenter) *Handle {
	return &Handle{aService: impl.New(st, msgCenter)}
}

func (h *Handle) Create(ctx *gin.Context) {
	req := &alert.CreateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreateAlert param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.CreateAlert(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) List(ctx *gin.Context) {
	req := &alert.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.ListAlerts(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Unread(ctx *gin.Context) {
	resp, err := h.aService.UnreadAlerts(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Active(ctx *gin.Context) {
	resp, err := h.aService.ActiveAlerts(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Get(ctx *gin.Context) {
	req := &alert.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.GetAlert(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Update(ctx *gin.Context) {
	req := &alert.UpdateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.UpdateAlert(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Dismiss(ctx *gin.Context) {
	req := &alert.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.DismissAlert(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Read(ctx *gin.Context) {
	req := &alert.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.ReadAlert(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Delete(ctx *gin.Context) {
	req := &alert.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := h.aService.DeleteAlert(ctx, req); err != nil {
		logger.Errorf(ctx, "DeleteAlert err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyOk(ctx, gin.H{"message": "Alert deleted successfully"})
}

func (h *Handle) Types(ctx *gin.Context) {
	common.ReplyOk(ctx, h.aService.Types())
}

func (h *Handle) Severities(ctx *gin.Context) {
	common.ReplyOk(ctx, h.aService.Severities())
}
