package notification

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/notification"
	impl "github.com/scienceol/chemtrack/pkg/core/notification/notification"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type Handle struct {
	nService notification.Service
}

func NewNotificationHandle(st *store.Store, msgCenter notify.MsgCenter) *Handle {
	return &Handle{nService: impl.New(st, msgCenter)}
}

func (h *Handle) Create(ctx *gin.Context) {
	req := &notification.CreateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreateNotification param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.nService.CreateNotification(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Send(ctx *gin.Context) {
	req := &notification.CreateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse SendNotification param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.nService.SendNotification(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) List(ctx *gin.Context) {
	req := &notification.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.nService.ListNotifications(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Unread(ctx *gin.Context) {
	resp, err := h.nService.UnreadNotifications(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Active(ctx *gin.Context) {
	resp, err := h.nService.ActiveNotifications(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Get(ctx *gin.Context) {
	req := &notification.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.nService.GetNotification(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Update(ctx *gin.Context) {
	req := &notification.UpdateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.nService.UpdateNotification(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Dismiss(ctx *gin.Context) {
	req := &notification.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.nService.DismissNotification(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Read(ctx *gin.Context) {
	req := &notification.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.nService.ReadNotification(ctx, req)
	common.Reply(ctx, err, resp)
}

// @Summary delete a notification; non-admin recipients must leave a comment
// @Tags notification
// @Accept json
// @Produce json
// @Param id path int true "notification id"
// @Param body body notification.DeleteReq false "delete comment"
// @Success 200 {object} common.Resp{data=notification.DeleteResp}
// @Failure 400 {object} common.Resp "comment required"
// @Router /v1/notifications/{id} [delete]
func (h *Handle) Delete(ctx *gin.Context) {
	req := &notification.DeleteReq{}
	// the body is optional for admins
	if err := ctx.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.nService.DeleteNotification(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Categories(ctx *gin.Context) {
	common.ReplyOk(ctx, h.nService.Categories())
}

func (h *Handle) Priorities(ctx *gin.Context) {
	common.ReplyOk(ctx, h.nService.Priorities())
}

func (h *Handle) Statuses(ctx *gin.Context) {
	common.ReplyOk(ctx, h.nService.Statuses())
}
