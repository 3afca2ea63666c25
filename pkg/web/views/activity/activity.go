package activity

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/activity"
	impl "github.com/scienceol/chemtrack/pkg/core/activity/activity"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type Handle struct {
	aService activity.Service
}

func NewActivityHandle(st *store.Store) *Handle {
	return &Handle{aService: impl.New(st)}
}

func (h *Handle) List(ctx *gin.Context) {
	req := &activity.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.ListActivity(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Get(ctx *gin.Context) {
	req := &activity.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.GetActivity(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) SetNote(ctx *gin.Context) {
	req := &activity.NoteReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.aService.SetNote(ctx, req)
	common.Reply(ctx, err, resp)
}
