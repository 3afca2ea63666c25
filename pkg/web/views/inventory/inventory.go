package inventory

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/inventory"
	impl "github.com/scienceol/chemtrack/pkg/core/inventory/inventory"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type Handle struct {
	iService inventory.Service
}

func NewInventoryHandle(st *store.Store, msgCenter notify.MsgCenter) *Handle {
	return &Handle{iService: impl.New(st, msgCenter)}
}

// @Summary create chemical
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body inventory.CreateReq true "chemical"
// @Success 200 {object} common.Resp{data=inventory.ChemicalResp}
// @Router /v1/chemicals [post]
func (h *Handle) Create(ctx *gin.Context) {
	req := &inventory.CreateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreateChemical param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.iService.CreateChemical(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) List(ctx *gin.Context) {
	req := &inventory.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse ListChemicals param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.iService.ListChemicals(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Get(ctx *gin.Context) {
	req := &inventory.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.iService.GetChemical(ctx, req)
	common.Reply(ctx, err, resp)
}

// @Summary update chemical fields allowed for the caller's role
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "chemical id"
// @Param body body inventory.UpdateReq true "fields"
// @Success 200 {object} common.Resp{data=inventory.UpdateResp}
// @Router /v1/chemicals/{id} [put]
func (h *Handle) Update(ctx *gin.Context) {
	req := &inventory.UpdateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpdateChemical param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.iService.UpdateChemical(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) AddNote(ctx *gin.Context) {
	req := &inventory.NoteReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse AddNote param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.iService.AddNote(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Delete(ctx *gin.Context) {
	req := &inventory.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := h.iService.DeleteChemical(ctx, req); err != nil {
		logger.Errorf(ctx, "DeleteChemical err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyOk(ctx, gin.H{"message": "Chemical deleted successfully"})
}
