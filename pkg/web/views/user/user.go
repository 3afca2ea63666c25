package user

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/user"
	impl "github.com/scienceol/chemtrack/pkg/core/user/user"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type Handle struct {
	uService user.Service
}

func NewUserHandle(st *store.Store) *Handle {
	return &Handle{uService: impl.New(st)}
}

// @Summary login with an identity provider token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.Resp{data=user.LoginResp}
// @Failure 403 {object} common.Resp "account pending approval"
// @Router /v1/auth/login [post]
func (h *Handle) Login(ctx *gin.Context) {
	resp, err := h.uService.Login(ctx)
	if err != nil {
		logger.Warnf(ctx, "Login err: %+v", err)
	}
	common.Reply(ctx, err, resp)
}

func (h *Handle) Register(ctx *gin.Context) {
	req := &user.RegisterReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Register param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.uService.Register(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Me(ctx *gin.Context) {
	resp, err := h.uService.Me(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Ping(ctx *gin.Context) {
	resp, err := h.uService.Ping(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Online(ctx *gin.Context) {
	resp, err := h.uService.SetOnline(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Offline(ctx *gin.Context) {
	resp, err := h.uService.SetOffline(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) OnlineUsers(ctx *gin.Context) {
	resp, err := h.uService.OnlineUsers(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Status(ctx *gin.Context) {
	req := &user.UIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.uService.Status(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Dashboard(ctx *gin.Context) {
	resp, err := h.uService.Dashboard(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) MyActivity(ctx *gin.Context) {
	req := &user.ActivityReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.uService.MyActivity(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) List(ctx *gin.Context) {
	req := &user.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.uService.ListUsers(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Pending(ctx *gin.Context) {
	resp, err := h.uService.PendingUsers(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Approve(ctx *gin.Context) {
	req := &user.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.uService.ApproveUser(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) UpdateRole(ctx *gin.Context) {
	req := &user.RoleReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.uService.UpdateRole(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Delete(ctx *gin.Context) {
	req := &user.IDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	if err := h.uService.DeleteUser(ctx, req); err != nil {
		logger.Errorf(ctx, "DeleteUser err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyOk(ctx, gin.H{"message": "User deleted successfully"})
}

func (h *Handle) CreateInvitation(ctx *gin.Context) {
	req := &user.InvitationReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.uService.CreateInvitation(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListInvitations(ctx *gin.Context) {
	req := &user.InvitationListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.uService.ListInvitations(ctx, req)
	common.Reply(ctx, err, resp)
}
