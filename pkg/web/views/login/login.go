package login

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	ls "github.com/scienceol/chemtrack/pkg/core/login"
	"github.com/scienceol/chemtrack/pkg/core/login/casdoor"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
)

const refreshCookieAge = 30 * 24 * 60 * 60

type Login struct {
	lService ls.Service
}

func NewLogin() *Login {
	return &Login{lService: casdoor.NewDefault()}
}

func (l *Login) Login(ctx *gin.Context) {
	req := &ls.LoginReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Warnf(ctx, "invalid oauth login request: %v", err)
	}
	resp, err := l.lService.Login(ctx, req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, resp.RedirectURL)
}

func (l *Login) Refresh(ctx *gin.Context) {
	req := &ls.RefreshTokenReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := l.lService.Refresh(ctx, req)
	common.Reply(ctx, err, resp)
}

// Callback stores the provider tokens in cookies and sends the browser back
// to the frontend, which then calls POST /auth/login.
func (l *Login) Callback(ctx *gin.Context) {
	req := &ls.CallbackReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "oauth callback param err: %+v", err)
		l.fail(ctx, "parameter error")
		return
	}
	resp, err := l.lService.Callback(ctx, req)
	if err != nil {
		logger.Errorf(ctx, "oauth callback err: %+v", err)
		l.fail(ctx, "login failed")
		return
	}

	secure := ctx.Request.TLS != nil || ctx.GetHeader("X-Forwarded-Proto") == "https"
	ctx.SetCookie("access_token", resp.Token, int(resp.ExpiresIn), "/", "", secure, true)
	ctx.SetCookie("refresh_token", resp.RefreshToken, refreshCookieAge, "/", "", secure, true)
	ctx.Redirect(http.StatusFound, resp.FrontendCallbackURL+"?"+url.Values{"status": {"success"}}.Encode())
}

func (l *Login) fail(ctx *gin.Context, reason string) {
	target := config.Global().OAuth2.FrontendURL + "/login/callback?" + url.Values{"error": {reason}}.Encode()
	ctx.Redirect(http.StatusFound, target)
}
