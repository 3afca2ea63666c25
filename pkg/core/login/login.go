// Package login drives the browser oauth2 authorization-code flow. It only
// obtains provider tokens; POST /auth/login turns a token into a session user.
package login

import "context"

type Service interface {
	Login(ctx context.Context, req *LoginReq) (*Resp, error)
	Callback(ctx context.Context, req *CallbackReq) (*CallbackResp, error)
	Refresh(ctx context.Context, req *RefreshTokenReq) (*RefreshTokenResp, error)
}

type LoginReq struct {
	FrontendCallbackURL string `form:"frontend_callback_url"`
}

type Resp struct {
	RedirectURL string `json:"redirect_url"`
}

type CallbackReq struct {
	Code  string `form:"code" binding:"required"`
	State string `form:"state" binding:"required"`
}

type CallbackResp struct {
	Token               string
	RefreshToken        string
	ExpiresIn           int64
	FrontendCallbackURL string
}

type RefreshTokenReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RefreshTokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
