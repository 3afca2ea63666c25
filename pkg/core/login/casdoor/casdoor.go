package casdoor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/common/uuid"
	"github.com/scienceol/chemtrack/pkg/core/login"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/middleware/redis"
	"github.com/scienceol/chemtrack/pkg/repo/casdoor"
	"golang.org/x/oauth2"
)

const (
	stateTTL    = 5 * time.Minute
	statePrefix = "oauth_state:"
)

// oauthState round-trips through the provider; the nonce must still be in
// redis when the callback arrives.
type oauthState struct {
	Nonce               string `json:"nonce"`
	FrontendCallbackURL string `json:"frontend_callback_url,omitempty"`
}

type casdoorLogin struct {
	client      *r.Client
	oauthConfig *oauth2.Config
	frontendURL string
}

func NewCasdoorLogin(client *r.Client) login.Service {
	return &casdoorLogin{
		client:      client,
		oauthConfig: casdoor.OAuthConfig(),
		frontendURL: config.Global().OAuth2.FrontendURL,
	}
}

func NewDefault() login.Service {
	return NewCasdoorLogin(redis.GetClient())
}

func (c *casdoorLogin) Login(ctx context.Context, req *login.LoginReq) (*login.Resp, error) {
	st := oauthState{Nonce: uuid.NewV4().String(), FrontendCallbackURL: req.FrontendCallbackURL}
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, code.OAuthStateErr.WithErr(err)
	}
	if err := c.client.Set(ctx, statePrefix+st.Nonce, "1", stateTTL).Err(); err != nil {
		logger.Errorf(ctx, "save oauth state err: %+v", err)
		return nil, code.OAuthStateErr.WithErr(err)
	}
	state := base64.URLEncoding.EncodeToString(raw)
	return &login.Resp{RedirectURL: c.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)}, nil
}

func (c *casdoorLogin) Callback(ctx context.Context, req *login.CallbackReq) (*login.CallbackResp, error) {
	raw, err := base64.URLEncoding.DecodeString(req.State)
	if err != nil {
		return nil, code.OAuthStateErr
	}
	st := oauthState{}
	if err := json.Unmarshal(raw, &st); err != nil || st.Nonce == "" {
		return nil, code.OAuthStateErr
	}
	// GetDel makes each state single use
	if err := c.client.GetDel(ctx, statePrefix+st.Nonce).Err(); err != nil {
		return nil, code.OAuthStateErr
	}

	token, err := c.oauthConfig.Exchange(ctx, req.Code)
	if err != nil {
		logger.Errorf(ctx, "oauth token exchange err: %+v", err)
		return nil, code.ExchangeTokenErr.WithErr(err)
	}

	callback := st.FrontendCallbackURL
	if callback == "" {
		callback = c.frontendURL + "/login/callback"
	}
	return &login.CallbackResp{
		Token:               token.AccessToken,
		RefreshToken:        token.RefreshToken,
		ExpiresIn:           int64(time.Until(token.Expiry).Seconds()),
		FrontendCallbackURL: callback,
	}, nil
}

func (c *casdoorLogin) Refresh(ctx context.Context, req *login.RefreshTokenReq) (*login.RefreshTokenResp, error) {
	expired := &oauth2.Token{RefreshToken: req.RefreshToken, Expiry: time.Now().Add(-time.Hour)}
	token, err := c.oauthConfig.TokenSource(ctx, expired).Token()
	if err != nil {
		logger.Errorf(ctx, "refresh oauth token err: %+v", err)
		return nil, code.RefreshTokenErr.WithErr(err)
	}
	return &login.RefreshTokenResp{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int64(time.Until(token.Expiry).Seconds()),
		TokenType:    token.TokenType,
	}, nil
}
