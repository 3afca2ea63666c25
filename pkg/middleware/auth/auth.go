package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/casdoor"
	"github.com/scienceol/chemtrack/pkg/repo/jwtauth"
)

var (
	USERKEY     = "AUTH_USER_KEY"
	IDENTITYKEY = "AUTH_IDENTITY_KEY"
)

type userCtxKey struct{}

// NewIdentityProvider returns the verifier selected by OAUTH_SOURCE.
func NewIdentityProvider() repo.IdentityProvider {
	switch config.Global().Auth.AuthSource {
	case config.AuthCasdoor:
		return casdoor.New()
	case config.AuthJWT:
		p, err := jwtauth.New()
		if err != nil {
			panic("invalid JWT_PUBLIC_KEY: " + err.Error())
		}
		return p
	default:
		panic("unknown auth source: " + string(config.Global().Auth.AuthSource))
	}
}

// WithUser binds u to a plain context; services called outside gin use it.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func GetCurrentUser(ctx context.Context) *model.User {
	if gCtx, ok := ctx.(*gin.Context); ok {
		user, exists := gCtx.Get(USERKEY)
		if !exists {
			return nil
		}
		u, _ := user.(*model.User)
		return u
	}
	u, _ := ctx.Value(userCtxKey{}).(*model.User)
	return u
}

// GetIdentity returns the verified token identity, set even for users not yet stored.
func GetIdentity(ctx context.Context) *repo.Identity {
	gCtx, ok := ctx.(*gin.Context)
	if !ok {
		id, _ := ctx.Value(identityCtxKey{}).(*repo.Identity)
		return id
	}
	id, exists := gCtx.Get(IDENTITYKEY)
	if !exists {
		return nil
	}
	ident, _ := id.(*repo.Identity)
	return ident
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id *repo.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}
