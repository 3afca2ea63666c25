package auth

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/utils"
)

type AuthType string

const (
	AuthTypeBearer AuthType = "Bearer"
)

type Middleware struct {
	provider repo.IdentityProvider
	users    repo.UserRepo
}

func New(provider repo.IdentityProvider, users repo.UserRepo) *Middleware {
	return &Middleware{provider: provider, users: users}
}

// bearerToken reads the token from the access_token cookie, the access_token query
// or an "Authorization: Bearer <token>" header, in that order.
func bearerToken(ctx *gin.Context) (string, error) {
	cookie, _ := ctx.Cookie("access_token")
	queryToken := ctx.Query("access_token")
	if token := utils.Or(cookie, queryToken); token != "" {
		return token, nil
	}
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", code.UnLogin
	}
	typ, token, ok := strings.Cut(authHeader, " ")
	if !ok || AuthType(typ) != AuthTypeBearer || token == "" {
		return "", code.LoginFormatErr
	}
	return token, nil
}

func (m *Middleware) verify(ctx *gin.Context) bool {
	token, err := bearerToken(ctx)
	if err != nil {
		common.AbortErr(ctx, err)
		return false
	}
	identity, err := m.provider.Verify(ctx, token)
	if err != nil {
		logger.Warnf(ctx, "token verification failed: %v", err)
		if code.CodeOf(err) != code.IdentityProviderErr {
			err = code.InvalidToken
		}
		common.AbortErr(ctx, err)
		return false
	}
	ctx.Set(IDENTITYKEY, identity)
	return true
}

// AuthToken only verifies the token; login and register run behind it.
func (m *Middleware) AuthToken() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !m.verify(ctx) {
			return
		}
		ctx.Next()
	}
}

// AuthWeb requires a stored and approved user.
func (m *Middleware) AuthWeb() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !m.verify(ctx) {
			return
		}
		identity := GetIdentity(ctx)
		user, err := m.users.GetUserByUID(ctx, identity.UID)
		if err != nil {
			if errors.Is(err, code.RecordNotFound) {
				err = code.UnLogin.WithMsg("user not registered")
			}
			common.AbortErr(ctx, err)
			return
		}
		if !user.IsApproved {
			common.AbortErr(ctx, code.AccountPendingApproval.WithMsg("Account pending approval. Please contact administrator."))
			return
		}
		ctx.Set(USERKEY, user)
		ctx.Next()
	}
}

// RequireRole must run after AuthWeb.
func RequireRole(roles ...common.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := GetCurrentUser(ctx)
		if user == nil {
			common.AbortErr(ctx, code.UnLogin)
			return
		}
		if !slices.Contains(roles, user.Role) {
			common.AbortErr(ctx, code.PermissionDenied)
			return
		}
		ctx.Next()
	}
}
