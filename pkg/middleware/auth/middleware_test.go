package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
)

// tokenProvider maps raw tokens straight to identities.
type tokenProvider map[string]*repo.Identity

func (p tokenProvider) Verify(_ context.Context, token string) (*repo.Identity, error) {
	id, ok := p[token]
	if !ok {
		return nil, code.InvalidToken
	}
	return id, nil
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := memory.New()
	seed := []*model.User{
		{UID: "approved", Email: "a@lab.test", Role: common.LabStaff, IsApproved: true},
		{UID: "pending", Email: "p@lab.test", Role: common.AllUsers},
		{UID: "boss", Email: "b@lab.test", Role: common.Admin, IsApproved: true},
	}
	provider := tokenProvider{"unknown-token": {UID: "nobody"}}
	for _, u := range seed {
		if err := m.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
		provider[u.UID+"-token"] = &repo.Identity{UID: u.UID, Email: u.Email}
	}

	mw := New(provider, m)
	r := gin.New()
	r.GET("/token", mw.AuthToken(), func(ctx *gin.Context) {
		common.ReplyOk(ctx, GetIdentity(ctx).UID)
	})
	r.GET("/web", mw.AuthWeb(), func(ctx *gin.Context) {
		common.ReplyOk(ctx, GetCurrentUser(ctx).UID)
	})
	r.GET("/admin", mw.AuthWeb(), RequireRole(common.Admin), func(ctx *gin.Context) {
		common.ReplyOk(ctx, "ok")
	})
	return r
}

func call(r *gin.Engine, path, authHeader string) (int, common.Resp) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body common.Resp
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestAuthWeb(t *testing.T) {
	r := newRouter(t)
	cases := []struct {
		name   string
		path   string
		header string
		status int
		code   code.ErrCode
	}{
		{"missing header", "/web", "", http.StatusUnauthorized, code.UnLogin},
		{"wrong scheme", "/web", "Basic abc", http.StatusUnauthorized, code.LoginFormatErr},
		{"bad token", "/web", "Bearer forged", http.StatusUnauthorized, code.InvalidToken},
		{"not registered", "/web", "Bearer unknown-token", http.StatusUnauthorized, code.UnLogin},
		{"pending approval", "/web", "Bearer pending-token", http.StatusForbidden, code.AccountPendingApproval},
		{"approved", "/web", "Bearer approved-token", http.StatusOK, code.Success},
		{"non admin", "/admin", "Bearer approved-token", http.StatusForbidden, code.PermissionDenied},
		{"admin", "/admin", "Bearer boss-token", http.StatusOK, code.Success},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := call(r, tc.path, tc.header)
			if status != tc.status || body.Code != tc.code {
				t.Fatalf("expected %d/%d, got %d/%d (%s)", tc.status, tc.code, status, body.Code, body.Detail)
			}
		})
	}
}

func TestPendingMessage(t *testing.T) {
	r := newRouter(t)
	_, body := call(r, "/web", "Bearer pending-token")
	if body.Detail != "Account pending approval. Please contact administrator." {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
}

func TestAuthTokenSkipsApproval(t *testing.T) {
	r := newRouter(t)
	status, body := call(r, "/token", "Bearer pending-token")
	if status != http.StatusOK || body.Data != "pending" {
		t.Fatalf("expected identity pass-through, got %d %+v", status, body)
	}
	status, _ = call(r, "/token", "Bearer unknown-token")
	if status != http.StatusOK {
		t.Fatalf("unregistered identity should pass AuthToken, got %d", status)
	}
}

func TestQueryTokenIsAccepted(t *testing.T) {
	r := newRouter(t)
	status, body := call(r, "/web?access_token=approved-token", "")
	if status != http.StatusOK || body.Data != "approved" {
		t.Fatalf("expected query token to authenticate, got %d %+v", status, body)
	}
}

func TestWithUserOutsideGin(t *testing.T) {
	u := &model.User{UID: "x"}
	if got := GetCurrentUser(WithUser(context.Background(), u)); got != u {
		t.Fatalf("expected the bound user, got %+v", got)
	}
	if GetCurrentUser(context.Background()) != nil {
		t.Fatal("expected nil user")
	}
}
