package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type staticIdentity map[string]*repo.Identity

func (s staticIdentity) Verify(_ context.Context, token string) (*repo.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, code.InvalidToken
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Global().Store.Driver = config.StoreMemory

	m := memory.New()
	boss := &model.User{UID: "boss", Email: "boss@lab.test", Role: common.Admin, IsApproved: true}
	if err := m.CreateUser(context.Background(), boss); err != nil {
		t.Fatalf("seed: %v", err)
	}
	g := gin.New()
	release, err := installURL(context.Background(), g, Deps{
		Store:    store.FromMemory(m),
		Identity: staticIdentity{"boss-token": {UID: boss.UID, Email: boss.Email}},
	})
	if err != nil {
		t.Fatalf("install routes: %v", err)
	}
	t.Cleanup(release)
	return g
}

func TestAccountRoutesKeepClientPaths(t *testing.T) {
	g := newEngine(t)
	registered := map[string]bool{}
	for _, r := range g.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/account/summary",
		"GET /api/v1/account/recent-transactions",
		"GET /api/v1/account/pending-purchases",
		"GET /api/v1/account/chemicals/:id/purchase-history",
	} {
		if !registered[want] {
			t.Fatalf("route %s not registered", want)
		}
	}
}

func TestSummaryFieldNames(t *testing.T) {
	g := newEngine(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/summary", nil)
	req.Header.Set("Authorization", "Bearer boss-token")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("summary returned %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"total_purchases", "total_transactions", "pending_orders", "total_spent_this_month", "total_spent_this_year", "currency"} {
		if _, ok := body.Data[key]; !ok {
			t.Fatalf("summary is missing %q: %v", key, body.Data)
		}
	}
}
