package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/pkg/common/code"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(ctx)
	body := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w, body
}

func TestReplyErrEnvelope(t *testing.T) {
	w, body := serve(t, func(ctx *gin.Context) {
		Reply(ctx, code.PermissionDenied.WithMsg("You do not have permission to delete this notification."))
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if body["detail"] != "You do not have permission to delete this notification." {
		t.Fatalf("unexpected detail %v", body["detail"])
	}
	if int(body["code"].(float64)) != int(code.PermissionDenied) {
		t.Fatalf("unexpected code %v", body["code"])
	}
	if _, ok := body["data"]; ok {
		t.Fatal("error envelope must not carry data")
	}
}

func TestReplyOkEnvelope(t *testing.T) {
	w, body := serve(t, func(ctx *gin.Context) {
		Reply(ctx, nil, map[string]int{"count": 2})
	})
	if w.Code != http.StatusOK || body["code"].(float64) != 0 {
		t.Fatalf("unexpected ok reply %d %v", w.Code, body)
	}
	if data := body["data"].(map[string]any); data["count"].(float64) != 2 {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestAbortErrStopsChain(t *testing.T) {
	w, _ := serve(t, func(ctx *gin.Context) {
		AbortErr(ctx, code.UnLogin)
		if !ctx.IsAborted() {
			t.Fatal("context should be aborted")
		}
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		if _, err := ParseRole(string(r)); err != nil {
			t.Fatalf("%s rejected: %v", r, err)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("unknown role accepted")
	}
}

func TestLabels(t *testing.T) {
	got := TitleLabels([]string{"in_progress", "low_stock"})
	if got[0].Label != "In Progress" || got[1].Label != "Low Stock" || got[1].Value != "low_stock" {
		t.Fatalf("unexpected labels %+v", got)
	}
	if up := UpperLabels([]string{"mid"}); up[0].Label != "MID" {
		t.Fatalf("unexpected upper label %+v", up)
	}
}
