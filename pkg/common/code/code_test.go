package code

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrCode
		want int
	}{
		{ParamErr, http.StatusBadRequest},
		{DeleteCommentRequired, http.StatusBadRequest},
		{TransactionNotPending, http.StatusBadRequest},
		{StatusConflict, http.StatusBadRequest},
		{UnLogin, http.StatusUnauthorized},
		{InvalidToken, http.StatusUnauthorized},
		{PermissionDenied, http.StatusForbidden},
		{AccountPendingApproval, http.StatusForbidden},
		{RecordNotFound, http.StatusNotFound},
		{AuditRecordErr, http.StatusInternalServerError},
		{UnDefineErr, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.code, tc.want, got)
		}
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", RecordNotFound.WithMsg("Chemical not found"))
	if got := CodeOf(wrapped); got != RecordNotFound {
		t.Fatalf("expected RecordNotFound, got %v", got)
	}
	if !errors.Is(wrapped, RecordNotFound) {
		t.Fatal("errors.Is should match the carried code")
	}
	if got := CodeOf(PermissionDenied); got != PermissionDenied {
		t.Fatalf("bare code not recognised: %v", got)
	}
	if got := CodeOf(errors.New("boom")); got != UnDefineErr {
		t.Fatalf("foreign error should be undefined, got %v", got)
	}
	if got := CodeOf(nil); got != Success {
		t.Fatalf("nil should be success, got %v", got)
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection reset")
	err := AuditRecordErr.WithErr(cause)
	if err.Error() != "connection reset" || !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	if msg := ParamErr.WithMsg("").Error(); msg != "parameter error" {
		t.Fatalf("empty message should fall back to code text, got %q", msg)
	}
	if msg := ErrCode(1).Error(); msg != "error code 1" {
		t.Fatalf("unexpected unknown code text %q", msg)
	}
}
