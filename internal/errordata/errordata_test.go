package errordata

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestBodyMergesDetails(t *testing.T) {
	err := BadRequest("Invalid messages format - must be a non-empty array").
		WithDetail("receivedType", "array")
	status, body := Body(fmt.Errorf("wrapped: %w", err))
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Invalid messages format - must be a non-empty array" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
	if body["receivedType"] != "array" {
		t.Fatalf("expected receivedType detail, got %v", body)
	}
}

func TestBodyHidesForeignErrors(t *testing.T) {
	status, body := Body(errors.New("pq: password authentication failed"))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if strings.Contains(fmt.Sprint(body), "password") {
		t.Fatalf("expected raw error to be hidden, got %v", body)
	}
}

func TestKindStatusCodes(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthorized: http.StatusUnauthorized,
		KindNotFound:     http.StatusNotFound,
		KindBadRequest:   http.StatusBadRequest,
		KindUpstream:     http.StatusInternalServerError,
		KindInternal:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		if got := k.StatusCode(); got != want {
			t.Fatalf("kind %d: expected %d, got %d", k, want, got)
		}
	}
}

func TestEchoTruncates(t *testing.T) {
	out := Echo(strings.Repeat("a", MaxEchoBytes*2))
	if !strings.HasSuffix(out, "...(truncated)") {
		t.Fatalf("expected truncation marker")
	}
	if len(out) != MaxEchoBytes+len("...(truncated)") {
		t.Fatalf("unexpected echo length %d", len(out))
	}
	if Echo(map[string]int{"a": 1}) != `{"a":1}` {
		t.Fatalf("expected json echo")
	}
}
