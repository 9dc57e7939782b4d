package crs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRelay struct {
	logins      atomic.Int64
	keyCalls    atomic.Int64
	always401   bool
	failLogin   bool
	expiresInMs int64
}

func (f *fakeRelay) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/web/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		if f.failLogin {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"success":false,"message":"bad credentials"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"token":     fmt.Sprintf("tok-%d", f.logins.Load()),
			"expiresIn": f.expiresInMs,
		})
	})
	mux.HandleFunc("/admin/api-keys", func(w http.ResponseWriter, r *http.Request) {
		f.keyCalls.Add(1)
		if f.always401 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"success":true,"data":[{"id":"k1","name":"alpha","isActive":true,"createdAt":"2026-01-01T00:00:00Z"}]}`)
	})
	return mux
}

func newTestClient(t *testing.T, relay *fakeRelay, now func() time.Time) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(relay.handler())
	t.Cleanup(srv.Close)
	cfg := Config{BaseUrl: srv.URL, Username: "admin", Password: "secret"}
	if now == nil {
		return NewClient(cfg), srv
	}
	return newClientWithClock(cfg, now), srv
}

// TestTokenReuseWithinExpiry verifies a cached token is reused until expiry
// and exactly one login is issued once it has expired.
func TestTokenReuseWithinExpiry(t *testing.T) {
	relay := &fakeRelay{expiresInMs: 86400000}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, relay, func() time.Time { return clock })

	if _, err := client.ListKeys(context.Background(), ""); err != nil {
		t.Fatalf("first ListKeys failed: %v", err)
	}
	if got := relay.logins.Load(); got != 1 {
		t.Fatalf("expected 1 login, got %d", got)
	}

	// Second call inside the validity window must not log in again.
	if _, err := client.ListKeys(context.Background(), ""); err != nil {
		t.Fatalf("second ListKeys failed: %v", err)
	}
	if got := relay.logins.Load(); got != 1 {
		t.Fatalf("expected cached token reuse, got %d logins", got)
	}

	// Advance past expiresIn - 60s safety margin.
	clock = clock.Add(24*time.Hour - 30*time.Second)
	if _, err := client.ListKeys(context.Background(), ""); err != nil {
		t.Fatalf("ListKeys after expiry failed: %v", err)
	}
	if got := relay.logins.Load(); got != 2 {
		t.Fatalf("expected exactly one re-login, got %d logins", got)
	}
}

// TestRetryOn401IsBounded verifies a perpetually-401 endpoint fails after one
// retry instead of recursing.
func TestRetryOn401IsBounded(t *testing.T) {
	relay := &fakeRelay{expiresInMs: 86400000, always401: true}
	client, _ := newTestClient(t, relay, nil)

	_, err := client.ListKeys(context.Background(), "")
	if err == nil {
		t.Fatal("expected error from always-401 endpoint")
	}
	apiErr, ok := err.(*ApiError)
	if !ok {
		t.Fatalf("expected *ApiError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", apiErr.StatusCode)
	}
	if got := relay.keyCalls.Load(); got != 2 {
		t.Fatalf("expected exactly 2 data attempts (original + 1 retry), got %d", got)
	}
	// One login up-front plus one forced by the invalidate.
	if got := relay.logins.Load(); got != 2 {
		t.Fatalf("expected 2 logins, got %d", got)
	}
}

// TestLoginFailureSurfacesApiError verifies a rejected login is a definite
// ApiError, not a transient one.
func TestLoginFailureSurfacesApiError(t *testing.T) {
	relay := &fakeRelay{failLogin: true}
	client, _ := newTestClient(t, relay, nil)

	_, err := client.ListKeys(context.Background(), "")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if _, ok := err.(*ApiError); !ok {
		t.Fatalf("expected *ApiError, got %T", err)
	}
	if IsUnavailable(err) {
		t.Fatal("login rejection must not classify as unavailable")
	}
}

// TestUnreachableServerIsUnavailable verifies transport failures map to
// UnavailableError.
func TestUnreachableServerIsUnavailable(t *testing.T) {
	relay := &fakeRelay{expiresInMs: 86400000}
	srv := httptest.NewServer(relay.handler())
	cfg := Config{BaseUrl: srv.URL, Username: "admin", Password: "secret"}
	client := NewClient(cfg)
	srv.Close()

	_, err := client.ListKeys(context.Background(), "")
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsUnavailable(err) {
		t.Fatalf("expected UnavailableError, got %T: %v", err, err)
	}
}

// TestApiErrorStatusMapping verifies non-2xx responses carry their status.
func TestApiErrorStatusMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/web/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok", "expiresIn": int64(86400000)})
	})
	mux.HandleFunc("/admin/api-keys/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "key not found")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Config{BaseUrl: srv.URL, Username: "a", Password: "b"})
	_, err := client.UpdateKey(context.Background(), "missing", UpdateKeyPatch{})
	if !IsNotFound(err) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
}

// TestDecodeEnvelope verifies envelope unwrapping behavior.
func TestDecodeEnvelope(t *testing.T) {
	var out []Key
	if err := decodeEnvelope([]byte(`{"success":true,"data":[{"id":"k1","name":"n","isActive":true,"createdAt":"2026-01-01T00:00:00Z"}]}`), &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(out) != 1 || out[0].Id != "k1" {
		t.Fatalf("unexpected decode result: %+v", out)
	}

	if err := decodeEnvelope([]byte(`{"success":false,"message":"nope"}`), &out); err == nil {
		t.Fatal("expected error for success=false envelope")
	}

	if err := decodeEnvelope([]byte(`{"success":true}`), nil); err != nil {
		t.Fatalf("empty data with nil out should pass: %v", err)
	}
}
