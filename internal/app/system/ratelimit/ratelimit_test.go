package ratelimit_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/ratelimit"
)

func TestLimiter_BurstThenBlock(t *testing.T) {
	l := ratelimit.New(1, 3)

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow("1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, wait := l.Allow("1.2.3.4")
	if ok {
		t.Fatal("fourth request should be blocked")
	}
	if wait <= 0 {
		t.Errorf("expected positive wait, got %v", wait)
	}

	if ok, _ := l.Allow("5.6.7.8"); !ok {
		t.Error("other keys have their own bucket")
	}

	l.Reset("1.2.3.4")
	if ok, _ := l.Allow("1.2.3.4"); !ok {
		t.Error("Reset should restore the bucket")
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	l := ratelimit.New(1, 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/ngo/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rec.Code)
	}
	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestLoginLimiter_PerAccount(t *testing.T) {
	ll := ratelimit.NewLoginLimiter(100, 2)

	// Each attempt comes from its own address so only the account bucket
	// can block.
	attempt := func(n int, account string) (bool, string) {
		req := httptest.NewRequest(http.MethodPost, "/ngo/login", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.%d:5000", n)
		ok, _, reason := ll.Check(req, account)
		return ok, reason
	}

	for i := 1; i <= 2; i++ {
		if ok, _ := attempt(i, "A@B.org"); !ok {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	ok, reason := attempt(3, "a@b.org ")
	if ok {
		t.Fatal("third attempt on the same account should be blocked")
	}
	if !strings.Contains(reason, "this account") {
		t.Errorf("expected the account limit to block, got %q", reason)
	}

	if ok, _ := attempt(4, "other@b.org"); !ok {
		t.Error("a different account from a fresh address should be allowed")
	}

	ll.ResetAccount("a@b.org")
	if ok, reason := attempt(5, "a@b.org"); !ok {
		t.Errorf("ResetAccount should clear the account limit, got %q", reason)
	}
}

func TestLoginLimiter_PerIP(t *testing.T) {
	ll := ratelimit.NewLoginLimiter(100, 2)
	req := httptest.NewRequest(http.MethodPost, "/ngo/login", nil)
	req.RemoteAddr = "10.0.1.1:5000"

	for i, account := range []string{"a@b.org", "c@d.org"} {
		if ok, _, _ := ll.Check(req, account); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	ok, _, reason := ll.Check(req, "e@f.org")
	if ok || strings.Contains(reason, "this account") {
		t.Fatalf("third attempt from one address should hit the IP limit, got ok=%v reason=%q", ok, reason)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "9.9.9.9, 10.0.0.1"}, "10.0.0.1:1", "9.9.9.9"},
		{"real ip", map[string]string{"X-Real-IP": " 8.8.8.8 "}, "10.0.0.1:1", "8.8.8.8"},
		{"remote", nil, "7.7.7.7:4321", "7.7.7.7"},
		{"remote no port", nil, "7.7.7.7", "7.7.7.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := ratelimit.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}
