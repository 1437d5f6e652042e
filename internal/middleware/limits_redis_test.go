package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/ratelimit"
)

func TestRedisRateLimitRPM(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	mgr, err := ratelimit.NewManager("redis://" + s.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	mw := RedisRateLimit(mgr, 20)(h)

	req := httptest.NewRequest("POST", "/v1/lookup", nil)
	req.RemoteAddr = "203.0.113.9:51234"

	var last int
	for i := 0; i < 25; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != 429 {
		t.Fatalf("expected 429 after exceeding rpm, got %d", last)
	}

	// A fresh window admits requests again.
	s.FastForward(time.Minute)
	s.FlushAll()
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected 200 after window reset, got %d", rec.Code)
	}
}

func TestRedisRateLimitNilManagerPassesThrough(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	mw := RedisRateLimit(nil, 1)(h)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/lookup", nil))
		if rec.Code != 200 {
			t.Fatalf("expected pass-through, got %d", rec.Code)
		}
	}
}

func TestRedisRateLimitSeparateClients(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	mgr, err := ratelimit.NewManager("redis://" + s.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	mw := RedisRateLimit(mgr, 1)(h)

	first := httptest.NewRequest("POST", "/v1/lookup", nil)
	first.RemoteAddr = "203.0.113.1:1000"
	second := httptest.NewRequest("POST", "/v1/lookup", nil)
	second.RemoteAddr = "203.0.113.2:1000"

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, first)
	if rec.Code != 200 {
		t.Fatalf("first client first request: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, first)
	if rec.Code != 429 {
		t.Fatalf("first client second request should be limited, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, second)
	if rec.Code != 200 {
		t.Fatalf("second client must have its own budget, got %d", rec.Code)
	}
}
