package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{"direct client", "203.0.113.9:5555", "", "", "203.0.113.9"},
		{"untrusted proxy header ignored", "203.0.113.9:5555", "198.51.100.1", "", "203.0.113.9"},
		{"trusted proxy forwards client", "10.0.0.2:5555", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"trusted proxy with garbage header", "10.0.0.2:5555", "not-an-ip", "", "10.0.0.2"},
		{"trusted proxy real ip", "192.168.1.4:80", "", "198.51.100.7", "198.51.100.7"},
		{"ipv6 loopback proxy", "[::1]:8080", "2001:db8::1", "", "2001:db8::1"},
		{"unparseable remote addr", "pipe", "", "", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuspiciousReason(t *testing.T) {
	tests := []struct {
		name  string
		req   func() *http.Request
		want  string
		clean bool
	}{
		{"report request", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/report?month=2024-03", nil)
		}, "", true},
		{"dotenv probe", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/.env", nil)
		}, "probe:.env", false},
		{"injection in query", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/report?month=1%20UNION%20SELECT", nil)
		}, "probe:union select", false},
		{"scanner agent", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			r.Header.Set("User-Agent", "sqlmap/1.7")
			return r
		}, "agent:sqlmap", false},
		{"trace method", func() *http.Request {
			return httptest.NewRequest("TRACE", "/", nil)
		}, "method", false},
		{"long url", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/report?month="+strings.Repeat("a", maxURLLength), nil)
		}, "url_length", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suspiciousReason(tt.req())
			if tt.clean && got != "" {
				t.Errorf("suspiciousReason() = %q, want clean", got)
			}
			if !tt.clean && got != tt.want {
				t.Errorf("suspiciousReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	clock := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	rl := newRateLimiter(requestsPerMinute, time.Minute, func() time.Time { return clock })

	for i := 0; i < requestsPerMinute; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d rejected within budget", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("request over budget allowed")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other client should have its own budget")
	}
	if n := rl.ActiveClients(); n != 2 {
		t.Errorf("ActiveClients() = %d, want 2", n)
	}

	clock = clock.Add(time.Minute)
	if !rl.allow("1.2.3.4") {
		t.Error("budget should reset in the next window")
	}

	clock = clock.Add(staleClientAfter + time.Second)
	if n := rl.sweep(); n != 2 {
		t.Errorf("sweep() removed %d clients, want 2", n)
	}
	if n := rl.ActiveClients(); n != 0 {
		t.Errorf("ActiveClients() after sweep = %d, want 0", n)
	}
}

func TestRateLimiter_StartStop(t *testing.T) {
	rl := newRateLimiter(1, time.Minute, time.Now)
	rl.start(context.Background())
	rl.stop()
	rl.stop()
}
