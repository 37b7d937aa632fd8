// internal/requestinfo/requestinfo_test.go
//
// Unit-tests for the enrichment middleware and IP extraction.

package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

func TestEnrichAttachesInfo(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	req.Header.Set("User-Agent", chromeUA)
	req.RemoteAddr = "192.0.2.10:51234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("RequestInfo missing from context")
	}
	if got.Geo.IP.String() != "192.0.2.10" {
		t.Errorf("unexpected IP: %v", got.Geo.IP)
	}
	if got.UA.Browser != "Chrome" || got.UA.Device != "Desktop" {
		t.Errorf("unexpected UA: %+v", got.UA)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if ip := clientIP(req); ip.String() != "203.0.113.7" {
		t.Errorf("expected 203.0.113.7, got %v", ip)
	}
}

func TestClientIPRealIPFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	req.Header.Set("X-Real-IP", "198.51.100.4")

	if ip := clientIP(req); ip.String() != "198.51.100.4" {
		t.Errorf("expected 198.51.100.4, got %v", ip)
	}
}

func TestClientIPNoContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ClientIP(req.Context()); got != "" {
		t.Errorf("expected empty string without middleware, got %q", got)
	}
}
