package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"weather-dashboard/internal/testutil"
)

func newCORSHandler(called *bool, origins ...string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"sponsors":[]}`))
	})
	return CORS(origins)(next)
}

func TestCORS_AllowedDashboardOrigin(t *testing.T) {
	h := newCORSHandler(nil, "http://localhost:8080", "https://dashboard.example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sponsors", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertHeader(t, w, "Access-Control-Allow-Origin", "https://dashboard.example.com")
	testutil.AssertHeader(t, w, "Access-Control-Allow-Credentials", "true")
	testutil.AssertHeader(t, w, "Vary", "Origin")
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	var served bool
	h := newCORSHandler(&served, "http://localhost:8080")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?city=Berlin", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	// The request is still served; the missing headers make the browser
	// refuse the response on its side.
	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertTrue(t, served, "handler should still run")
	testutil.AssertHeader(t, w, "Access-Control-Allow-Origin", "")
}

func TestCORS_WildcardEchoesRequestOrigin(t *testing.T) {
	h := newCORSHandler(nil, "*")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	testutil.AssertHeader(t, w, "Access-Control-Allow-Origin", "http://localhost:3000")
	testutil.AssertHeader(t, w, "Access-Control-Allow-Credentials", "true")
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	var served bool
	h := newCORSHandler(&served, "http://localhost:8080")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sponsors/0", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertFalse(t, served, "preflight must not reach the handler")
	testutil.AssertContains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	testutil.AssertContains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestCORS_PreflightFromUnknownOrigin(t *testing.T) {
	var served bool
	h := newCORSHandler(&served, "http://localhost:8080")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sponsors", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertFalse(t, served, "preflight must not reach the handler")
	testutil.AssertHeader(t, w, "Access-Control-Allow-Origin", "")
}

func TestCORS_SameOriginRequestPassesThrough(t *testing.T) {
	var served bool
	h := newCORSHandler(&served, "http://localhost:8080")

	// Page loads from the server itself carry no Origin header.
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertTrue(t, served, "same-origin request should reach the handler")
	testutil.AssertHeader(t, w, "Access-Control-Allow-Origin", "")
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "http://localhost:8080", []string{"http://localhost:8080"}},
		{"multiple", "http://localhost:8080,https://dashboard.example.com",
			[]string{"http://localhost:8080", "https://dashboard.example.com"}},
		{"whitespace", " http://localhost:8080 , https://dashboard.example.com ",
			[]string{"http://localhost:8080", "https://dashboard.example.com"}},
		{"trailing_comma", "http://localhost:8080,", []string{"http://localhost:8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOrigins(tt.raw)
			testutil.AssertLen(t, got, len(tt.want))
			for i := range tt.want {
				testutil.AssertEqual(t, got[i], tt.want[i])
			}
		})
	}
}
