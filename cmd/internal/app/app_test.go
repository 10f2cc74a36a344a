package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRuntimeBaseURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "explicit localhost", in: "127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{name: "bind all v4", in: "0.0.0.0:8080", want: "http://127.0.0.1:8080"},
		{name: "bind all v6", in: "[::]:9090", want: "http://127.0.0.1:9090"},
		{name: "ipv6 host", in: "[2001:db8::1]:9090", want: "http://[2001:db8::1]:9090"},
		{name: "port only", in: ":8080", want: "http://127.0.0.1:8080"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := runtimeBaseURL(tc.in)
			if got != tc.want {
				t.Fatalf("runtimeBaseURL(%q)=%q want=%q", tc.in, got, tc.want)
			}
		})
	}
}

func newMemoryApp(t *testing.T) *App {
	t.Helper()

	t.Setenv("STATION_SECRET_HASHER", "bcrypt")
	t.Setenv("STATION_BCRYPT_COST", "4")

	cfg := LoadConfig()
	cfg.DatabaseURL = ""
	cfg.MetricsEnabled = true

	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNew_InMemoryRoutes(t *testing.T) {
	a := newMemoryApp(t)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	cases := []struct {
		path string
		want int
	}{
		{path: "/healthz", want: http.StatusOK},
		{path: "/readyz", want: http.StatusOK},
		{path: "/metrics", want: http.StatusOK},
		{path: "/auth/hello", want: http.StatusUnauthorized},
		{path: "/nope", want: http.StatusNotFound},
	}
	for _, tc := range cases {
		res, err := http.Get(srv.URL + tc.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tc.path, err)
		}
		body, _ := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if res.StatusCode != tc.want {
			t.Fatalf("GET %s status=%d want %d body=%q", tc.path, res.StatusCode, tc.want, body)
		}
		if res.Header.Get(requestIDHeader) == "" {
			t.Fatalf("GET %s: missing request id", tc.path)
		}
		if tc.path == "/metrics" && !strings.Contains(string(body), "station_") {
			t.Fatalf("metrics output lacks station_ series: %q", body)
		}
	}
}

func TestNew_ReadinessRequiresDB(t *testing.T) {
	t.Setenv("STATION_SECRET_HASHER", "bcrypt")
	t.Setenv("STATION_BCRYPT_COST", "4")

	cfg := LoadConfig()
	cfg.DatabaseURL = ""
	cfg.ReadinessRequireDB = true

	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)

	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d want 503", rr.Code)
	}
}

func TestNew_RejectsInsecureCookiesUnderPolicy(t *testing.T) {
	t.Setenv("STATION_SESSION_COOKIE_SECURE", "false")

	cfg := LoadConfig()
	cfg.DatabaseURL = ""
	cfg.RequireSecureCookies = true

	if _, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatalf("expected policy error")
	}
}

func TestApp_CloseIsIdempotent(t *testing.T) {
	a := newMemoryApp(t)
	a.Close()
	a.Close()
}
