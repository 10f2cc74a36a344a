package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"station/cmd/internal/auth/remember"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_SweepCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.SweepRun("sessions", 4, nil, 3*time.Millisecond)
	m.SweepRun("sessions", 0, errors.New("boom"), time.Millisecond)
	m.SweepStopped("sessions")

	if got := testutil.ToFloat64(m.sweepRuns.WithLabelValues("sessions", "ok")); got != 1 {
		t.Fatalf("ok runs=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.sweepRuns.WithLabelValues("sessions", "error")); got != 1 {
		t.Fatalf("error runs=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.sweepDeleted.WithLabelValues("sessions")); got != 4 {
		t.Fatalf("deleted=%v want 4", got)
	}
	if got := testutil.ToFloat64(m.sweepStopped.WithLabelValues("sessions")); got != 1 {
		t.Fatalf("stopped=%v want 1", got)
	}
}

func TestMetrics_RememberCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.TokenIssued()
	m.TokenIssued()
	m.TokenValidated(remember.OutcomeValid)
	m.TokenValidated(remember.OutcomeInvalid)
	m.TokenValidated(remember.OutcomeInvalid)
	m.TokensRevoked(3)
	m.TokensRevoked(0)

	if got := testutil.ToFloat64(m.rememberIssued); got != 2 {
		t.Fatalf("issued=%v want 2", got)
	}
	if got := testutil.ToFloat64(m.rememberValidated.WithLabelValues(remember.OutcomeInvalid)); got != 2 {
		t.Fatalf("invalid=%v want 2", got)
	}
	if got := testutil.ToFloat64(m.rememberRevoked); got != 3 {
		t.Fatalf("revoked=%v want 3", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.TokenIssued()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "station_remember_issued_total 1") {
		t.Fatalf("exposition missing issued counter:\n%s", body)
	}
}
