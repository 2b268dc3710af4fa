package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCommandCounters(t *testing.T) {
	m := New()

	m.CommandStarted()
	m.CommandStarted()
	if got := testutil.ToFloat64(m.commandsInFlight); got != 2 {
		t.Fatalf("in flight = %v, want 2", got)
	}

	m.CommandFinished(nil)
	m.CommandFinished(errors.New("offline"))

	if got := testutil.ToFloat64(m.commandsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.commandsTotal.WithLabelValues(ResultSuccess)); got != 1 {
		t.Errorf("success = %v", got)
	}
	if got := testutil.ToFloat64(m.commandsTotal.WithLabelValues(ResultFailure)); got != 1 {
		t.Errorf("failure = %v", got)
	}
}

func TestPollAndCredentialCounters(t *testing.T) {
	m := New()
	m.PollCompleted(300*time.Millisecond, 2)
	m.PollCompleted(100*time.Millisecond, 0)
	m.CredentialValidated(nil)
	m.SceneExecuted(errors.New("nope"))

	if got := testutil.ToFloat64(m.pollDeviceFailures); got != 2 {
		t.Errorf("poll failures = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.pollDuration); got != 1 {
		t.Errorf("poll duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.credentialValidations.WithLabelValues(ResultSuccess)); got != 1 {
		t.Errorf("credential success = %v", got)
	}
	if got := testutil.ToFloat64(m.sceneExecutions.WithLabelValues(ResultFailure)); got != 1 {
		t.Errorf("scene failure = %v", got)
	}
}

func TestHandlerAndMiddleware(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/devices/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/abc", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`switchbot_http_requests_total{method="GET",route="/devices/{id}",status="418"} 1`,
		"switchbot_commands_in_flight 0",
		"go_goroutines",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
