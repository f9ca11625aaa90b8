package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMetricsEndpoint(t *testing.T) {
	metrics := NewMetrics()

	router := chi.NewRouter()
	router.Use(metrics.Middleware())
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	router.Get("/metrics", metrics.Handler().ServeHTTP)

	testReq := httptest.NewRequest("GET", "/ping", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	if testW.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", testW.Code)
	}
	if testW.Body.String() != "pong" {
		t.Errorf("Expected body 'pong', got '%s'", testW.Body.String())
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if body == "" {
		t.Error("Expected non-empty metrics response")
	}

	expectedMetrics := []string{"http_requests_total", "http_request_duration_seconds"}
	for _, metric := range expectedMetrics {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric '%s' not found in response", metric)
		}
	}

	if !strings.Contains(body, `path="/ping"`) {
		t.Error("Expected metrics to contain path label for /ping endpoint")
	}
}

func TestMetricsWithChiRoutePatterns(t *testing.T) {
	metrics := NewMetrics()
	router := chi.NewRouter()
	router.Use(metrics.Middleware())

	router.Get("/assets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("asset"))
	})
	router.Get("/metrics", metrics.Handler().ServeHTTP)

	testReq := httptest.NewRequest("GET", "/assets/EGYI-2033-EGOO491-000001", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()

	// The route pattern keeps cardinality bounded; raw IDs must not appear.
	if !strings.Contains(body, `path="/assets/{id}"`) {
		t.Error("Expected metrics to contain Chi route pattern, not actual path")
	}
	if strings.Contains(body, "EGYI-2033-EGOO491-000001") {
		t.Error("Expected raw asset ID to be absent from metric labels")
	}
}

func TestWorkflowDecisionCounter(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordWorkflowDecision("transfer", "PENDING")
	metrics.RecordWorkflowDecision("transfer", "APPROVED")
	metrics.RecordWorkflowDecision("disposal", "REJECTED")
	metrics.RecordScan()
	metrics.RecordScan()
	metrics.RecordDocument("good_issue_note", "ok")
	metrics.RecordDocument("good_issue_note", "error")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	for _, want := range []string{
		`workflow_decisions_total{decision="PENDING",kind="transfer"} 1`,
		`workflow_decisions_total{decision="APPROVED",kind="transfer"} 1`,
		`workflow_decisions_total{decision="REJECTED",kind="disposal"} 1`,
		`verification_scans_total 2`,
		`documents_generated_total{kind="good_issue_note",outcome="error"} 1`,
		`documents_generated_total{kind="good_issue_note",outcome="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metrics output to contain %q", want)
		}
	}
}
