package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/adapters/store"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/trust"
)

type stubExtractor struct{}

func (stubExtractor) Extract(raw string) core.EmailArtifact {
	return core.EmailArtifact{
		Sender:      "sender@example.com",
		Subject:     "test",
		URLs:        []string{},
		IPs:         []string{},
		Attachments: []string{},
	}
}

type stubURLChecker struct{}

func (stubURLChecker) Check(_ context.Context, u string) core.URLVerdict {
	return core.URLVerdict{URL: u, RiskFactors: []string{}}
}

type stubAuthChecker struct{}

func (stubAuthChecker) Check(context.Context, string) core.AuthenticationResult {
	return core.AuthenticationResult{}
}

type stubAttachmentAnalyzer struct{}

func (stubAttachmentAnalyzer) Analyze(_ context.Context, filename string, content []byte) core.AttachmentVerdict {
	return core.AttachmentVerdict{Filename: filename, Size: int64(len(content)), RiskFactors: []string{}}
}

func newTestRouter(t *testing.T, classifier core.TextClassifier) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	resultStore := store.NewMemoryStore(logger, time.Hour, time.Hour)
	t.Cleanup(resultStore.Stop)

	service := core.NewAnalysisService(
		stubExtractor{},
		stubURLChecker{},
		stubAuthChecker{},
		stubAttachmentAnalyzer{},
		resultStore,
		core.NewAggregator(core.DefaultScoringPolicy(), logger),
		trust.NewDomainList(nil, logger),
		logger,
		time.Hour,
		time.Second,
	)
	return NewRouter(service, resultStore, classifier, logger)
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, nil), http.MethodGet, "/api/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["status"] != "running" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestRootBanner(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, nil), http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Phishing Email Analyzer API") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAnalyzeMissingContent(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, nil), http.MethodPost, "/api/analyze", `{"sender":"x@y.com"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email content is required") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAnalyzeInvalidBody(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, nil), http.MethodPost, "/api/analyze", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeBadAttachmentEncoding(t *testing.T) {
	body := `{"content":"hello","attachments":[{"filename":"a.exe","content_base64":"!!!"}]}`
	rec := doRequest(t, newTestRouter(t, nil), http.MethodPost, "/api/analyze", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid base64") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	handler := newTestRouter(t, nil)
	rec := doRequest(t, handler, http.MethodPost, "/api/analyze",
		`{"content":"hello there","sender":"x@y.com","subject":"hi"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result core.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if result.ID == "" {
		t.Error("result has no ID")
	}
	if result.Verdict == "" {
		t.Error("result has no verdict")
	}
	if result.IsHistorical {
		t.Error("first analysis should not be historical")
	}

	// The same payload again comes back from the store.
	rec = doRequest(t, handler, http.MethodPost, "/api/analyze",
		`{"content":"hello there","sender":"x@y.com","subject":"hi"}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !result.IsHistorical {
		t.Error("second analysis should be historical")
	}
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestRouter(t, nil)
	doRequest(t, handler, http.MethodPost, "/api/analyze", `{"content":"hello"}`)

	rec := doRequest(t, handler, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats core.DailyStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if stats.TotalEmails != 1 {
		t.Errorf("total = %d, want 1", stats.TotalEmails)
	}
}

func TestRecentThreatsEndpoint(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, nil), http.MethodGet, "/api/recent-threats", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Threats []core.ThreatSummary `json:"threats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Threats == nil {
		t.Error("threats should be an empty list, not null")
	}
}

func TestSpamCheckWithoutClassifier(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, nil), http.MethodPost, "/api/spam/check", `{"text":"win money"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

type stubClassifier struct{}

func (stubClassifier) Classify(_ context.Context, text string) (*core.TextClassification, error) {
	return &core.TextClassification{IsSpam: true, Score: 0.9, Confidence: 0.8, Model: "stub"}, nil
}

func TestSpamCheck(t *testing.T) {
	handler := newTestRouter(t, stubClassifier{})

	rec := doRequest(t, handler, http.MethodPost, "/api/spam/check", `{"text":"win money now"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var classification core.TextClassification
	if err := json.Unmarshal(rec.Body.Bytes(), &classification); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !classification.IsSpam {
		t.Error("expected spam classification")
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/spam/check", `{"text":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty text: status = %d, want 400", rec.Code)
	}
}
