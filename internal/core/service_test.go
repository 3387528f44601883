package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/trust"
)

type stubExtractor struct {
	artifact EmailArtifact
}

func (s stubExtractor) Extract(string) EmailArtifact { return s.artifact }

type stubURLChecker struct{ malicious bool }

func (s stubURLChecker) Check(_ context.Context, u string) URLVerdict {
	return URLVerdict{URL: u, IsMalicious: s.malicious, RiskFactors: []string{}}
}

type stubAuthChecker struct{ result AuthenticationResult }

func (s stubAuthChecker) Check(context.Context, string) AuthenticationResult { return s.result }

type stubAttachmentAnalyzer struct{}

func (stubAttachmentAnalyzer) Analyze(_ context.Context, filename string, content []byte) AttachmentVerdict {
	return AttachmentVerdict{Filename: filename, Size: int64(len(content)), RiskFactors: []string{}}
}

type fakeStore struct {
	mu       sync.Mutex
	byHash   map[string]*AnalysisResult
	saveErr  error
	statsRan chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byHash:   make(map[string]*AnalysisResult),
		statsRan: make(chan struct{}, 8),
	}
}

func (f *fakeStore) FindByHash(_ context.Context, hash string) (*AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byHash[hash]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) Save(_ context.Context, result *AnalysisResult) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *result
	f.byHash[result.EmailHash] = &copied
	return nil
}

func (f *fakeStore) RecentThreats(context.Context, time.Time, int) ([]ThreatSummary, error) {
	return nil, nil
}

func (f *fakeStore) Stats(context.Context, time.Time) (*DailyStats, error) {
	return &DailyStats{}, nil
}

func (f *fakeStore) UpdateDailyStats(context.Context) error {
	select {
	case f.statsRan <- struct{}{}:
	default:
	}
	return nil
}

func newTestService(store ResultStore, trusted []string) *AnalysisService {
	logger := zap.NewNop()
	return NewAnalysisService(
		stubExtractor{artifact: EmailArtifact{
			Sender: "alice@example.com",
			URLs:   []string{},
			IPs:    []string{},
		}},
		stubURLChecker{},
		stubAuthChecker{},
		stubAttachmentAnalyzer{},
		store,
		NewAggregator(DefaultScoringPolicy(), logger),
		trust.NewDomainList(trusted, logger),
		logger,
		time.Hour,
		time.Second,
	)
}

func TestAnalyzeEmailEmptyContent(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.AnalyzeEmail(context.Background(), &AnalyzeRequest{Content: content})
		if !errors.Is(err, ErrEmptyContent) {
			t.Errorf("content %q: err = %v, want ErrEmptyContent", content, err)
		}
	}
}

func TestAnalyzeEmailDedup(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	req := &AnalyzeRequest{Content: "hello world", Sender: "alice@example.com"}

	first, err := svc.AnalyzeEmail(context.Background(), req)
	if err != nil {
		t.Fatalf("first analysis failed: %v", err)
	}
	if first.IsHistorical {
		t.Error("first analysis should not be historical")
	}
	if first.ID == "" {
		t.Error("result has no ID")
	}

	second, err := svc.AnalyzeEmail(context.Background(), req)
	if err != nil {
		t.Fatalf("second analysis failed: %v", err)
	}
	if !second.IsHistorical {
		t.Error("second analysis should be historical")
	}
	if second.ID != first.ID {
		t.Errorf("historical result ID = %s, want %s", second.ID, first.ID)
	}
}

func TestAnalyzeEmailStaleResultRecomputed(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	req := &AnalyzeRequest{Content: "hello world", Sender: "alice@example.com"}

	first, err := svc.AnalyzeEmail(context.Background(), req)
	if err != nil {
		t.Fatalf("first analysis failed: %v", err)
	}

	// Age the stored result past the freshness window.
	store.mu.Lock()
	store.byHash[first.EmailHash].Timestamp = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	second, err := svc.AnalyzeEmail(context.Background(), req)
	if err != nil {
		t.Fatalf("second analysis failed: %v", err)
	}
	if second.IsHistorical {
		t.Error("stale result should be recomputed, not returned as historical")
	}
	if second.ID == first.ID {
		t.Error("recomputed result should have a fresh ID")
	}
}

func TestAnalyzeEmailTrustedSender(t *testing.T) {
	svc := newTestService(newFakeStore(), []string{"example.com"})

	result, err := svc.AnalyzeEmail(context.Background(), &AnalyzeRequest{Content: "urgent password reset"})
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if result.Verdict != VerdictSafe {
		t.Errorf("verdict = %s, want %s", result.Verdict, VerdictSafe)
	}
	if result.Reason != "Sender domain is trusted" {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
	if result.RiskScore != 0 {
		t.Errorf("risk score = %.0f, want 0", result.RiskScore)
	}
}

func TestAnalyzeEmailPersistenceError(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("disk full")
	svc := newTestService(store, nil)

	_, err := svc.AnalyzeEmail(context.Background(), &AnalyzeRequest{Content: "hello"})
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PersistenceError", err)
	}
	if pe.Err.Error() != "disk full" {
		t.Errorf("wrapped error = %v, want disk full", pe.Err)
	}
}

func TestAnalyzeEmailWithoutStore(t *testing.T) {
	svc := newTestService(nil, nil)

	result, err := svc.AnalyzeEmail(context.Background(), &AnalyzeRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if result.ID == "" || result.EmailHash == "" {
		t.Error("result should carry an ID and hash even without a store")
	}
}

func TestAnalyzeEmailUpdatesStats(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	if _, err := svc.AnalyzeEmail(context.Background(), &AnalyzeRequest{Content: "hello"}); err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	select {
	case <-store.statsRan:
	case <-time.After(2 * time.Second):
		t.Error("stats refresh never ran")
	}
}
