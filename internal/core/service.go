package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/trust"
)

// AnalysisService runs the full analysis pipeline: dedup lookup, artifact
// extraction, concurrent reputation checks, aggregation and persistence.
type AnalysisService struct {
	extractor   ArtifactExtractor
	urlChecker  URLChecker
	authChecker AuthChecker
	attachments AttachmentAnalyzer
	store       ResultStore
	aggregator  *Aggregator
	trusted     *trust.DomainList
	logger      *zap.Logger

	freshness    time.Duration
	checkTimeout time.Duration
}

// NewAnalysisService creates a new analysis service. store may be nil, in
// which case dedup and persistence are skipped (CLI mode).
func NewAnalysisService(
	extractor ArtifactExtractor,
	urlChecker URLChecker,
	authChecker AuthChecker,
	attachments AttachmentAnalyzer,
	store ResultStore,
	aggregator *Aggregator,
	trusted *trust.DomainList,
	logger *zap.Logger,
	freshness time.Duration,
	checkTimeout time.Duration,
) *AnalysisService {
	return &AnalysisService{
		extractor:    extractor,
		urlChecker:   urlChecker,
		authChecker:  authChecker,
		attachments:  attachments,
		store:        store,
		aggregator:   aggregator,
		trusted:      trusted,
		logger:       logger,
		freshness:    freshness,
		checkTimeout: checkTimeout,
	}
}

// AnalyzeEmail analyzes an email. A stored result younger than the freshness
// window is returned verbatim, with IsHistorical set, and scoring is skipped
// entirely.
func (s *AnalysisService) AnalyzeEmail(ctx context.Context, req *AnalyzeRequest) (*AnalysisResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	hash := EmailHash(req.Content, req.Sender, req.Subject)

	if s.store != nil {
		prev, err := s.store.FindByHash(ctx, hash)
		if err != nil {
			s.logger.Warn("Dedup lookup failed, recomputing", zap.Error(err), zap.String("email_hash", hash))
		} else if prev != nil && time.Since(prev.Timestamp) < s.freshness {
			s.logger.Debug("Returning cached analysis",
				zap.String("email_hash", hash),
				zap.Time("analyzed_at", prev.Timestamp))
			prev.IsHistorical = true
			return prev, nil
		}
	}

	artifacts := s.extractor.Extract(req.Content)
	if req.Sender != "" {
		artifacts.Sender = req.Sender
	}
	if req.Subject != "" {
		artifacts.Subject = req.Subject
	}

	if s.trusted.Contains(artifacts.Sender) {
		s.logger.Info("Skipping analysis for trusted sender domain",
			zap.String("sender", artifacts.Sender))
		result := &AnalysisResult{
			ID:              uuid.NewString(),
			EmailHash:       hash,
			Timestamp:       time.Now().UTC(),
			Verdict:         VerdictSafe,
			RiskScore:       0,
			Reason:          "Sender domain is trusted",
			Artifacts:       artifacts,
			Recommendations: []string{},
		}
		return result, nil
	}

	urlVerdicts, auth, attachmentVerdicts := s.runChecks(ctx, artifacts, req.Attachments)

	result := s.aggregator.Aggregate(artifacts, req.Content, auth, urlVerdicts, attachmentVerdicts)
	result.ID = uuid.NewString()
	result.EmailHash = hash
	result.Timestamp = time.Now().UTC()

	if s.store != nil {
		if err := s.store.Save(ctx, result); err != nil {
			s.logger.Error("Failed to persist analysis result",
				zap.Error(err),
				zap.String("email_hash", hash),
				zap.String("verdict", string(result.Verdict)),
				zap.Float64("risk_score", result.RiskScore))
			return nil, &PersistenceError{Err: err}
		}
		s.refreshStats()
	}

	s.logger.Info("Analyzed email",
		zap.String("email_hash", hash),
		zap.String("verdict", string(result.Verdict)),
		zap.Float64("risk_score", result.RiskScore),
		zap.Int("urls", len(urlVerdicts)),
		zap.Int("attachments", len(attachmentVerdicts)))

	return result, nil
}

// runChecks fans out URL reputation, sender authentication and attachment
// scoring concurrently. Each check gets its own timeout; a failed check
// yields a degraded verdict instead of blocking the others.
func (s *AnalysisService) runChecks(
	ctx context.Context,
	artifacts EmailArtifact,
	attachments []AttachmentInput,
) ([]URLVerdict, *AuthenticationResult, []AttachmentVerdict) {
	var wg sync.WaitGroup

	urlVerdicts := make([]URLVerdict, len(artifacts.URLs))
	for i, u := range artifacts.URLs {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
			defer cancel()
			urlVerdicts[i] = s.urlChecker.Check(cctx, u)
		}(i, u)
	}

	var auth *AuthenticationResult
	if domain := SenderDomain(artifacts.Sender); domain != "" && s.authChecker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
			defer cancel()
			res := s.authChecker.Check(cctx, domain)
			auth = &res
		}()
	}

	attachmentVerdicts := make([]AttachmentVerdict, len(attachments))
	for i, att := range attachments {
		wg.Add(1)
		go func(i int, att AttachmentInput) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
			defer cancel()
			attachmentVerdicts[i] = s.attachments.Analyze(cctx, att.Filename, att.Content)
		}(i, att)
	}

	wg.Wait()
	return urlVerdicts, auth, attachmentVerdicts
}

// refreshStats updates aggregate counters in the background. Best effort: a
// failure is logged and never affects the response.
func (s *AnalysisService) refreshStats() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.UpdateDailyStats(ctx); err != nil {
			s.logger.Warn("Failed to update daily stats", zap.Error(err))
		}
	}()
}
