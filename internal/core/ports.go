package core

import (
	"context"
	"time"
)

// ArtifactExtractor parses raw email content into a normalized artifact set.
// Malformed content degrades to empty fields rather than failing.
type ArtifactExtractor interface {
	Extract(raw string) EmailArtifact
}

// URLChecker assesses the reputation of a single URL. Provider failures are
// folded into the verdict; Check never fails the analysis.
type URLChecker interface {
	Check(ctx context.Context, rawURL string) URLVerdict
}

// AuthChecker looks up the SPF, DKIM and DMARC records of a sender domain.
// DNS failures are recorded on the affected record, never returned.
type AuthChecker interface {
	Check(ctx context.Context, domain string) AuthenticationResult
}

// AttachmentAnalyzer scores a single attachment.
type AttachmentAnalyzer interface {
	Analyze(ctx context.Context, filename string, content []byte) AttachmentVerdict
}

// ResultStore persists analysis results keyed by email hash.
type ResultStore interface {
	// FindByHash returns the stored result for a hash, or nil when absent.
	FindByHash(ctx context.Context, hash string) (*AnalysisResult, error)

	// Save stores a result together with its URL and attachment sub-verdicts.
	// A write race on the same hash resolves last-write-wins.
	Save(ctx context.Context, result *AnalysisResult) error

	// RecentThreats lists non-SAFE results newer than since, newest first.
	RecentThreats(ctx context.Context, since time.Time, limit int) ([]ThreatSummary, error)

	// Stats returns the aggregate counts for the day containing the given time.
	Stats(ctx context.Context, day time.Time) (*DailyStats, error)

	// UpdateDailyStats refreshes the stored aggregate counters. Best effort.
	UpdateDailyStats(ctx context.Context) error
}

// TextClassifier is an advisory spam classifier for arbitrary text, backed by
// an external model provider.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (*TextClassification, error)
}
