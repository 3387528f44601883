package core

import (
	"strings"
	"testing"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultScoringPolicy(), nil)
}

func TestAggregateCleanEmail(t *testing.T) {
	agg := newTestAggregator()

	result := agg.Aggregate(EmailArtifact{Sender: "alice@example.com"},
		"Hi Bob, see you at the meeting tomorrow.", nil, nil, nil)

	if result.Verdict != VerdictSafe {
		t.Errorf("verdict = %s, want %s", result.Verdict, VerdictSafe)
	}
	if result.RiskScore != 0 {
		t.Errorf("risk score = %.0f, want 0", result.RiskScore)
	}
	if result.Reason != "No suspicious indicators found" {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", result.Recommendations)
	}
}

func TestAggregateMaliciousEmail(t *testing.T) {
	agg := newTestAggregator()

	auth := &AuthenticationResult{
		SPF:   AuthRecord{Status: AuthMissing},
		DKIM:  AuthRecord{Status: AuthMissing},
		DMARC: AuthRecord{Status: AuthMissing},
	}
	result := agg.Aggregate(EmailArtifact{Sender: "alert@secure-login.tk"},
		"URGENT: verify your password now", auth, nil, nil)

	// 30 for the sender TLD, 3x15 for missing auth records, 10 for one
	// content pattern.
	if result.RiskScore != 85 {
		t.Errorf("risk score = %.0f, want 85", result.RiskScore)
	}
	if result.Verdict != VerdictMalicious {
		t.Errorf("verdict = %s, want %s", result.Verdict, VerdictMalicious)
	}
	if !strings.Contains(result.Reason, "Suspicious sender domain: secure-login.tk") {
		t.Errorf("reason missing sender factor: %q", result.Reason)
	}
	if !strings.Contains(result.Reason, "Missing SPF record") {
		t.Errorf("reason missing SPF factor: %q", result.Reason)
	}
	if !strings.Contains(result.Reason, "Suspicious patterns found") {
		t.Errorf("reason missing pattern factor: %q", result.Reason)
	}
	found := false
	for _, rec := range result.Recommendations {
		if rec == "Delete this email immediately" {
			found = true
		}
	}
	if !found {
		t.Errorf("malicious verdict should recommend deletion, got %v", result.Recommendations)
	}
}

func TestAggregateSuspiciousBoundary(t *testing.T) {
	agg := newTestAggregator()

	// Sender TLD alone contributes exactly the suspicious threshold.
	result := agg.Aggregate(EmailArtifact{Sender: "promo@deals.xyz"},
		"have a great day", nil, nil, nil)

	if result.RiskScore != 30 {
		t.Errorf("risk score = %.0f, want 30", result.RiskScore)
	}
	if result.Verdict != VerdictSuspicious {
		t.Errorf("verdict = %s, want %s", result.Verdict, VerdictSuspicious)
	}
}

func TestAggregateAuthSkippedWithoutResult(t *testing.T) {
	agg := newTestAggregator()

	// No auth result means the sender domain was never checked, so no
	// missing-record penalties apply.
	result := agg.Aggregate(EmailArtifact{}, "hello there", nil, nil, nil)

	if result.RiskScore != 0 {
		t.Errorf("risk score = %.0f, want 0", result.RiskScore)
	}
}

func TestAggregatePatternsShareOneFactor(t *testing.T) {
	agg := newTestAggregator()

	// Two distinct patterns: each adds weight but they appear as a single
	// combined reason entry.
	result := agg.Aggregate(EmailArtifact{},
		"urgent bitcoin investment opportunity", nil, nil, nil)

	if result.RiskScore != 20 {
		t.Errorf("risk score = %.0f, want 20", result.RiskScore)
	}
	if got := strings.Count(result.Reason, "Suspicious patterns found"); got != 1 {
		t.Errorf("pattern factor appears %d times, want 1: %q", got, result.Reason)
	}
}

func TestAggregateScoreClamp(t *testing.T) {
	agg := newTestAggregator()

	urls := []URLVerdict{
		{URL: "http://a.tk", IsMalicious: true},
		{URL: "http://b.tk", IsMalicious: true},
		{URL: "http://c.tk", IsMalicious: true},
		{URL: "http://d.tk", IsMalicious: true},
	}
	result := agg.Aggregate(EmailArtifact{}, "hello", nil, urls, nil)

	// Raw sum is 120 but the displayed score caps at 100.
	if result.RiskScore != 100 {
		t.Errorf("risk score = %.0f, want 100", result.RiskScore)
	}
	if result.Verdict != VerdictMalicious {
		t.Errorf("verdict = %s, want %s", result.Verdict, VerdictMalicious)
	}
	if !strings.Contains(result.Reason, "Found 4 malicious URLs") {
		t.Errorf("reason missing URL factor: %q", result.Reason)
	}
}

func TestAggregateAttachments(t *testing.T) {
	agg := newTestAggregator()

	attachments := []AttachmentVerdict{
		{Filename: "invoice.pdf.exe", IsMalicious: true},
		{Filename: "notes.txt", IsMalicious: false},
	}
	result := agg.Aggregate(EmailArtifact{}, "hello", nil, nil, attachments)

	if result.RiskScore != 40 {
		t.Errorf("risk score = %.0f, want 40", result.RiskScore)
	}
	if result.Verdict != VerdictSuspicious {
		t.Errorf("verdict = %s, want %s", result.Verdict, VerdictSuspicious)
	}
	if !strings.Contains(result.Reason, "Found 1 suspicious attachments") {
		t.Errorf("reason missing attachment factor: %q", result.Reason)
	}
}

func TestSenderDomain(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"user@example.com", "example.com"},
		{"no-at-sign", ""},
		{"a@b@c", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SenderDomain(tt.address); got != tt.want {
			t.Errorf("SenderDomain(%q) = %q, want %q", tt.address, got, tt.want)
		}
	}
}

func TestEmailHashStable(t *testing.T) {
	a := EmailHash("body", "sender@x.com", "subject")
	b := EmailHash("body", "sender@x.com", "subject")
	if a != b {
		t.Errorf("same input produced different hashes: %s vs %s", a, b)
	}
	if c := EmailHash("body", "other@x.com", "subject"); c == a {
		t.Error("different sender produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
}
