package core

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ScoringPolicy holds the weights, thresholds and pattern tables the
// aggregator scores against. All values are externally configurable.
type ScoringPolicy struct {
	SenderTLDWeight           float64
	MissingAuthWeight         float64
	PatternWeight             float64
	MaliciousURLWeight        float64
	MaliciousAttachmentWeight float64

	SuspiciousThreshold float64
	MaliciousThreshold  float64
	MaxScore            float64

	MaliciousTLDs []string
	Patterns      []*regexp.Regexp
}

// DefaultMaliciousTLDs lists TLDs commonly abused by phishing senders.
var DefaultMaliciousTLDs = []string{
	".tk", ".top", ".xyz", ".zip", ".review", ".country", ".kim", ".cricket",
	".science", ".work", ".party", ".gq", ".link", ".win", ".bid", ".loan",
}

// DefaultSuspiciousPatterns are the content heuristics scored against the
// lowercased email body.
var DefaultSuspiciousPatterns = []string{
	`urgent|password|account.*suspend|verify.*account`,
	`bank.*transfer|credit.*card|social.*security`,
	`\.exe$|\.zip$|\.scr$`,
	`bitcoin|crypto|wallet|investment`,
	`login.*verify|security.*alert|unusual.*activity`,
}

// DefaultScoringPolicy returns the stock weights and thresholds.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		SenderTLDWeight:           30,
		MissingAuthWeight:         15,
		PatternWeight:             10,
		MaliciousURLWeight:        30,
		MaliciousAttachmentWeight: 40,
		SuspiciousThreshold:       30,
		MaliciousThreshold:        60,
		MaxScore:                  100,
		MaliciousTLDs:             DefaultMaliciousTLDs,
		Patterns:                  CompilePatterns(DefaultSuspiciousPatterns),
	}
}

// CompilePatterns compiles the configured content patterns, skipping any that
// fail to compile.
func CompilePatterns(exprs []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// Aggregator combines artifact, authentication, content, URL and attachment
// findings into a single verdict. Scoring is purely additive and never fails
// for any well-formed input.
type Aggregator struct {
	policy ScoringPolicy
	logger *zap.Logger
}

// NewAggregator creates an aggregator with the given scoring policy.
func NewAggregator(policy ScoringPolicy, logger *zap.Logger) *Aggregator {
	return &Aggregator{policy: policy, logger: logger}
}

// Aggregate applies the scoring rules in fixed order: sender domain,
// authentication records, content patterns, URL verdicts, attachment
// verdicts. The verdict is decided on the raw sum; the reported score is
// clamped to MaxScore for display.
func (a *Aggregator) Aggregate(
	artifacts EmailArtifact,
	content string,
	auth *AuthenticationResult,
	urlVerdicts []URLVerdict,
	attachmentVerdicts []AttachmentVerdict,
) *AnalysisResult {
	var (
		score   float64
		factors []string
	)

	if domain := SenderDomain(artifacts.Sender); domain != "" {
		lower := strings.ToLower(domain)
		for _, tld := range a.policy.MaliciousTLDs {
			if strings.Contains(lower, tld) {
				factors = append(factors, fmt.Sprintf("Suspicious sender domain: %s", domain))
				score += a.policy.SenderTLDWeight
				break
			}
		}
	}

	if auth != nil {
		if auth.SPF.Record == "" {
			factors = append(factors, "Missing SPF record")
			score += a.policy.MissingAuthWeight
		}
		if auth.DKIM.Record == "" {
			factors = append(factors, "Missing DKIM record")
			score += a.policy.MissingAuthWeight
		}
		if auth.DMARC.Record == "" {
			factors = append(factors, "Missing DMARC record")
			score += a.policy.MissingAuthWeight
		}
	}

	lowered := strings.ToLower(content)
	var matched []string
	for _, re := range a.policy.Patterns {
		if re.MatchString(lowered) {
			matched = append(matched, re.String())
			score += a.policy.PatternWeight
		}
	}
	if len(matched) > 0 {
		factors = append(factors, fmt.Sprintf("Suspicious patterns found: %s", strings.Join(matched, ", ")))
	}

	maliciousURLs := 0
	for _, v := range urlVerdicts {
		if v.IsMalicious {
			maliciousURLs++
		}
	}
	if maliciousURLs > 0 {
		factors = append(factors, fmt.Sprintf("Found %d malicious URLs", maliciousURLs))
		score += a.policy.MaliciousURLWeight * float64(maliciousURLs)
	}

	maliciousAttachments := 0
	for _, v := range attachmentVerdicts {
		if v.IsMalicious {
			maliciousAttachments++
		}
	}
	if maliciousAttachments > 0 {
		factors = append(factors, fmt.Sprintf("Found %d suspicious attachments", maliciousAttachments))
		score += a.policy.MaliciousAttachmentWeight * float64(maliciousAttachments)
	}

	// Thresholds compare the unclamped sum; only the displayed score is capped.
	verdict := VerdictSafe
	switch {
	case score >= a.policy.MaliciousThreshold:
		verdict = VerdictMalicious
	case score >= a.policy.SuspiciousThreshold:
		verdict = VerdictSuspicious
	}

	reason := "No suspicious indicators found"
	if len(factors) > 0 {
		reason = strings.Join(factors, "; ")
	}

	displayed := score
	if displayed > a.policy.MaxScore {
		displayed = a.policy.MaxScore
	}

	if a.logger != nil {
		a.logger.Debug("Aggregated risk score",
			zap.Float64("raw_score", score),
			zap.Float64("risk_score", displayed),
			zap.String("verdict", string(verdict)),
			zap.Int("malicious_urls", maliciousURLs),
			zap.Int("malicious_attachments", maliciousAttachments))
	}

	return &AnalysisResult{
		Verdict:            verdict,
		RiskScore:          displayed,
		Reason:             reason,
		Artifacts:          artifacts,
		Recommendations:    recommendationsFor(verdict),
		Auth:               auth,
		URLVerdicts:        urlVerdicts,
		AttachmentVerdicts: attachmentVerdicts,
	}
}

func recommendationsFor(verdict Verdict) []string {
	if verdict == VerdictSafe {
		return []string{}
	}
	recs := []string{
		"Do not click on any links in this email",
		"Do not download or open any attachments",
		"Do not reply to this email",
	}
	if verdict == VerdictMalicious {
		recs = append(recs,
			"Report this email to your IT security team",
			"Delete this email immediately")
	}
	return recs
}

// SenderDomain extracts the domain part of an email address, or "" when the
// address has no @.
func SenderDomain(address string) string {
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
