// Package attachment scores email attachments with additive heuristics and
// an optional external hash-reputation lookup.
package attachment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

// HashReputation is an external file-hash reputation provider. The returned
// count is the number of vendors flagging the hash as malicious.
type HashReputation interface {
	CheckFileHash(ctx context.Context, hash string) (vendorHits int, raw json.RawMessage, err error)
}

// Policy holds the attachment scoring weights and limits.
type Policy struct {
	MaxSizeBytes       int64
	DangerousExts      []string
	LargeFileWeight    float64
	DangerousExtWeight float64
	DoubleExtWeight    float64
	VendorHitWeight    float64
	MaliciousThreshold float64
}

// DefaultPolicy returns the stock attachment scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxSizeBytes: 10 * 1024 * 1024,
		DangerousExts: []string{
			".exe", ".bat", ".cmd", ".scr", ".js", ".vbs", ".ps1", ".msi", ".jar",
		},
		LargeFileWeight:    10,
		DangerousExtWeight: 50,
		DoubleExtWeight:    30,
		VendorHitWeight:    5,
		MaliciousThreshold: 50,
	}
}

// Scorer assesses attachments. It implements core.AttachmentAnalyzer.
type Scorer struct {
	policy  Policy
	hashRep HashReputation
	logger  *zap.Logger
}

// NewScorer creates an attachment scorer. hashRep may be nil, disabling the
// external hash lookup.
func NewScorer(policy Policy, hashRep HashReputation, logger *zap.Logger) *Scorer {
	return &Scorer{policy: policy, hashRep: hashRep, logger: logger}
}

// Analyze scores one attachment. The hash is computed over the full content
// so identical files map to the same key across analyses. A hash-reputation
// failure is recorded on the verdict and scoring continues.
func (s *Scorer) Analyze(ctx context.Context, filename string, content []byte) core.AttachmentVerdict {
	sum := sha256.Sum256(content)
	verdict := core.AttachmentVerdict{
		Filename:    filename,
		Size:        int64(len(content)),
		MIMEType:    http.DetectContentType(content),
		FileHash:    hex.EncodeToString(sum[:]),
		RiskFactors: []string{},
	}

	if verdict.Size > s.policy.MaxSizeBytes {
		verdict.RiskFactors = append(verdict.RiskFactors, "Large file size")
		verdict.RiskScore += s.policy.LargeFileWeight
	}

	lower := strings.ToLower(filename)
	for _, ext := range s.policy.DangerousExts {
		if strings.HasSuffix(lower, ext) {
			verdict.RiskFactors = append(verdict.RiskFactors, "Dangerous file extension")
			verdict.RiskScore += s.policy.DangerousExtWeight
			break
		}
	}

	// Crude double-extension heuristic: any filename with more than one dot.
	if strings.Count(filename, ".") > 1 {
		verdict.RiskFactors = append(verdict.RiskFactors, "Multiple file extensions")
		verdict.RiskScore += s.policy.DoubleExtWeight
	}

	if s.hashRep != nil {
		hits, _, err := s.hashRep.CheckFileHash(ctx, verdict.FileHash)
		if err != nil {
			verdict.Error = err.Error()
			s.logger.Warn("Hash reputation lookup failed",
				zap.Error(err),
				zap.String("filename", filename),
				zap.String("file_hash", verdict.FileHash))
		} else if hits > 0 {
			verdict.RiskFactors = append(verdict.RiskFactors,
				fmt.Sprintf("VirusTotal: %d vendors flagged as malicious", hits))
			verdict.RiskScore += s.policy.VendorHitWeight * float64(hits)
		}
	}

	verdict.IsMalicious = verdict.RiskScore >= s.policy.MaliciousThreshold
	return verdict
}
