package attachment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeHashRep struct {
	hits int
	err  error
}

func (f fakeHashRep) CheckFileHash(context.Context, string) (int, json.RawMessage, error) {
	return f.hits, nil, f.err
}

func TestAnalyzeDangerousExtension(t *testing.T) {
	scorer := NewScorer(DefaultPolicy(), nil, zap.NewNop())

	verdict := scorer.Analyze(context.Background(), "setup.exe", []byte("MZ..."))

	if verdict.RiskScore != 50 {
		t.Errorf("risk score = %.0f, want 50", verdict.RiskScore)
	}
	if !verdict.IsMalicious {
		t.Error("dangerous extension alone reaches the malicious threshold")
	}
	if verdict.FileHash == "" {
		t.Error("file hash missing")
	}
}

func TestAnalyzeDoubleExtension(t *testing.T) {
	scorer := NewScorer(DefaultPolicy(), nil, zap.NewNop())

	verdict := scorer.Analyze(context.Background(), "invoice.pdf.exe", []byte("MZ..."))

	// 50 for the extension, 30 for the extra dot.
	if verdict.RiskScore != 80 {
		t.Errorf("risk score = %.0f, want 80", verdict.RiskScore)
	}
	found := false
	for _, f := range verdict.RiskFactors {
		if f == "Multiple file extensions" {
			found = true
		}
	}
	if !found {
		t.Errorf("factors = %v, missing double extension", verdict.RiskFactors)
	}
}

func TestAnalyzeLargeFile(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxSizeBytes = 8
	scorer := NewScorer(policy, nil, zap.NewNop())

	verdict := scorer.Analyze(context.Background(), "notes.txt", []byte("0123456789"))

	if verdict.RiskScore != 10 {
		t.Errorf("risk score = %.0f, want 10", verdict.RiskScore)
	}
	if verdict.IsMalicious {
		t.Error("a large but otherwise clean file is not malicious")
	}
}

func TestAnalyzeVendorHits(t *testing.T) {
	scorer := NewScorer(DefaultPolicy(), fakeHashRep{hits: 4}, zap.NewNop())

	verdict := scorer.Analyze(context.Background(), "report.docx", []byte("PK..."))

	// 5 per flagging vendor.
	if verdict.RiskScore != 20 {
		t.Errorf("risk score = %.0f, want 20", verdict.RiskScore)
	}
	found := false
	for _, f := range verdict.RiskFactors {
		if strings.Contains(f, "VirusTotal: 4 vendors") {
			found = true
		}
	}
	if !found {
		t.Errorf("factors = %v, missing vendor factor", verdict.RiskFactors)
	}
}

func TestAnalyzeHashLookupFailure(t *testing.T) {
	scorer := NewScorer(DefaultPolicy(), fakeHashRep{err: errors.New("quota exceeded")}, zap.NewNop())

	verdict := scorer.Analyze(context.Background(), "funny.scr", []byte("MZ..."))

	if verdict.Error == "" {
		t.Error("lookup failure should be recorded on the verdict")
	}
	// Local heuristics still apply.
	if verdict.RiskScore != 50 {
		t.Errorf("risk score = %.0f, want 50", verdict.RiskScore)
	}
	if !verdict.IsMalicious {
		t.Error("local score alone crosses the threshold")
	}
}

func TestAnalyzeCleanAttachment(t *testing.T) {
	scorer := NewScorer(DefaultPolicy(), nil, zap.NewNop())

	verdict := scorer.Analyze(context.Background(), "minutes.txt", []byte("meeting notes"))

	if verdict.RiskScore != 0 {
		t.Errorf("risk score = %.0f, want 0", verdict.RiskScore)
	}
	if verdict.IsMalicious {
		t.Error("clean attachment marked malicious")
	}
	if verdict.Size != int64(len("meeting notes")) {
		t.Errorf("size = %d", verdict.Size)
	}
}
