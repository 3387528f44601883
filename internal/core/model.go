package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Verdict is the final classification of an analyzed email.
type Verdict string

const (
	VerdictSafe       Verdict = "SAFE"
	VerdictSuspicious Verdict = "SUSPICIOUS"
	VerdictMalicious  Verdict = "MALICIOUS"
)

// AuthStatus describes whether an authentication DNS record was found.
type AuthStatus string

const (
	AuthAvailable AuthStatus = "available"
	AuthMissing   AuthStatus = "missing"
	AuthError     AuthStatus = "error"
)

// PolicyStrength classifies how strict an SPF or DMARC policy is.
type PolicyStrength string

const (
	PolicyStrong    PolicyStrength = "strong"
	PolicyMedium    PolicyStrength = "medium"
	PolicyWeak      PolicyStrength = "weak"
	PolicyDangerous PolicyStrength = "dangerous"
	PolicyNone      PolicyStrength = "none"
	PolicyError     PolicyStrength = "error"
)

// EmailArtifact is the normalized set of indicators extracted from a raw
// email. It is produced once per analysis and not modified afterwards.
type EmailArtifact struct {
	Sender      string   `json:"sender"`
	Subject     string   `json:"subject"`
	URLs        []string `json:"urls"`
	IPs         []string `json:"ips"`
	Attachments []string `json:"attachments"`
}

// AuthRecord holds the outcome of one authentication lookup (SPF, DKIM or DMARC).
type AuthRecord struct {
	Status  AuthStatus     `json:"status"`
	Record  string         `json:"record,omitempty"`
	Policy  PolicyStrength `json:"policy"`
	Details string         `json:"details,omitempty"`
}

// AuthenticationResult bundles the SPF, DKIM and DMARC lookups for a sender domain.
type AuthenticationResult struct {
	SPF   AuthRecord `json:"spf"`
	DKIM  AuthRecord `json:"dkim"`
	DMARC AuthRecord `json:"dmarc"`
}

// URLVerdict is the reputation assessment of a single URL.
type URLVerdict struct {
	URL         string                     `json:"url"`
	IsMalicious bool                       `json:"is_malicious"`
	RiskFactors []string                   `json:"risk_factors"`
	Sources     map[string]json.RawMessage `json:"sources,omitempty"`
	Error       string                     `json:"error,omitempty"`
}

// AttachmentVerdict is the risk assessment of a single attachment.
type AttachmentVerdict struct {
	Filename    string   `json:"filename"`
	Size        int64    `json:"size"`
	MIMEType    string   `json:"mime_type,omitempty"`
	FileHash    string   `json:"file_hash,omitempty"`
	RiskScore   float64  `json:"risk_score"`
	IsMalicious bool     `json:"is_malicious"`
	RiskFactors []string `json:"risk_factors"`
	Error       string   `json:"error,omitempty"`
}

// AnalysisResult is the outcome of one email analysis. RiskScore is clamped
// to [0,100] for display; the verdict is derived from the raw accumulated
// score before clamping.
type AnalysisResult struct {
	ID                 string                `json:"id"`
	EmailHash          string                `json:"email_hash"`
	Timestamp          time.Time             `json:"timestamp"`
	Verdict            Verdict               `json:"verdict"`
	RiskScore          float64               `json:"risk_score"`
	Reason             string                `json:"reason"`
	Artifacts          EmailArtifact         `json:"artifacts"`
	Recommendations    []string              `json:"recommendations"`
	IsHistorical       bool                  `json:"is_historical"`
	Auth               *AuthenticationResult `json:"auth,omitempty"`
	URLVerdicts        []URLVerdict          `json:"urls_analysis,omitempty"`
	AttachmentVerdicts []AttachmentVerdict   `json:"attachments_analysis,omitempty"`
}

// AttachmentInput is a decoded attachment submitted for analysis.
type AttachmentInput struct {
	Filename string
	Content  []byte
}

// AnalyzeRequest is a validated analysis request. Sender and Subject, when
// set, take precedence over values parsed out of Content.
type AnalyzeRequest struct {
	Content     string
	Sender      string
	Subject     string
	Attachments []AttachmentInput
}

// ThreatSummary is a condensed view of a stored non-SAFE analysis.
type ThreatSummary struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	Verdict   Verdict   `json:"verdict"`
	RiskScore float64   `json:"risk_score"`
}

// DailyStats aggregates analysis counts for one day.
type DailyStats struct {
	TotalEmails     int `json:"total_emails"`
	MaliciousCount  int `json:"malicious_count"`
	SuspiciousCount int `json:"suspicious_count"`
}

// TextClassification is the advisory result of the text spam classifier. It
// never feeds into the additive risk score.
type TextClassification struct {
	IsSpam      bool    `json:"is_spam"`
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
	Model       string  `json:"model"`
}

// EmailHash derives the content-addressed dedup key for an email. Two
// requests with the same (content, sender, subject) triple always map to the
// same key.
func EmailHash(content, sender, subject string) string {
	h := sha256.Sum256([]byte(content + "|" + sender + "|" + subject))
	return hex.EncodeToString(h[:])
}
