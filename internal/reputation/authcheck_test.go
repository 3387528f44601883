package reputation

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

type fakeResolver struct {
	records map[string][]string
	err     error
}

func (f *fakeResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	records, ok := f.records[name]
	if !ok {
		return nil, errors.New("no such host")
	}
	return records, nil
}

func newAuthChecker(records map[string][]string) *DNSAuthChecker {
	return NewDNSAuthChecker(&fakeResolver{records: records},
		[]string{"default", "google", "dkim", "k1"}, zap.NewNop())
}

func TestCheckSPFPolicies(t *testing.T) {
	tests := []struct {
		name    string
		record  string
		policy  core.PolicyStrength
		details string
	}{
		{"hard fail", "v=spf1 include:_spf.example.com -all", core.PolicyStrong, "GOOD: Hard fail policy (-all)"},
		{"soft fail", "v=spf1 include:_spf.example.com ~all", core.PolicyMedium, "MEDIUM: Soft fail policy (~all)"},
		{"neutral", "v=spf1 ?all", core.PolicyWeak, "WEAK: Neutral policy (?all)"},
		{"pass all", "v=spf1 +all", core.PolicyDangerous, "DANGEROUS: Pass all policy (+all)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newAuthChecker(map[string][]string{
				"example.com": {"some other txt", tt.record},
			})
			result := checker.Check(context.Background(), "example.com")

			if result.SPF.Status != core.AuthAvailable {
				t.Errorf("status = %s, want available", result.SPF.Status)
			}
			if result.SPF.Policy != tt.policy {
				t.Errorf("policy = %s, want %s", result.SPF.Policy, tt.policy)
			}
			if result.SPF.Details != tt.details {
				t.Errorf("details = %q, want %q", result.SPF.Details, tt.details)
			}
			if result.SPF.Record != tt.record {
				t.Errorf("record = %q, want %q", result.SPF.Record, tt.record)
			}
		})
	}
}

func TestCheckSPFMissing(t *testing.T) {
	checker := newAuthChecker(map[string][]string{
		"example.com": {"unrelated txt record"},
	})
	result := checker.Check(context.Background(), "example.com")

	if result.SPF.Status != core.AuthMissing {
		t.Errorf("status = %s, want missing", result.SPF.Status)
	}
	if result.SPF.Details != "No SPF record found" {
		t.Errorf("details = %q", result.SPF.Details)
	}
}

func TestCheckSPFLookupError(t *testing.T) {
	checker := NewDNSAuthChecker(&fakeResolver{err: errors.New("timeout")}, nil, zap.NewNop())
	result := checker.Check(context.Background(), "example.com")

	if result.SPF.Status != core.AuthError {
		t.Errorf("status = %s, want error", result.SPF.Status)
	}
	if result.SPF.Policy != core.PolicyError {
		t.Errorf("policy = %s, want error", result.SPF.Policy)
	}
}

func TestCheckDKIMSelectors(t *testing.T) {
	checker := newAuthChecker(map[string][]string{
		"example.com":                    {"v=spf1 -all"},
		"google._domainkey.example.com":  {"v=DKIM1; k=rsa; p=MIGf..."},
		"_dmarc.example.com":             {"v=DMARC1; p=reject"},
	})
	result := checker.Check(context.Background(), "example.com")

	if result.DKIM.Status != core.AuthAvailable {
		t.Errorf("status = %s, want available", result.DKIM.Status)
	}
	if result.DKIM.Details != "Found DKIM record with selector 'google'" {
		t.Errorf("details = %q", result.DKIM.Details)
	}
}

func TestCheckDKIMMissing(t *testing.T) {
	checker := newAuthChecker(map[string][]string{
		"example.com": {"v=spf1 -all"},
	})
	result := checker.Check(context.Background(), "example.com")

	if result.DKIM.Status != core.AuthMissing {
		t.Errorf("status = %s, want missing", result.DKIM.Status)
	}
	if result.DKIM.Details != "No DKIM record found with common selectors" {
		t.Errorf("details = %q", result.DKIM.Details)
	}
}

func TestCheckDMARCPolicies(t *testing.T) {
	tests := []struct {
		record  string
		policy  core.PolicyStrength
		details string
	}{
		{"v=DMARC1; p=reject; rua=mailto:d@example.com", core.PolicyStrong, "GOOD: Reject policy"},
		{"v=DMARC1; p=quarantine", core.PolicyMedium, "MEDIUM: Quarantine policy"},
		{"v=DMARC1; p=none", core.PolicyWeak, "WEAK: Monitor-only policy"},
		{"v=DMARC1;", core.PolicyNone, "No policy specified"},
	}
	for _, tt := range tests {
		checker := newAuthChecker(map[string][]string{
			"_dmarc.example.com": {tt.record},
		})
		result := checker.Check(context.Background(), "example.com")

		if result.DMARC.Policy != tt.policy {
			t.Errorf("record %q: policy = %s, want %s", tt.record, result.DMARC.Policy, tt.policy)
		}
		if result.DMARC.Details != tt.details {
			t.Errorf("record %q: details = %q, want %q", tt.record, result.DMARC.Details, tt.details)
		}
	}
}

func TestCheckDMARCMissing(t *testing.T) {
	checker := newAuthChecker(map[string][]string{})
	result := checker.Check(context.Background(), "example.com")

	if result.DMARC.Status != core.AuthError {
		// The fake resolver returns an error for unknown names, matching a
		// real NXDOMAIN lookup.
		t.Errorf("status = %s, want error", result.DMARC.Status)
	}
}
