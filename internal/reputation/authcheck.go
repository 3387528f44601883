package reputation

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

var dmarcPolicyPattern = regexp.MustCompile(`p=(\w+)`)

// Resolver is the DNS lookup surface the auth checker needs. *net.Resolver
// satisfies it.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// DNSAuthChecker looks up SPF, DKIM and DMARC records for a sender domain.
// It implements core.AuthChecker. DNS failures are recorded on the affected
// record and never surface as errors.
type DNSAuthChecker struct {
	resolver      Resolver
	dkimSelectors []string
	logger        *zap.Logger
}

// NewDNSAuthChecker creates an auth checker. A nil resolver falls back to
// net.DefaultResolver.
func NewDNSAuthChecker(resolver Resolver, dkimSelectors []string, logger *zap.Logger) *DNSAuthChecker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &DNSAuthChecker{
		resolver:      resolver,
		dkimSelectors: dkimSelectors,
		logger:        logger,
	}
}

// Check runs the three lookups concurrently and merges the results.
func (c *DNSAuthChecker) Check(ctx context.Context, domain string) core.AuthenticationResult {
	var result core.AuthenticationResult
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		result.SPF = c.checkSPF(ctx, domain)
	}()
	go func() {
		defer wg.Done()
		result.DKIM = c.checkDKIM(ctx, domain)
	}()
	go func() {
		defer wg.Done()
		result.DMARC = c.checkDMARC(ctx, domain)
	}()
	wg.Wait()

	c.logger.Debug("Checked sender authentication",
		zap.String("domain", domain),
		zap.String("spf", string(result.SPF.Status)),
		zap.String("dkim", string(result.DKIM.Status)),
		zap.String("dmarc", string(result.DMARC.Status)))

	return result
}

func (c *DNSAuthChecker) checkSPF(ctx context.Context, domain string) core.AuthRecord {
	records, err := c.resolver.LookupTXT(ctx, domain)
	if err != nil {
		return core.AuthRecord{
			Status:  core.AuthError,
			Policy:  core.PolicyError,
			Details: fmt.Sprintf("Error checking SPF: %v", err),
		}
	}

	for _, record := range records {
		if !strings.Contains(record, "v=spf1") {
			continue
		}
		rec := core.AuthRecord{Status: core.AuthAvailable, Record: record}
		switch {
		case !strings.Contains(record, "all"):
			rec.Policy = core.PolicyNone
			rec.Details = "WARNING: No 'all' mechanism found"
		case strings.Contains(record, "-all"):
			rec.Policy = core.PolicyStrong
			rec.Details = "GOOD: Hard fail policy (-all)"
		case strings.Contains(record, "~all"):
			rec.Policy = core.PolicyMedium
			rec.Details = "MEDIUM: Soft fail policy (~all)"
		case strings.Contains(record, "?all"):
			rec.Policy = core.PolicyWeak
			rec.Details = "WEAK: Neutral policy (?all)"
		case strings.Contains(record, "+all"):
			rec.Policy = core.PolicyDangerous
			rec.Details = "DANGEROUS: Pass all policy (+all)"
		}
		return rec
	}

	return core.AuthRecord{
		Status:  core.AuthMissing,
		Policy:  core.PolicyNone,
		Details: "No SPF record found",
	}
}

func (c *DNSAuthChecker) checkDKIM(ctx context.Context, domain string) core.AuthRecord {
	for _, selector := range c.dkimSelectors {
		name := fmt.Sprintf("%s._domainkey.%s", selector, domain)
		records, err := c.resolver.LookupTXT(ctx, name)
		if err != nil {
			continue
		}
		for _, record := range records {
			if strings.Contains(record, "v=DKIM1") {
				return core.AuthRecord{
					Status:  core.AuthAvailable,
					Record:  record,
					Policy:  core.PolicyStrong,
					Details: fmt.Sprintf("Found DKIM record with selector '%s'", selector),
				}
			}
		}
	}

	return core.AuthRecord{
		Status:  core.AuthMissing,
		Policy:  core.PolicyNone,
		Details: "No DKIM record found with common selectors",
	}
}

func (c *DNSAuthChecker) checkDMARC(ctx context.Context, domain string) core.AuthRecord {
	records, err := c.resolver.LookupTXT(ctx, "_dmarc."+domain)
	if err != nil {
		return core.AuthRecord{
			Status:  core.AuthError,
			Policy:  core.PolicyError,
			Details: fmt.Sprintf("Error checking DMARC: %v", err),
		}
	}

	for _, record := range records {
		if !strings.Contains(record, "v=DMARC1") {
			continue
		}
		rec := core.AuthRecord{Status: core.AuthAvailable, Record: record}
		match := dmarcPolicyPattern.FindStringSubmatch(record)
		if match == nil {
			rec.Policy = core.PolicyNone
			rec.Details = "No policy specified"
			return rec
		}
		switch match[1] {
		case "reject":
			rec.Policy = core.PolicyStrong
			rec.Details = "GOOD: Reject policy"
		case "quarantine":
			rec.Policy = core.PolicyMedium
			rec.Details = "MEDIUM: Quarantine policy"
		case "none":
			rec.Policy = core.PolicyWeak
			rec.Details = "WEAK: Monitor-only policy"
		default:
			rec.Policy = core.PolicyNone
			rec.Details = fmt.Sprintf("Unrecognized policy '%s'", match[1])
		}
		return rec
	}

	return core.AuthRecord{
		Status:  core.AuthMissing,
		Policy:  core.PolicyNone,
		Details: "No DMARC record found",
	}
}
