// Package reputation implements URL reputation and sender authentication
// checks. Local heuristics always run; external providers are consulted only
// when an API key is configured, and their failures degrade to recorded risk
// factors instead of failing the analysis.
package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

var ipLiteralPattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// VerdictCache caches URL verdicts between analyses.
type VerdictCache interface {
	Get(ctx context.Context, rawURL string) (*core.URLVerdict, bool)
	Set(ctx context.Context, rawURL string, verdict *core.URLVerdict)
}

// URLReputationChecker evaluates a URL with local heuristics plus optional
// VirusTotal and PhishTank lookups. It implements core.URLChecker.
type URLReputationChecker struct {
	virusTotal     *VirusTotalClient
	phishTank      *PhishTankClient
	cache          VerdictCache
	suspiciousTLDs []string
	maxURLLength   int
	logger         *zap.Logger
}

// NewURLReputationChecker creates a URL checker. virusTotal, phishTank and
// cache may each be nil, disabling the corresponding behavior.
func NewURLReputationChecker(
	virusTotal *VirusTotalClient,
	phishTank *PhishTankClient,
	cache VerdictCache,
	suspiciousTLDs []string,
	maxURLLength int,
	logger *zap.Logger,
) *URLReputationChecker {
	return &URLReputationChecker{
		virusTotal:     virusTotal,
		phishTank:      phishTank,
		cache:          cache,
		suspiciousTLDs: suspiciousTLDs,
		maxURLLength:   maxURLLength,
		logger:         logger,
	}
}

// Check evaluates a single URL. It never returns an error; provider failures
// are recorded on the verdict.
func (c *URLReputationChecker) Check(ctx context.Context, rawURL string) core.URLVerdict {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, rawURL); ok {
			c.logger.Debug("URL verdict cache hit", zap.String("url", rawURL))
			return *cached
		}
	}

	verdict := core.URLVerdict{
		URL:         rawURL,
		RiskFactors: []string{},
		Sources:     map[string]json.RawMessage{},
	}

	decoded, err := url.QueryUnescape(rawURL)
	if err != nil {
		decoded = rawURL
	}
	if decoded != rawURL {
		verdict.RiskFactors = append(verdict.RiskFactors, "URL is encoded/obfuscated")
	}

	if parsed, err := url.Parse(decoded); err == nil {
		host := strings.ToLower(parsed.Hostname())
		for _, tld := range c.suspiciousTLDs {
			if strings.HasSuffix(host, tld) {
				labels := strings.Split(host, ".")
				verdict.RiskFactors = append(verdict.RiskFactors,
					fmt.Sprintf("Suspicious TLD: %s", labels[len(labels)-1]))
				break
			}
		}
	}

	if len(decoded) > c.maxURLLength {
		verdict.RiskFactors = append(verdict.RiskFactors, "Unusually long URL")
	}

	if ipLiteralPattern.MatchString(decoded) {
		verdict.RiskFactors = append(verdict.RiskFactors, "Contains IP address")
	}

	if c.virusTotal != nil {
		stats, raw, err := c.virusTotal.CheckURL(ctx, decoded)
		if err != nil {
			verdict.Error = err.Error()
			verdict.RiskFactors = append(verdict.RiskFactors,
				fmt.Sprintf("VirusTotal check failed: %v", err))
		} else if raw != nil {
			verdict.Sources["virustotal"] = raw
			if stats.Malicious > 0 {
				verdict.IsMalicious = true
				verdict.RiskFactors = append(verdict.RiskFactors,
					fmt.Sprintf("VirusTotal: %d vendors flagged as malicious", stats.Malicious))
			}
		}
	}

	if c.phishTank != nil {
		result, raw, err := c.phishTank.CheckURL(ctx, decoded)
		if err != nil {
			verdict.Error = err.Error()
			verdict.RiskFactors = append(verdict.RiskFactors,
				fmt.Sprintf("PhishTank check failed: %v", err))
		} else {
			verdict.Sources["phishtank"] = raw
			if result.InDatabase && result.Verified {
				verdict.IsMalicious = true
				verdict.RiskFactors = append(verdict.RiskFactors, "URL found in PhishTank database")
			}
		}
	}

	if len(verdict.Sources) == 0 {
		verdict.Sources = nil
	}

	if c.cache != nil {
		c.cache.Set(ctx, rawURL, &verdict)
	}

	return verdict
}

// Stop releases the verdict cache, when one is configured.
func (c *URLReputationChecker) Stop() {
	if stopper, ok := c.cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}
