package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/adapters/repcache"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/attachment"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/config"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/reputation"
)

// CheckerFactory creates the reputation checkers and the attachment scorer
// from configuration.
type CheckerFactory struct {
	cfg    *config.Config
	logger *zap.Logger

	// shared so the attachment scorer reuses the URL checker's client
	virusTotal *reputation.VirusTotalClient
}

// NewCheckerFactory creates a new checker factory
func NewCheckerFactory(cfg *config.Config, logger *zap.Logger) *CheckerFactory {
	f := &CheckerFactory{cfg: cfg, logger: logger}
	if key := cfg.GetString("reputation.virustotal_api_key"); key != "" {
		f.virusTotal = reputation.NewVirusTotalClient(key, logger)
	}
	return f
}

// CreateURLChecker creates the URL reputation checker. Providers without an
// API key are disabled rather than failing.
func (f *CheckerFactory) CreateURLChecker() (core.URLChecker, error) {
	repCfg := f.cfg.GetReputation()

	var phishTank *reputation.PhishTankClient
	if repCfg.PhishTankAPIKey != "" {
		phishTank = reputation.NewPhishTankClient(repCfg.PhishTankAPIKey, f.logger)
	}

	cache, err := f.createVerdictCache(repCfg)
	if err != nil {
		return nil, err
	}

	return reputation.NewURLReputationChecker(
		f.virusTotal,
		phishTank,
		cache,
		repCfg.SuspiciousTLDs,
		repCfg.MaxURLLength,
		f.logger,
	), nil
}

func (f *CheckerFactory) createVerdictCache(repCfg config.ReputationConfig) (reputation.VerdictCache, error) {
	switch repCfg.CacheType {
	case "none":
		return nil, nil
	case "memory":
		return repcache.NewMemoryCache(repCfg.CacheTTL, f.logger), nil
	case "redis":
		return repcache.NewRedisCache(repCfg.RedisAddress, repCfg.CacheTTL, f.logger)
	default:
		return nil, fmt.Errorf("unsupported reputation cache type: %s", repCfg.CacheType)
	}
}

// CreateAuthChecker creates the DNS-based sender authentication checker.
func (f *CheckerFactory) CreateAuthChecker() core.AuthChecker {
	return reputation.NewDNSAuthChecker(nil, f.cfg.GetStringSlice("auth.dkim_selectors"), f.logger)
}

// CreateAttachmentAnalyzer creates the attachment scorer. The VirusTotal hash
// lookup is enabled only when an API key is configured.
func (f *CheckerFactory) CreateAttachmentAnalyzer() core.AttachmentAnalyzer {
	attCfg := f.cfg.GetAttachment()
	policy := attachment.Policy{
		MaxSizeBytes:       attCfg.MaxSizeBytes,
		DangerousExts:      attCfg.DangerousExts,
		LargeFileWeight:    attCfg.LargeFileWeight,
		DangerousExtWeight: attCfg.DangerousExtWeight,
		DoubleExtWeight:    attCfg.DoubleExtWeight,
		VendorHitWeight:    attCfg.VendorHitWeight,
		MaliciousThreshold: attCfg.MaliciousThreshold,
	}

	var hashRep attachment.HashReputation
	if f.virusTotal != nil {
		hashRep = reputation.NewHashLookup(f.virusTotal)
	}
	return attachment.NewScorer(policy, hashRep, f.logger)
}

// CreateScoringPolicy builds the aggregator policy, falling back to the stock
// tables when the configuration leaves them empty.
func (f *CheckerFactory) CreateScoringPolicy() core.ScoringPolicy {
	scoringCfg := f.cfg.GetScoring()

	tlds := scoringCfg.MaliciousTLDs
	if len(tlds) == 0 {
		tlds = core.DefaultMaliciousTLDs
	}
	exprs := scoringCfg.SuspiciousPatterns
	if len(exprs) == 0 {
		exprs = core.DefaultSuspiciousPatterns
	}

	return core.ScoringPolicy{
		SenderTLDWeight:           scoringCfg.SenderTLDWeight,
		MissingAuthWeight:         scoringCfg.MissingAuthWeight,
		PatternWeight:             scoringCfg.PatternWeight,
		MaliciousURLWeight:        scoringCfg.MaliciousURLWeight,
		MaliciousAttachmentWeight: scoringCfg.MaliciousAttachmentWeight,
		SuspiciousThreshold:       scoringCfg.SuspiciousThreshold,
		MaliciousThreshold:        scoringCfg.MaliciousThreshold,
		MaxScore:                  scoringCfg.MaxScore,
		MaliciousTLDs:             tlds,
		Patterns:                  core.CompilePatterns(exprs),
	}
}
