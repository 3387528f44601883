package config

import "time"

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress   string
	CORSEnabled     bool
	ShutdownTimeout time.Duration
}

// SMTPConfig represents the SMTP gateway configuration
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	RejectMalicious bool
	UpstreamAddress string
	MaxMessageBytes int64
}

// ScoringConfig represents the risk aggregator weights and thresholds
type ScoringConfig struct {
	SenderTLDWeight           float64
	MissingAuthWeight         float64
	PatternWeight             float64
	MaliciousURLWeight        float64
	MaliciousAttachmentWeight float64
	SuspiciousThreshold       float64
	MaliciousThreshold        float64
	MaxScore                  float64
	MaliciousTLDs             []string
	SuspiciousPatterns        []string
	TrustedDomains            []string
}

// ReputationConfig represents the URL reputation checker configuration
type ReputationConfig struct {
	VirusTotalAPIKey string
	PhishTankAPIKey  string
	AbuseIPDBAPIKey  string
	SuspiciousTLDs   []string
	MaxURLLength     int
	CacheType        string
	CacheTTL         time.Duration
	RedisAddress     string
}

// AttachmentConfig represents the attachment scorer configuration
type AttachmentConfig struct {
	MaxSizeBytes       int64
	DangerousExts      []string
	LargeFileWeight    float64
	DangerousExtWeight float64
	DoubleExtWeight    float64
	VendorHitWeight    float64
	MaliciousThreshold float64
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	shutdown, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		shutdown = 10 * time.Second
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		CORSEnabled:     c.GetBool("server.cors_enabled"),
		ShutdownTimeout: shutdown,
	}
}

// GetSMTP returns the SMTP gateway configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:         c.GetBool("smtp.enabled"),
		ListenAddress:   c.GetString("smtp.listen_address"),
		Domain:          c.GetString("smtp.domain"),
		RejectMalicious: c.GetBool("smtp.reject_malicious"),
		UpstreamAddress: c.GetString("smtp.upstream_address"),
		MaxMessageBytes: c.GetInt64("smtp.max_message_bytes"),
	}
}

// GetScoring returns the risk aggregator configuration
func (c *Config) GetScoring() ScoringConfig {
	return ScoringConfig{
		SenderTLDWeight:           c.GetFloat64("scoring.sender_tld_weight"),
		MissingAuthWeight:         c.GetFloat64("scoring.missing_auth_weight"),
		PatternWeight:             c.GetFloat64("scoring.pattern_weight"),
		MaliciousURLWeight:        c.GetFloat64("scoring.malicious_url_weight"),
		MaliciousAttachmentWeight: c.GetFloat64("scoring.malicious_attachment_weight"),
		SuspiciousThreshold:       c.GetFloat64("scoring.suspicious_threshold"),
		MaliciousThreshold:        c.GetFloat64("scoring.malicious_threshold"),
		MaxScore:                  c.GetFloat64("scoring.max_score"),
		MaliciousTLDs:             c.GetStringSlice("scoring.malicious_tlds"),
		SuspiciousPatterns:        c.GetStringSlice("scoring.suspicious_patterns"),
		TrustedDomains:            c.GetStringSlice("scoring.trusted_domains"),
	}
}

// GetReputation returns the URL reputation checker configuration
func (c *Config) GetReputation() ReputationConfig {
	ttl, err := c.GetDuration("reputation.cache.ttl")
	if err != nil {
		ttl = 15 * time.Minute
	}
	return ReputationConfig{
		VirusTotalAPIKey: c.GetString("reputation.virustotal_api_key"),
		PhishTankAPIKey:  c.GetString("reputation.phishtank_api_key"),
		AbuseIPDBAPIKey:  c.GetString("reputation.abuseipdb_api_key"),
		SuspiciousTLDs:   c.GetStringSlice("reputation.suspicious_tlds"),
		MaxURLLength:     c.GetInt("reputation.max_url_length"),
		CacheType:        c.GetString("reputation.cache.type"),
		CacheTTL:         ttl,
		RedisAddress:     c.GetString("reputation.cache.redis_address"),
	}
}

// GetAttachment returns the attachment scorer configuration
func (c *Config) GetAttachment() AttachmentConfig {
	return AttachmentConfig{
		MaxSizeBytes:       c.GetInt64("attachment.max_size_bytes"),
		DangerousExts:      c.GetStringSlice("attachment.dangerous_extensions"),
		LargeFileWeight:    c.GetFloat64("attachment.large_file_weight"),
		DangerousExtWeight: c.GetFloat64("attachment.dangerous_ext_weight"),
		DoubleExtWeight:    c.GetFloat64("attachment.double_ext_weight"),
		VendorHitWeight:    c.GetFloat64("attachment.vendor_hit_weight"),
		MaliciousThreshold: c.GetFloat64("attachment.malicious_threshold"),
	}
}
