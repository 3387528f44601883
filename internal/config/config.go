package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishing-analyzer/")
	v.AddConfigPath("$HOME/.phishing-analyzer")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("PHISHING_ANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// HTTP server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.cors_enabled", true)
	v.SetDefault("server.shutdown_timeout", "10s")

	// SMTP gateway defaults
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("smtp.domain", "localhost")
	v.SetDefault("smtp.reject_malicious", false)
	v.SetDefault("smtp.upstream_address", "")
	v.SetDefault("smtp.max_message_bytes", 31457280)

	// Scoring defaults
	v.SetDefault("scoring.sender_tld_weight", 30)
	v.SetDefault("scoring.missing_auth_weight", 15)
	v.SetDefault("scoring.pattern_weight", 10)
	v.SetDefault("scoring.malicious_url_weight", 30)
	v.SetDefault("scoring.malicious_attachment_weight", 40)
	v.SetDefault("scoring.suspicious_threshold", 30)
	v.SetDefault("scoring.malicious_threshold", 60)
	v.SetDefault("scoring.max_score", 100)
	v.SetDefault("scoring.malicious_tlds", []string{})
	v.SetDefault("scoring.suspicious_patterns", []string{})
	v.SetDefault("scoring.trusted_domains", []string{})

	// Analysis defaults
	v.SetDefault("analysis.freshness_window", "1h")
	v.SetDefault("analysis.check_timeout", "5s")

	// Reputation provider defaults
	v.SetDefault("reputation.virustotal_api_key", "")
	v.SetDefault("reputation.phishtank_api_key", "")
	v.SetDefault("reputation.abuseipdb_api_key", "")
	v.SetDefault("reputation.suspicious_tlds", []string{
		".tk", ".top", ".xyz", ".zip", ".review", ".country", ".kim", ".cricket",
	})
	v.SetDefault("reputation.max_url_length", 100)
	v.SetDefault("reputation.cache.type", "memory")
	v.SetDefault("reputation.cache.ttl", "15m")
	v.SetDefault("reputation.cache.redis_address", "localhost:6379")

	// Authentication check defaults
	v.SetDefault("auth.dkim_selectors", []string{"default", "google", "dkim", "k1"})

	// Attachment defaults
	v.SetDefault("attachment.max_size_bytes", 10485760)
	v.SetDefault("attachment.dangerous_extensions", []string{
		".exe", ".bat", ".cmd", ".scr", ".js", ".vbs", ".ps1", ".msi", ".jar",
	})
	v.SetDefault("attachment.large_file_weight", 10)
	v.SetDefault("attachment.dangerous_ext_weight", 50)
	v.SetDefault("attachment.double_ext_weight", 30)
	v.SetDefault("attachment.vendor_hit_weight", 5)
	v.SetDefault("attachment.malicious_threshold", 50)

	// Result store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.sqlite_path", "/data/phishing_analysis.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/phishing_analyzer?parseTime=true")
	v.SetDefault("store.retention", "720h")
	v.SetDefault("store.cleanup_frequency", "1h")

	// Classifier defaults
	v.SetDefault("classifier.provider", "none")
	v.SetDefault("classifier.max_body_size", 4096)
	v.SetDefault("classifier.openai.api_key", "")
	v.SetDefault("classifier.openai.model_name", "gpt-4")
	v.SetDefault("classifier.openai.max_tokens", 1000)
	v.SetDefault("classifier.openai.temperature", 0.1)
	v.SetDefault("classifier.openai.top_p", 0.9)
	v.SetDefault("classifier.gemini.api_key", "")
	v.SetDefault("classifier.gemini.model_name", "gemini-pro")
	v.SetDefault("classifier.gemini.max_tokens", 1000)
	v.SetDefault("classifier.gemini.temperature", 0.1)
	v.SetDefault("classifier.gemini.top_p", 0.9)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets a 64-bit integer value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
