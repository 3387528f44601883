package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/config"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/extract"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/factory"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/logging"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/trust"
)

var (
	// Input flags
	inputFile = flag.String("file", "", "Input email file (use stdin if not specified)")
	sender    = flag.String("sender", "", "Sender address (overrides the From header)")
	subject   = flag.String("subject", "", "Subject (overrides the Subject header)")

	// Reputation provider flags
	virusTotalKey = flag.String("virustotal-api-key", "", "API key for VirusTotal")
	phishTankKey  = flag.String("phishtank-api-key", "", "API key for PhishTank")

	// Scoring flags
	trustedDomains = flag.String("trusted", "", "Comma-separated list of trusted sender domains")

	// Output flags
	jsonOutput = flag.Bool("json", false, "Print the full result as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	content, err := readInput(logger)
	if err != nil {
		logger.Fatal("Failed to read email", zap.Error(err))
	}

	service := buildService(cfg, logger)

	startTime := time.Now()
	result, err := service.AnalyzeEmail(context.Background(), &core.AnalyzeRequest{
		Content: content,
		Sender:  *sender,
		Subject: *subject,
	})
	if err != nil {
		logger.Fatal("Failed to analyze email", zap.Error(err))
	}
	duration := time.Since(startTime)

	if *jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatal("Failed to encode result", zap.Error(err))
		}
		fmt.Println(string(encoded))
	} else {
		printResult(result, duration)
	}

	switch result.Verdict {
	case core.VerdictMalicious:
		os.Exit(2)
	case core.VerdictSuspicious:
		os.Exit(1)
	}
}

// createConfigFromFlags builds a configuration from command line flags,
// with persistence disabled.
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()
	v.Set("store.type", "none")
	v.Set("reputation.cache.type", "memory")
	if *virusTotalKey != "" {
		v.Set("reputation.virustotal_api_key", *virusTotalKey)
	}
	if *phishTankKey != "" {
		v.Set("reputation.phishtank_api_key", *phishTankKey)
	}
	if *trustedDomains != "" {
		domains := strings.Split(*trustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("scoring.trusted_domains", domains)
	}
	return config.NewFromViper(v)
}

// buildService wires the analysis pipeline without a result store.
func buildService(cfg *config.Config, logger *zap.Logger) *core.AnalysisService {
	checkerFactory := factory.NewCheckerFactory(cfg, logger)

	urlChecker, err := checkerFactory.CreateURLChecker()
	if err != nil {
		logger.Fatal("Failed to create URL checker", zap.Error(err))
	}

	freshness, err := cfg.GetDuration("analysis.freshness_window")
	if err != nil {
		freshness = time.Hour
	}
	checkTimeout, err := cfg.GetDuration("analysis.check_timeout")
	if err != nil {
		checkTimeout = 5 * time.Second
	}

	return core.NewAnalysisService(
		extract.NewExtractor(logger),
		urlChecker,
		checkerFactory.CreateAuthChecker(),
		checkerFactory.CreateAttachmentAnalyzer(),
		nil,
		core.NewAggregator(checkerFactory.CreateScoringPolicy(), logger),
		trust.NewDomainList(cfg.GetStringSlice("scoring.trusted_domains"), logger),
		logger,
		freshness,
		checkTimeout,
	)
}

func readInput(logger *zap.Logger) (string, error) {
	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read email: %w", err)
	}
	return string(content), nil
}

func printResult(result *core.AnalysisResult, duration time.Duration) {
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("Sender: %s\n", result.Artifacts.Sender)
	fmt.Printf("Subject: %s\n", result.Artifacts.Subject)
	fmt.Printf("URLs found: %d\n", len(result.Artifacts.URLs))
	fmt.Printf("IPs found: %d\n", len(result.Artifacts.IPs))
	fmt.Printf("Attachments found: %d\n", len(result.Artifacts.Attachments))

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Verdict: %s\n", result.Verdict)
	fmt.Printf("Risk score: %.0f\n", result.RiskScore)
	fmt.Printf("Reason: %s\n", result.Reason)
	if result.Auth != nil {
		fmt.Printf("SPF: %s\n", result.Auth.SPF.Status)
		fmt.Printf("DKIM: %s\n", result.Auth.DKIM.Status)
		fmt.Printf("DMARC: %s\n", result.Auth.DMARC.Status)
	}
	for _, rec := range result.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
	fmt.Printf("Processing time: %v\n", duration)
}
