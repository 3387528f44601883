// Package di wires the application together.
package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/config"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/extract"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/factory"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/logging"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/ports"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/textutil"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/trust"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(textutil.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCheckerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTransportFactory); err != nil {
		return nil, err
	}

	// Register artifact extractor
	if err := container.Provide(func(logger *zap.Logger) core.ArtifactExtractor {
		return extract.NewExtractor(logger)
	}); err != nil {
		return nil, err
	}

	// Register result store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ResultStore, error) {
		return f.CreateResultStore()
	}); err != nil {
		return nil, err
	}

	// Register reputation checkers and attachment scorer
	if err := container.Provide(func(f *factory.CheckerFactory) (core.URLChecker, error) {
		return f.CreateURLChecker()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CheckerFactory) core.AuthChecker {
		return f.CreateAuthChecker()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CheckerFactory) core.AttachmentAnalyzer {
		return f.CreateAttachmentAnalyzer()
	}); err != nil {
		return nil, err
	}

	// Register aggregator
	if err := container.Provide(func(f *factory.CheckerFactory, logger *zap.Logger) *core.Aggregator {
		return core.NewAggregator(f.CreateScoringPolicy(), logger)
	}); err != nil {
		return nil, err
	}

	// Register trusted domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *trust.DomainList {
		domains := cfg.GetStringSlice("scoring.trusted_domains")
		if len(domains) > 0 {
			logger.Info("Loaded trusted domains", zap.Strings("domains", domains))
		}
		return trust.NewDomainList(domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(func(
		cfg *config.Config,
		extractor core.ArtifactExtractor,
		urlChecker core.URLChecker,
		authChecker core.AuthChecker,
		attachments core.AttachmentAnalyzer,
		store core.ResultStore,
		aggregator *core.Aggregator,
		trusted *trust.DomainList,
		logger *zap.Logger,
	) (*core.AnalysisService, error) {
		freshness, err := cfg.GetDuration("analysis.freshness_window")
		if err != nil {
			return nil, err
		}
		checkTimeout, err := cfg.GetDuration("analysis.check_timeout")
		if err != nil {
			return nil, err
		}
		return core.NewAnalysisService(
			extractor, urlChecker, authChecker, attachments,
			store, aggregator, trusted, logger,
			freshness, checkTimeout,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register text classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.TextClassifier, error) {
		return f.CreateTextClassifier()
	}); err != nil {
		return nil, err
	}

	// Register transports
	if err := container.Provide(func(f *factory.TransportFactory) []ports.Transport {
		return f.CreateTransports()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
