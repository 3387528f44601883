package factory

import (
	"time"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/adapters/httpserver"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/adapters/smtpgateway"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/config"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/ports"
)

// TransportFactory creates the request ingresses based on configuration
type TransportFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	service    *core.AnalysisService
	store      core.ResultStore
	classifier core.TextClassifier
}

// NewTransportFactory creates a new transport factory
func NewTransportFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.AnalysisService,
	store core.ResultStore,
	classifier core.TextClassifier,
) *TransportFactory {
	return &TransportFactory{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		store:      store,
		classifier: classifier,
	}
}

// CreateTransports builds the HTTP server and, when enabled, the SMTP gateway.
func (f *TransportFactory) CreateTransports() []ports.Transport {
	handler := httpserver.NewRouter(f.service, f.store, f.classifier, f.logger)
	serverCfg := f.cfg.GetServer()
	transports := []ports.Transport{
		httpserver.NewServer(serverCfg.ListenAddress, handler, f.logger),
	}

	smtpCfg := f.cfg.GetSMTP()
	if smtpCfg.Enabled {
		timeout, err := f.cfg.GetDuration("analysis.check_timeout")
		if err != nil {
			timeout = 5 * time.Second
		}
		// Allow time for all checks on a message plus persistence.
		analyzeTimeout := 2 * timeout
		transports = append(transports, smtpgateway.NewGateway(
			f.service,
			f.logger,
			smtpCfg.ListenAddress,
			smtpCfg.RejectMalicious,
			smtpCfg.UpstreamAddress,
			smtpCfg.UpstreamAddress != "",
			analyzeTimeout,
		))
	}
	return transports
}
