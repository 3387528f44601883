package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/adapters/classifier"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/config"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/textutil"
)

// ClassifierFactory creates LLM text classifiers
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *textutil.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *textutil.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateTextClassifier creates a classifier based on the configuration. The
// "none" provider returns nil, which disables the spam check endpoint.
func (f *ClassifierFactory) CreateTextClassifier() (core.TextClassifier, error) {
	provider := f.cfg.GetString("classifier.provider")
	maxBodySize := f.cfg.GetInt("classifier.max_body_size")

	switch provider {
	case "none", "":
		return nil, nil
	case "openai":
		return classifier.NewOpenAIClassifier(
			f.cfg.GetString("classifier.openai.api_key"),
			f.cfg.GetString("classifier.openai.model_name"),
			f.cfg.GetInt("classifier.openai.max_tokens"),
			float32(f.cfg.GetFloat64("classifier.openai.temperature")),
			float32(f.cfg.GetFloat64("classifier.openai.top_p")),
			maxBodySize,
			f.textProcessor,
			f.logger,
		), nil
	case "gemini":
		return classifier.NewGeminiClassifier(
			f.cfg.GetString("classifier.gemini.api_key"),
			f.cfg.GetString("classifier.gemini.model_name"),
			f.cfg.GetInt("classifier.gemini.max_tokens"),
			float32(f.cfg.GetFloat64("classifier.gemini.temperature")),
			float32(f.cfg.GetFloat64("classifier.gemini.top_p")),
			maxBodySize,
			f.textProcessor,
			f.logger,
		)
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", provider)
	}
}
