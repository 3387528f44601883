package classifier

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/textutil"
)

// GeminiClassifier is an implementation of the TextClassifier interface using Google Gemini
type GeminiClassifier struct {
	client      *genai.Client
	model       *genai.GenerativeModel
	modelName   string
	maxBodySize int
	text        *textutil.TextProcessor
	logger      *zap.Logger
}

// NewGeminiClassifier creates a new Gemini-backed classifier
func NewGeminiClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	text *textutil.TextProcessor,
	logger *zap.Logger,
) (*GeminiClassifier, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClassifier{
		client:      client,
		model:       model,
		modelName:   modelName,
		maxBodySize: maxBodySize,
		text:        text,
		logger:      logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClassifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify asks the model whether the text looks like spam or phishing.
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (*core.TextClassification, error) {
	prompt := fmt.Sprintf(promptFormat, c.text.ProcessText(text, c.maxBodySize))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	parsed, err := parseResponse(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if err != nil {
		return nil, err
	}
	return &core.TextClassification{
		IsSpam:      parsed.IsSpam,
		Score:       parsed.Score,
		Confidence:  parsed.Confidence,
		Explanation: parsed.Explanation,
		Model:       c.modelName,
	}, nil
}
