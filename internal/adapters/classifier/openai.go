package classifier

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/textutil"
)

// OpenAIClassifier is an implementation of the TextClassifier interface using OpenAI
type OpenAIClassifier struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	maxBodySize int
	text        *textutil.TextProcessor
	logger      *zap.Logger
}

// NewOpenAIClassifier creates a new OpenAI-backed classifier
func NewOpenAIClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	text *textutil.TextProcessor,
	logger *zap.Logger,
) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:      openai.NewClient(apiKey),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		maxBodySize: maxBodySize,
		text:        text,
		logger:      logger,
	}
}

// Classify asks the model whether the text looks like spam or phishing.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*core.TextClassification, error) {
	prompt := fmt.Sprintf(promptFormat, c.text.ProcessText(text, c.maxBodySize))

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a spam and phishing detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: "json"}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	parsed, err := parseResponse(resp.Choices[0].Message.Content)
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
