package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const phishTankCheckURL = "https://checkurl.phishtank.com/checkurl/"

// PhishTankResult is the subset of a PhishTank lookup the checker acts on: a
// URL is flagged only when it is both in the database and verified.
type PhishTankResult struct {
	InDatabase bool `json:"in_database"`
	Verified   bool `json:"verified"`
}

// PhishTankClient queries the PhishTank URL database.
type PhishTankClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPhishTankClient creates a PhishTank client.
func NewPhishTankClient(apiKey string, logger *zap.Logger) *PhishTankClient {
	return &PhishTankClient{
		apiKey:     apiKey,
		endpoint:   phishTankCheckURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// SetEndpoint overrides the API endpoint. Used by tests.
func (c *PhishTankClient) SetEndpoint(u string) {
	c.endpoint = u
}

// CheckURL looks up a URL in the PhishTank database.
func (c *PhishTankClient) CheckURL(ctx context.Context, rawURL string) (PhishTankResult, json.RawMessage, error) {
	form := url.Values{"url": {rawURL}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return PhishTankResult{}, nil, err
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PhishTankResult{}, nil, fmt.Errorf("phishtank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PhishTankResult{}, nil, fmt.Errorf("phishtank returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PhishTankResult{}, nil, fmt.Errorf("failed to read phishtank response: %w", err)
	}

	var envelope struct {
		Results PhishTankResult `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return PhishTankResult{}, nil, fmt.Errorf("failed to parse phishtank response: %w", err)
	}

	return envelope.Results, body, nil
}
