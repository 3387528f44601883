package reputation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const virusTotalBaseURL = "https://www.virustotal.com/api/v3"

// AnalysisStats mirrors the last_analysis_stats block of a VirusTotal v3
// report.
type AnalysisStats struct {
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Harmless   int `json:"harmless"`
	Undetected int `json:"undetected"`
}

type vtReport struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats AnalysisStats `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// VirusTotalClient queries the VirusTotal v3 REST API for URL and file-hash
// reports.
type VirusTotalClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewVirusTotalClient creates a VirusTotal client.
func NewVirusTotalClient(apiKey string, logger *zap.Logger) *VirusTotalClient {
	return &VirusTotalClient{
		apiKey:     apiKey,
		baseURL:    virusTotalBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *VirusTotalClient) SetBaseURL(u string) {
	c.baseURL = u
}

// CheckURL fetches the report for a URL. The URL identifier is the unpadded
// url-safe base64 of the URL, per the v3 API. An unknown URL (404) returns
// zero stats and no error.
func (c *VirusTotalClient) CheckURL(ctx context.Context, rawURL string) (AnalysisStats, json.RawMessage, error) {
	id := base64.RawURLEncoding.EncodeToString([]byte(rawURL))
	return c.fetch(ctx, fmt.Sprintf("%s/urls/%s", c.baseURL, id))
}

// CheckFileHash fetches the report for a file by SHA-256 hash. An unknown
// hash (404) returns zero stats and no error.
func (c *VirusTotalClient) CheckFileHash(ctx context.Context, hash string) (AnalysisStats, json.RawMessage, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/files/%s", c.baseURL, hash))
}

func (c *VirusTotalClient) fetch(ctx context.Context, endpoint string) (AnalysisStats, json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return AnalysisStats{}, nil, err
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AnalysisStats{}, nil, fmt.Errorf("virustotal request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return AnalysisStats{}, nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return AnalysisStats{}, nil, fmt.Errorf("virustotal returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AnalysisStats{}, nil, fmt.Errorf("failed to read virustotal response: %w", err)
	}

	var report vtReport
	if err := json.Unmarshal(body, &report); err != nil {
		return AnalysisStats{}, nil, fmt.Errorf("failed to parse virustotal response: %w", err)
	}

	return report.Data.Attributes.LastAnalysisStats, body, nil
}
