// Package classifier provides LLM-backed text classifiers used for the
// advisory spam check.
package classifier

import (
	"encoding/json"
	"fmt"
)

// classificationResponse represents the structured response from the LLM
type classificationResponse struct {
	IsSpam      bool    `json:"is_spam"`
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// parseResponse decodes the LLM output, tolerating prose around the JSON
// object by extracting the outermost brace pair.
func parseResponse(responseText string) (*classificationResponse, error) {
	var parsed classificationResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	jsonEnd := -1
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("failed to extract JSON from LLM response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &parsed, nil
}

const promptFormat = `You are a spam and phishing detection system. Analyze the following email text and determine if it's spam or a phishing attempt.
Respond with a JSON object containing:
- is_spam: boolean (true if spam or phishing, false if not)
- score: number between 0 and 1 (higher means more likely to be spam or phishing)
- confidence: number between 0 and 1 (how confident you are in your assessment)
- explanation: string (brief explanation of why you think it's spam or not)

Email text:
%s

Respond only with the JSON object and nothing else.`
