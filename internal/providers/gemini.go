// Package providers holds the clients for third-party APIs the trip
// endpoints proxy: AI itinerary generation, place image search and
// weather lookup. Each client performs exactly one outbound call per
// request and reshapes the upstream JSON; no retries, no caching.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/roamio/tripplanner/internal/apperr"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewGemini(apiKey string) *GeminiClient {
	return &GeminiClient{
		client:  http.DefaultClient,
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
	}
}

// NewGeminiWithBase is used by tests to point the client at a stub
// server.
func NewGeminiWithBase(apiKey, baseURL string, client *http.Client) *GeminiClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiClient{client: client, apiKey: apiKey, baseURL: baseURL}
}

type GenerateRequest struct {
	Destination string
	NoOfDays    int
	Budget      string
	Travelers   string
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateItinerary asks the model for a trip plan and returns the
// parsed JSON document. The prompt demands strict JSON; fenced code
// blocks the model adds anyway are stripped before parsing.
func (c *GeminiClient) GenerateItinerary(ctx context.Context, req GenerateRequest) (json.RawMessage, error) {
	prompt := fmt.Sprintf(`Generate a travel itinerary for:
Location: %s
Duration: %d Days
Budget: %s
Travelers: %s

Please provide the output strictly in JSON format. Do not add any extra text, markdown, or code blocks.
The JSON object should have this structure:
{
  "tripName": "Trip to %s",
  "hotels": ["Hotel 1", "Hotel 2", "Hotel 3"],
  "itinerary": [
    {
      "day": 1,
      "plan": [
        { "time": "Morning", "place": "Place Name", "details": "Activity details", "ticketPrice": "approx cost" },
        { "time": "Afternoon", "place": "...", "details": "...", "ticketPrice": "..." },
        { "time": "Evening", "place": "...", "details": "...", "ticketPrice": "..." }
      ]
    }
  ]
}`, req.Destination, req.NoOfDays, req.Budget, req.Travelers, req.Destination)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/models/gemini-2.0-flash:generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperr.Upstream("AI generation failed", nil, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("AI generation failed", upstreamPayload(raw), fmt.Errorf("gemini returned %d", resp.StatusCode))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apperr.Upstream("AI generation failed", nil, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, apperr.Upstream("AI did not return any text", nil, nil)
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	if !json.Valid([]byte(text)) {
		return nil, apperr.Upstream("AI returned malformed itinerary", nil, nil)
	}

	return json.RawMessage(text), nil
}

// upstreamPayload decodes an upstream error body so it can be attached
// to the 500 response; unparseable bodies are passed through as text.
func upstreamPayload(raw []byte) interface{} {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return string(raw)
	}
	return payload
}
