// Package gemini implements the extraction and smart-match capabilities using
// Google's Gemini API over plain HTTP.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"tradeflow/internal/config"
	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Client implements port.DocumentExtractor and port.FieldMatcher.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a Gemini-backed AI client.
func NewClient(cfg *config.AIConfig) *Client {
	return newClient(cfg, "")
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint
// (for testing).
func NewClientWithEndpoint(cfg *config.AIConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.AIConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Extract sends the source document to Gemini and decodes the structured
// result. Every failure wraps domain.ErrExtractionFailed.
func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractedData, error) {
	encoded := base64.StdEncoding.EncodeToString(input.FileBytes)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]interface{}{
							"mime_type": input.ContentType,
							"data":      encoded,
						},
					},
					{
						"text": extractionPrompt,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  16384,
		},
	}

	text, err := c.generate(ctx, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	var data domain.ExtractedData
	if err := json.Unmarshal([]byte(cleanJSON(text)), &data); err != nil {
		return nil, fmt.Errorf("%w: decoding model output: %v", domain.ErrExtractionFailed, err)
	}
	if data.LineItems == nil {
		data.LineItems = []domain.LineItem{}
	}
	return &data, nil
}

// Suggest asks Gemini to map form field names to known data keys. Suggest is
// total: any failure is logged and returned as an unavailable Suggestion.
func (c *Client) Suggest(ctx context.Context, fieldNames, knownKeys []string) port.Suggestion {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": suggestionPrompt(fieldNames, knownKeys)},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  8192,
		},
	}

	text, err := c.generate(ctx, reqBody)
	if err != nil {
		log.Printf("gemini.Suggest: smart match failed: %v", err)
		return port.Suggestion{}
	}

	var mappings []domain.FieldMapping
	if err := json.Unmarshal([]byte(cleanJSON(text)), &mappings); err != nil {
		log.Printf("gemini.Suggest: decoding model output: %v", err)
		return port.Suggestion{}
	}
	return port.Suggestion{Mappings: mappings}
}

// generate posts a generateContent request and returns the first candidate's
// text.
func (c *Client) generate(ctx context.Context, reqBody map[string]interface{}) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return "", fmt.Errorf("access denied (403): invalid API key")
	case http.StatusTooManyRequests:
		return "", fmt.Errorf("rate limited (429): too many requests")
	case http.StatusBadRequest:
		return "", fmt.Errorf("bad request (400): unsupported file or invalid request")
	default:
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var text string
	for _, part := range parsed.Candidates[0].Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("empty model output")
	}
	return text, nil
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

var codeFenceRE = regexp.MustCompile("```json\n?|\n?```")

// cleanJSON strips Markdown code fences some models wrap around JSON output.
func cleanJSON(text string) string {
	return codeFenceRE.ReplaceAllString(text, "")
}
