// Package gemini wraps the Google Gemini generateContent REST API as a
// single-call text generation adapter.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// InlineImage carries raw image bytes attached to a generation request.
// The bytes are base64-encoded before transmission.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Usage mirrors the provider's token accounting for one call.
type Usage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Result carries the generated text and provider metadata.
type Result struct {
	Text  string
	Model string
	Usage Usage
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient constructs a Client. Empty baseURL and non-positive timeout fall
// back to the production endpoint and a 60s cap; the model is required.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
	}
}

// Wire types for the generateContent request body.
type generatePart struct {
	Text       string              `json:"text,omitempty"`
	InlineData *generateInlineData `json:"inline_data,omitempty"`
}

type generateInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContentBlock struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContentBlock `json:"contents"`
}

// Wire types for the generateContent response body.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata Usage  `json:"usageMetadata"`
	ModelVersion  string `json:"modelVersion"`
}

// Generate requests one text completion for the composed prompt, optionally
// with a single inline image. The returned text is passed through verbatim.
func (c *Client) Generate(ctx context.Context, prompt string, image *InlineImage) (Result, error) {
	if c == nil || c.httpClient == nil {
		return Result{}, fmt.Errorf("gemini: client not initialized")
	}
	if c.apiKey == "" {
		return Result{}, fmt.Errorf("gemini: missing api key")
	}
	if c.model == "" {
		return Result{}, fmt.Errorf("gemini: missing model")
	}
	if strings.TrimSpace(prompt) == "" {
		return Result{}, fmt.Errorf("gemini: empty prompt")
	}

	parts := []generatePart{{Text: prompt}}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, generatePart{
			InlineData: &generateInlineData{
				MIMEType: image.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(image.Data),
			},
		})
	}

	payload, errMarshal := json.Marshal(generateRequest{
		Contents: []generateContentBlock{{Parts: parts}},
	})
	if errMarshal != nil {
		return Result{}, fmt.Errorf("gemini: marshal request: %w", errMarshal)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, errRequest := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if errRequest != nil {
		return Result{}, fmt.Errorf("gemini: build request: %w", errRequest)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return Result{}, fmt.Errorf("gemini: call api: %w", errDo)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Result{}, fmt.Errorf("gemini: api returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded generateResponse
	if errDecode := json.NewDecoder(resp.Body).Decode(&decoded); errDecode != nil {
		return Result{}, fmt.Errorf("gemini: decode response: %w", errDecode)
	}

	var sb strings.Builder
	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		// Only the first candidate is requested or used.
		break
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("gemini: empty response")
	}

	model := strings.TrimSpace(decoded.ModelVersion)
	if model == "" {
		model = c.model
	}
	return Result{Text: text, Model: model, Usage: decoded.UsageMetadata}, nil
}
