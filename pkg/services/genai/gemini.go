package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nutri-tools/nutri/pkg/services/schema"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Generator is the structured-generation collaborator. It returns the raw
// JSON document produced under the request's response schema.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// GeminiClient calls the Gemini generateContent endpoint with constrained
// JSON output.
type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

type GeminiOption func(*GeminiClient)

func WithBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = url }
}

func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) { c.httpClient = client }
}

func NewGeminiClient(apiKey, model string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini model is empty")
	}
	c := &GeminiClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type wirePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *wireInlineData `json:"inlineData,omitempty"`
}

type wireInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type wireRequest struct {
	Contents         []wireContent        `json:"contents"`
	GenerationConfig wireGenerationConfig `json:"generationConfig"`
}

type wireContent struct {
	Parts []wirePart `json:"parts"`
}

type wireGenerationConfig struct {
	ResponseMIMEType string             `json:"responseMimeType"`
	ResponseSchema   *schema.Definition `json:"responseSchema"`
}

type wireResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) ([]byte, error) {
	parts := make([]wirePart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.Inline != nil {
			parts = append(parts, wirePart{InlineData: &wireInlineData{
				MIMEType: p.Inline.MIME,
				Data:     base64.StdEncoding.EncodeToString(p.Inline.Data),
			}})
			continue
		}
		parts = append(parts, wirePart{Text: p.Text})
	}

	body, err := json.Marshal(wireRequest{
		Contents: []wireContent{{Parts: parts}},
		GenerationConfig: wireGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.ResponseSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var wire wireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if wire.Error != nil {
		return nil, fmt.Errorf("api error: %s", wire.Error.Message)
	}
	if len(wire.Candidates) == 0 || len(wire.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	text := wire.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}
	return []byte(text), nil
}
