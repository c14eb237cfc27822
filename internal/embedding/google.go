package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGoogleBaseURL = "https://generativelanguage.googleapis.com"

// GoogleClient embeds text with the Google Generative Language API.
type GoogleClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	dimensions int
	client     *http.Client
}

// NewGoogleClient creates a Google embeddings client. The API key and the
// model's output dimensionality must be known up front.
func NewGoogleClient(baseURL, apiKey, model string, dimensions int) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, &ConfigError{Provider: ProviderGoogle, Reason: "api key is not configured"}
	}
	if dimensions <= 0 {
		return nil, &ConfigError{Provider: ProviderGoogle, Reason: "dimensions must be positive"}
	}
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	return &GoogleClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		dimensions: dimensions,
		client:     http.DefaultClient,
	}, nil
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleEmbedRequest struct {
	Model   string        `json:"model"`
	Content googleContent `json:"content"`
}

type googleBatchRequest struct {
	Requests []googleEmbedRequest `json:"requests"`
}

type googleEmbedding struct {
	Values []float64 `json:"values"`
}

type googleBatchResponse struct {
	Embeddings []googleEmbedding `json:"embeddings"`
}

// EmbedTexts generates embeddings for the given texts via batchEmbedContents.
func (c *GoogleClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	url := fmt.Sprintf("%s/v1beta/%s:batchEmbedContents?key=%s", c.BaseURL, c.Model, c.APIKey)

	payload := googleBatchRequest{Requests: make([]googleEmbedRequest, len(texts))}
	for i, text := range texts {
		payload.Requests[i] = googleEmbedRequest{
			Model:   c.Model,
			Content: googleContent{Parts: []googlePart{{Text: text}}},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var batchResp googleBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := make([][]float32, len(batchResp.Embeddings))
	for i, emb := range batchResp.Embeddings {
		result[i] = toFloat32(emb.Values)
	}
	if err := validateVectors(result, len(texts), c.dimensions); err != nil {
		return nil, err
	}
	return result, nil
}

// EmbedQuery generates an embedding for a single text.
func (c *GoogleClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, c, text)
}

// Dimensions returns the model's output vector size.
func (c *GoogleClient) Dimensions() int {
	return c.dimensions
}
