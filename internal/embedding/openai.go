package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAIClient embeds text with the OpenAI embeddings API.
type OpenAIClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	dimensions int
	client     *http.Client
}

// NewOpenAIClient creates an OpenAI embeddings client.
func NewOpenAIClient(baseURL, apiKey, model string, dimensions int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, &ConfigError{Provider: ProviderOpenAI, Reason: "api key is not configured"}
	}
	if dimensions <= 0 {
		return nil, &ConfigError{Provider: ProviderOpenAI, Reason: "dimensions must be positive"}
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		dimensions: dimensions,
		client:     http.DefaultClient,
	}, nil
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type openAIEmbedResponse struct {
	Data []openAIEmbeddingData `json:"data"`
}

// EmbedTexts generates embeddings for the given texts.
func (c *OpenAIClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return postEmbeddings(ctx, c.client, fmt.Sprintf("%s/v1/embeddings", c.BaseURL),
		map[string]string{"Authorization": fmt.Sprintf("Bearer %s", c.APIKey)},
		c.Model, texts, c.dimensions)
}

// EmbedQuery generates an embedding for a single text.
func (c *OpenAIClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, c, text)
}

// Dimensions returns the model's output vector size.
func (c *OpenAIClient) Dimensions() int {
	return c.dimensions
}

// postEmbeddings performs one OpenAI-shaped embeddings call. Azure shares
// the request and response bodies and differs only in URL and auth header.
func postEmbeddings(ctx context.Context, client *http.Client, url string, headers map[string]string, model string, texts []string, dimensions int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	body, err := json.Marshal(openAIEmbedRequest{Model: model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
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

	var embedResp openAIEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := make([][]float32, len(embedResp.Data))
	for i, data := range embedResp.Data {
		result[i] = toFloat32(data.Embedding)
	}
	if err := validateVectors(result, len(texts), dimensions); err != nil {
		return nil, err
	}
	return result, nil
}
