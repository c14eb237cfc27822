package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const defaultAzureAPIVersion = "2024-02-01"

// AzureClient embeds text with an Azure OpenAI deployment. The model name
// in the collection configuration is the deployment name.
type AzureClient struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	dimensions int
	client     *http.Client
}

// NewAzureClient creates an Azure OpenAI embeddings client. Endpoint, API
// key, and dimensions are all required; deployment output sizes cannot be
// discovered from the deployment name.
func NewAzureClient(endpoint, apiKey, deployment, apiVersion string, dimensions int) (*AzureClient, error) {
	if endpoint == "" {
		return nil, &ConfigError{Provider: ProviderAzureOpenAI, Reason: "endpoint is not configured"}
	}
	if apiKey == "" {
		return nil, &ConfigError{Provider: ProviderAzureOpenAI, Reason: "api key is not configured"}
	}
	if dimensions <= 0 {
		return nil, &ConfigError{Provider: ProviderAzureOpenAI, Reason: "dimensions must be positive"}
	}
	if apiVersion == "" {
		apiVersion = defaultAzureAPIVersion
	}
	return &AzureClient{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		APIKey:     apiKey,
		Deployment: deployment,
		APIVersion: apiVersion,
		dimensions: dimensions,
		client:     http.DefaultClient,
	}, nil
}

// EmbedTexts generates embeddings for the given texts.
func (c *AzureClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s", c.Endpoint, c.Deployment, c.APIVersion)
	return postEmbeddings(ctx, c.client, url,
		map[string]string{"api-key": c.APIKey},
		c.Deployment, texts, c.dimensions)
}

// EmbedQuery generates an embedding for a single text.
func (c *AzureClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, c, text)
}

// Dimensions returns the deployment's configured output vector size.
func (c *AzureClient) Dimensions() int {
	return c.dimensions
}
