package embedding

import "fmt"

// googleModels maps Google model names to their output dimensionality.
var googleModels = map[string]int{
	"models/text-embedding-004": 768,
	"models/embedding-001":      768,
}

// openAIModels maps OpenAI model names to their output dimensionality.
var openAIModels = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// ProviderInfo describes one provider and its known models, as served by
// the providers listing endpoint.
type ProviderInfo struct {
	Name   string      `json:"name"`
	Models []ModelInfo `json:"models"`
}

// ModelInfo is one catalog entry.
type ModelInfo struct {
	Name       string `json:"name"`
	Dimensions int    `json:"dimensions,omitempty"`
}

// OutputDimensions resolves the vector size for a provider/model pair.
// An explicit configured value wins; otherwise the catalog is consulted.
// Azure deployments carry arbitrary names, so they always need a
// configured value.
func OutputDimensions(cfg ModelConfig) (int, error) {
	if cfg.Dimensions > 0 {
		return cfg.Dimensions, nil
	}

	switch cfg.Provider {
	case ProviderGoogle:
		if dim, ok := googleModels[cfg.Model]; ok {
			return dim, nil
		}
	case ProviderOpenAI:
		if dim, ok := openAIModels[cfg.Model]; ok {
			return dim, nil
		}
	case ProviderAzureOpenAI:
		return 0, &ConfigError{Provider: cfg.Provider, Reason: "dimensions must be configured for azure deployments"}
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	return 0, fmt.Errorf("%w: %s/%s", ErrUnknownModel, cfg.Provider, cfg.Model)
}

// Catalog lists every supported provider with its known models.
func Catalog() []ProviderInfo {
	return []ProviderInfo{
		{
			Name: ProviderGoogle,
			Models: []ModelInfo{
				{Name: "models/text-embedding-004", Dimensions: 768},
				{Name: "models/embedding-001", Dimensions: 768},
			},
		},
		{
			Name: ProviderOpenAI,
			Models: []ModelInfo{
				{Name: "text-embedding-3-small", Dimensions: 1536},
				{Name: "text-embedding-3-large", Dimensions: 3072},
				{Name: "text-embedding-ada-002", Dimensions: 1536},
			},
		},
		{
			// Deployment names are account-specific, so no model list.
			Name: ProviderAzureOpenAI,
		},
	}
}
