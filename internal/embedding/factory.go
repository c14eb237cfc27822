package embedding

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_factory.go -package=mocks docbase/internal/embedding Factory

import "fmt"

// Credentials holds the process-wide provider credentials. Which providers
// are usable depends on which keys are set; a collection bound to an
// unconfigured provider fails at embedder construction, not at startup.
type Credentials struct {
	GoogleAPIKey  string
	GoogleBaseURL string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	AzureAPIKey     string
	AzureEndpoint   string
	AzureAPIVersion string
}

// Factory builds embedders from a collection's model configuration.
type Factory interface {
	// New constructs an embedder for the given configuration.
	New(cfg ModelConfig) (Embedder, error)
	// Providers lists the supported providers and their known models.
	Providers() []ProviderInfo
}

// ClientFactory is the Factory backed by the real provider HTTP clients.
type ClientFactory struct {
	creds Credentials
}

// NewFactory creates a factory over the given credentials.
func NewFactory(creds Credentials) *ClientFactory {
	return &ClientFactory{creds: creds}
}

// New constructs an embedder for the given configuration. The collection's
// endpoint override, when set, replaces the provider's base URL.
func (f *ClientFactory) New(cfg ModelConfig) (Embedder, error) {
	dimensions, err := OutputDimensions(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderGoogle:
		baseURL := f.creds.GoogleBaseURL
		if cfg.Endpoint != "" {
			baseURL = cfg.Endpoint
		}
		return NewGoogleClient(baseURL, f.creds.GoogleAPIKey, cfg.Model, dimensions)
	case ProviderOpenAI:
		baseURL := f.creds.OpenAIBaseURL
		if cfg.Endpoint != "" {
			baseURL = cfg.Endpoint
		}
		return NewOpenAIClient(baseURL, f.creds.OpenAIAPIKey, cfg.Model, dimensions)
	case ProviderAzureOpenAI:
		endpoint := f.creds.AzureEndpoint
		if cfg.Endpoint != "" {
			endpoint = cfg.Endpoint
		}
		return NewAzureClient(endpoint, f.creds.AzureAPIKey, cfg.Model, f.creds.AzureAPIVersion, dimensions)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// Providers lists the supported providers and their known models.
func (f *ClientFactory) Providers() []ProviderInfo {
	return Catalog()
}
