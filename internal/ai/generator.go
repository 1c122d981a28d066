package ai

import (
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator turns prompts into website files through an OpenAI-compatible
// chat completion endpoint.
type Generator struct {
	client *openai.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewGenerator builds a Generator. An empty apiKey is accepted; every
// GenerateSite call then fails with a ConfigurationError.
func NewGenerator(apiKey, baseURL, model string, logger *zap.Logger) *Generator {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientConfig),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// Configured reports whether a credential is present.
func (g *Generator) Configured() bool {
	return g.apiKey != ""
}

// Model returns the model name requests are sent to.
func (g *Generator) Model() string {
	return g.model
}
