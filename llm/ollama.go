package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"go.uber.org/zap"
)

// OllamaGenerator calls a local Ollama server at OLLAMA_HOST
type OllamaGenerator struct {
	client *api.Client
	model  string
}

// NewOllamaGenerator creates an Ollama client for model
func NewOllamaGenerator(model string) *OllamaGenerator {
	host := envconfig.Host()
	zap.L().Info("Ollama client initialized", zap.String("host", host.String()), zap.String("model", model))
	return &OllamaGenerator{
		client: api.NewClient(host, http.DefaultClient),
		model:  model,
	}
}

// Generate joins the prompt and documents into one prompt and streams the answer
func (o *OllamaGenerator) Generate(ctx context.Context, prompt string, documents ...string) (string, error) {
	req := api.GenerateRequest{
		Model:  o.model,
		Prompt: strings.Join(append([]string{prompt}, documents...), "\n\n"),
		Options: map[string]interface{}{
			"temperature": 0.2,
		},
	}

	var b strings.Builder
	err := o.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := b.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	zap.L().Info("response received from Ollama", zap.String("model", o.model), zap.Int("chars", len(text)))
	return text, nil
}
