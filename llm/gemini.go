package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiGenerator calls the Gemini API with an API key
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini client for model
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		zap.L().Warn("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	zap.L().Info("Gemini client initialized", zap.String("model", model))
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends the prompt followed by each document as separate parts
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, documents ...string) (string, error) {
	parts := make([]genai.Part, 0, len(documents)+1)
	parts = append(parts, genai.Text(prompt))
	for _, doc := range documents {
		parts = append(parts, genai.Text(doc))
	}

	resp, err := g.client.GenerativeModel(g.model).GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := geminiText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	zap.L().Info("response received from Gemini", zap.String("model", g.model), zap.Int("chars", len(text)))
	return text, nil
}

// Close releases the client
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// geminiText concatenates the text parts of the first candidate
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
