package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"go.uber.org/zap"
)

// VertexGenerator calls Gemini through Vertex AI with application default credentials
type VertexGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewVertexGenerator creates a Vertex AI client for model in projectID/region
func NewVertexGenerator(ctx context.Context, projectID, region, model string) (*VertexGenerator, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexGenerator: projectID and region cannot be empty")
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	m := client.GenerativeModel(model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.2),
	}

	zap.L().Info("Vertex AI client initialized",
		zap.String("project", projectID),
		zap.String("region", region),
		zap.String("model", model),
	)
	return &VertexGenerator{client: client, model: m, name: model}, nil
}

// Generate sends the prompt followed by each document as separate parts
func (g *VertexGenerator) Generate(ctx context.Context, prompt string, documents ...string) (string, error) {
	parts := make([]genai.Part, 0, len(documents)+1)
	parts = append(parts, genai.Text(prompt))
	for _, doc := range documents {
		parts = append(parts, genai.Text(doc))
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("vertex generate: %w", err)
	}

	text := vertexText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	zap.L().Info("response received from Vertex AI", zap.String("model", g.name), zap.Int("chars", len(text)))
	return text, nil
}

// Close releases the client
func (g *VertexGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func vertexText(resp *genai.GenerateContentResponse) string {
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
