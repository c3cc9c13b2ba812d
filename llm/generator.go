// Package llm sends the contestation prompt and documents to a language model.
package llm

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

// ContestationPrompt asks the model for the JSON case data followed by the contestation
//
//go:embed prompts/contestacao.txt
var ContestationPrompt string

// ErrEmptyResponse is returned when the model answers without text
var ErrEmptyResponse = errors.New("empty response from model")

// Generator produces text from a prompt and a list of framed documents
type Generator interface {
	Generate(ctx context.Context, prompt string, documents ...string) (string, error)
}

// Provider names a model backend
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderVertex Provider = "vertex"
	ProviderOllama Provider = "ollama"
)

// Config selects and configures a backend
type Config struct {
	Provider Provider
	Model    string

	// gemini
	APIKey string

	// vertex
	ProjectID string
	Region    string

	// ollama uses OLLAMA_HOST through envconfig
}

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// NewGenerator creates the generator for cfg.Provider
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, orDefault(cfg.Model, DefaultGeminiModel))
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderVertex:
		g, err := NewVertexGenerator(ctx, cfg.ProjectID, cfg.Region, orDefault(cfg.Model, DefaultGeminiModel))
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOllama:
		if cfg.Model == "" {
			return nil, errors.New("OLLAMA_MODEL is required for the ollama provider")
		}
		return NewOllamaGenerator(cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

// PetitionDocument frames the petition text for the prompt
func PetitionDocument(text string) string {
	return "### PETIÇÃO INICIAL:\n" + text
}

// TemplateDocument frames the contestation template text for the prompt
func TemplateDocument(text string) string {
	return "### MODELO DE CONTESTAÇÃO:\n" + text
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
