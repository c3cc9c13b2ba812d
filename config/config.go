// Package config loads settings from .env files and the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application settings
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	MaxUploadBytes        int64
	MinContestationLength int

	LLMProvider    string
	GeminiAPIKey   string
	GeminiModel    string
	GCPProjectID   string
	VertexAIRegion string
	OllamaModel    string

	Lawyer         Lawyer
	DefaultComarca string
	Letterhead     string

	ResultCookie string
	DebugRoutes  bool
}

// Lawyer is the signing lawyer shown on generated documents
type Lawyer struct {
	Name   string
	State  string
	Number string
}

// Load reads .env from the working directory, falling back to the project
// root, then builds the configuration from the environment.
// It reports whether a .env file was found.
func Load() (*Config, bool) {
	found := true
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			found = false
		}
	}

	return &Config{
		Port:      GetEnv("PORT", "8080"),
		GinMode:   GetEnv("GIN_MODE", "release"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "json"),

		MaxUploadBytes:        GetEnvInt64("MAX_UPLOAD_BYTES", 16*1024*1024),
		MinContestationLength: int(GetEnvInt64("MIN_CONTESTATION_LENGTH", 50)),

		LLMProvider:    GetEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:   GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:    GetEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GCPProjectID:   GetEnv("GOOGLE_CLOUD_PROJECT_ID", ""),
		VertexAIRegion: GetEnv("VERTEX_AI_REGION", "us-central1"),
		OllamaModel:    GetEnv("OLLAMA_MODEL", ""),

		Lawyer: Lawyer{
			Name:   GetEnv("LAWYER_NAME", "GUILHERME KASCHNY BASTIAN"),
			State:  GetEnv("LAWYER_STATE", "SP"),
			Number: GetEnv("LAWYER_NUMBER", "266.795"),
		},
		DefaultComarca: GetEnv("DEFAULT_COMARCA", "São Paulo"),
		Letterhead:     GetEnv("LETTERHEAD", "MINHA HONRA JUS"),

		ResultCookie: GetEnv("RESULT_COOKIE", "result_id"),
		DebugRoutes:  GetEnvBool("DEBUG_ROUTES", false),
	}, found
}

// GetEnv returns the value of key, or fallback when it is unset or empty
func GetEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// GetEnvInt64 parses key as an integer, returning fallback when unset or invalid
func GetEnvInt64(key string, fallback int64) int64 {
	value, err := strconv.ParseInt(GetEnv(key, ""), 10, 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// GetEnvBool parses key as a boolean, returning fallback when unset or invalid
func GetEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}
