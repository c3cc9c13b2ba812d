package config

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("CONTESTACAO_SET", "valor")
	t.Setenv("CONTESTACAO_EMPTY", "  ")

	if got := GetEnv("CONTESTACAO_SET", "padrão"); got != "valor" {
		t.Errorf("set: got %q", got)
	}
	if got := GetEnv("CONTESTACAO_EMPTY", "padrão"); got != "padrão" {
		t.Errorf("empty: got %q", got)
	}
	if got := GetEnv("CONTESTACAO_UNSET_KEY", "padrão"); got != "padrão" {
		t.Errorf("unset: got %q", got)
	}
}

func TestGetEnvTyped(t *testing.T) {
	t.Setenv("CONTESTACAO_INT", "1024")
	t.Setenv("CONTESTACAO_BAD_INT", "muito")
	t.Setenv("CONTESTACAO_BOOL", "true")

	if got := GetEnvInt64("CONTESTACAO_INT", 1); got != 1024 {
		t.Errorf("int: got %d", got)
	}
	if got := GetEnvInt64("CONTESTACAO_BAD_INT", 7); got != 7 {
		t.Errorf("bad int: got %d", got)
	}
	if !GetEnvBool("CONTESTACAO_BOOL", false) {
		t.Error("bool: expected true")
	}
	if GetEnvBool("CONTESTACAO_UNSET_BOOL", false) {
		t.Error("unset bool: expected fallback false")
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LLM_PROVIDER", "GEMINI_MODEL", "MAX_UPLOAD_BYTES", "MIN_CONTESTATION_LENGTH", "LAWYER_NAME", "DEBUG_ROUTES"} {
		t.Setenv(key, "")
	}

	cfg, _ := Load()
	if cfg.Port != "8080" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" || cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("llm: got %q / %q", cfg.LLMProvider, cfg.GeminiModel)
	}
	if cfg.MaxUploadBytes != 16*1024*1024 {
		t.Errorf("max upload: got %d", cfg.MaxUploadBytes)
	}
	if cfg.MinContestationLength != 50 {
		t.Errorf("min length: got %d", cfg.MinContestationLength)
	}
	if cfg.Lawyer.Name == "" || cfg.Lawyer.State == "" || cfg.Lawyer.Number == "" {
		t.Errorf("lawyer defaults missing: %+v", cfg.Lawyer)
	}
	if cfg.DebugRoutes {
		t.Error("debug routes should be off by default")
	}
}
