package config

import (
	"strings"
	"testing"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("ASSISTANT_AUTHORIZED_USER_ID", "398613499")
}

func TestLoad_RequiresTelegramToken(t *testing.T) {
	setupEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected missing token error")
	}
	if !strings.Contains(err.Error(), "TELEGRAM_BOT_TOKEN") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_RequiresOpenAIKey(t *testing.T) {
	setupEnv(t)
	t.Setenv("OPENAI_API_KEY", "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected missing key error")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_RequiresAuthorizedUserID(t *testing.T) {
	setupEnv(t)
	t.Setenv("ASSISTANT_AUTHORIZED_USER_ID", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected missing authorized user id error")
	}

	t.Setenv("ASSISTANT_AUTHORIZED_USER_ID", "-5")
	if _, err := Load(); err == nil {
		t.Fatal("expected negative authorized user id error")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setupEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.AuthorizedUserID != 398613499 {
		t.Errorf("unexpected authorized user id: %d", cfg.AuthorizedUserID)
	}
	if cfg.OpenAIModel != "gpt-4" {
		t.Errorf("unexpected default model: %s", cfg.OpenAIModel)
	}
	if cfg.OpenAIMaxTokens != 2000 {
		t.Errorf("unexpected default max tokens: %d", cfg.OpenAIMaxTokens)
	}
	if cfg.OpenAITemperature != 0.7 {
		t.Errorf("unexpected default temperature: %v", cfg.OpenAITemperature)
	}
	if cfg.HistoryWindow != 20 {
		t.Errorf("unexpected default history window: %d", cfg.HistoryWindow)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Errorf("unexpected default system prompt: %s", cfg.SystemPrompt)
	}
	if !strings.HasSuffix(cfg.TelegramAPIBase, "bottest-token") {
		t.Errorf("unexpected telegram api base: %s", cfg.TelegramAPIBase)
	}
	if !strings.Contains(cfg.TelegramFileAPIBase, "/file/bot") {
		t.Errorf("unexpected telegram file base: %s", cfg.TelegramFileAPIBase)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setupEnv(t)
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("ASSISTANT_HISTORY_WINDOW", "8")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("unexpected model: %s", cfg.OpenAIModel)
	}
	if cfg.OpenAITemperature != 0.2 {
		t.Errorf("unexpected temperature: %v", cfg.OpenAITemperature)
	}
	if cfg.HistoryWindow != 8 {
		t.Errorf("unexpected history window: %d", cfg.HistoryWindow)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	setupEnv(t)
	t.Setenv("OPENAI_MAX_TOKENS", "not-a-number")
	t.Setenv("OPENAI_TEMPERATURE", "warm")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.OpenAIMaxTokens != 2000 {
		t.Errorf("expected fallback max tokens, got %d", cfg.OpenAIMaxTokens)
	}
	if cfg.OpenAITemperature != 0.7 {
		t.Errorf("expected fallback temperature, got %v", cfg.OpenAITemperature)
	}
}
