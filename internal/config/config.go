package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultSystemPrompt is the assistant persona sent as the first turn
// of every conversation.
const DefaultSystemPrompt = "Ты полезный ассистент. Отвечай на русском языке, если пользователь пишет на русском. Будь дружелюбным и помогай пользователю."

// Config holds configuration for the assistant process.
type Config struct {
	TelegramAPIBase     string
	TelegramFileAPIBase string
	AuthorizedUserID    int64
	PollTimeout         int
	SleepSeconds        int

	Messenger     string
	ModelProvider string

	OpenAIAPIKey      string
	OpenAIChatCompURL string
	OpenAIModel       string
	OpenAIMaxTokens   int
	OpenAITemperature float64

	SystemPrompt  string
	HistoryWindow int

	DBPath   string
	MediaDir string

	DummyProviderScript  string
	DummyMessengerScript string
	DummySendScript      string
}

// Load reads configuration from environment variables. Missing
// required values fail loading.
func Load() (Config, error) {
	messenger := envOrDefault("ASSISTANT_MESSENGER", "telegram")
	modelProvider := envOrDefault("ASSISTANT_MODEL_PROVIDER", "openai")

	telegramToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if messenger == "telegram" && telegramToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required in environment when ASSISTANT_MESSENGER=telegram")
	}
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if modelProvider == "openai" && openaiKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required in environment when ASSISTANT_MODEL_PROVIDER=openai")
	}

	authorizedID, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("ASSISTANT_AUTHORIZED_USER_ID")), 10, 64)
	if err != nil || authorizedID <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_AUTHORIZED_USER_ID must be a positive integer")
	}

	return Config{
		TelegramAPIBase:      fmt.Sprintf("https://api.telegram.org/bot%s", telegramToken),
		TelegramFileAPIBase:  fmt.Sprintf("https://api.telegram.org/file/bot%s", telegramToken),
		AuthorizedUserID:     authorizedID,
		PollTimeout:          envIntOrDefault("TG_TIMEOUT", 30),
		SleepSeconds:         envIntOrDefault("TG_SLEEP_SECONDS", 1),
		Messenger:            messenger,
		ModelProvider:        modelProvider,
		OpenAIAPIKey:         openaiKey,
		OpenAIChatCompURL:    envOrDefault("OPENAI_CHAT_COMPLETIONS_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:          envOrDefault("OPENAI_MODEL", "gpt-4"),
		OpenAIMaxTokens:      envIntOrDefault("OPENAI_MAX_TOKENS", 2000),
		OpenAITemperature:    envFloatOrDefault("OPENAI_TEMPERATURE", 0.7),
		SystemPrompt:         envOrDefault("ASSISTANT_SYSTEM_PROMPT", DefaultSystemPrompt),
		HistoryWindow:        envIntOrDefault("ASSISTANT_HISTORY_WINDOW", 20),
		DBPath:               envOrDefault("ASSISTANT_DB_PATH", "/state/assistant.db"),
		MediaDir:             envOrDefault("ASSISTANT_MEDIA_DIR", os.TempDir()),
		DummyProviderScript:  envOrDefault("ASSISTANT_DUMMY_PROVIDER_SCRIPT", "ok"),
		DummyMessengerScript: envOrDefault("ASSISTANT_DUMMY_MESSENGER_SCRIPT", "ok"),
		DummySendScript:      envOrDefault("ASSISTANT_DUMMY_MESSENGER_SEND_SCRIPT", "ok"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOrDefault(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
