package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Santanika/assistant-bot/internal/analytics"
	"github.com/Santanika/assistant-bot/internal/bot"
	"github.com/Santanika/assistant-bot/internal/config"
	"github.com/Santanika/assistant-bot/internal/conversation"
	"github.com/Santanika/assistant-bot/internal/db"
	"github.com/Santanika/assistant-bot/internal/dummy"
	"github.com/Santanika/assistant-bot/internal/finance"
	"github.com/Santanika/assistant-bot/internal/openai"
	"github.com/Santanika/assistant-bot/internal/task"
	"github.com/Santanika/assistant-bot/internal/telegram"
	"github.com/Santanika/assistant-bot/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[assistant] %v", err)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("[assistant] %v", err)
	}
	defer database.Close()

	if err := db.InitSchema(database); err != nil {
		log.Fatalf("[assistant] failed to init schema: %v", err)
	}

	messenger, err := newMessenger(&cfg)
	if err != nil {
		log.Fatalf("[assistant] failed to init messenger: %v", err)
	}
	completer, err := newCompleter(&cfg)
	if err != nil {
		log.Fatalf("[assistant] failed to init completer: %v", err)
	}

	b := bot.New(bot.Options{
		Messenger:        messenger,
		Conversations:    conversation.NewStore(completer, cfg.SystemPrompt, cfg.HistoryWindow),
		Tasks:            task.NewService(database),
		Finances:         finance.NewService(database),
		Analytics:        analytics.NewService(database),
		Voice:            voice.NewService(cfg.MediaDir),
		AuthorizedUserID: cfg.AuthorizedUserID,
		PollTimeout:      cfg.PollTimeout,
		SleepSeconds:     cfg.SleepSeconds,
	})

	log.Printf(
		"assistant running user_id=%d model=%s provider=%s messenger=%s",
		cfg.AuthorizedUserID,
		cfg.OpenAIModel,
		cfg.ModelProvider,
		cfg.Messenger,
	)

	stop := make(chan struct{})
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		sig := <-signals
		log.Printf("[assistant] received %s, shutting down", sig)
		close(stop)
	}()

	b.Run(stop)
}

func newMessenger(cfg *config.Config) (bot.Messenger, error) {
	switch cfg.Messenger {
	case "telegram":
		timeout := time.Duration(cfg.PollTimeout+20) * time.Second
		return telegram.NewClient(cfg.TelegramAPIBase, cfg.TelegramFileAPIBase, timeout), nil
	case "dummy":
		return dummy.NewMessenger(cfg.DummyMessengerScript, cfg.DummySendScript, cfg.AuthorizedUserID)
	default:
		return nil, fmt.Errorf("unsupported messenger: %s", cfg.Messenger)
	}
}

func newCompleter(cfg *config.Config) (conversation.Completer, error) {
	switch cfg.ModelProvider {
	case "openai":
		return openai.NewClient(
			cfg.OpenAIAPIKey,
			cfg.OpenAIChatCompURL,
			cfg.OpenAIModel,
			cfg.OpenAIMaxTokens,
			cfg.OpenAITemperature,
			120*time.Second,
		), nil
	case "dummy":
		return dummy.NewCompleter(cfg.DummyProviderScript)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.ModelProvider)
	}
}
