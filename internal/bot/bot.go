package bot

import (
	"log"
	"strings"
	"time"

	"github.com/Santanika/assistant-bot/internal/analytics"
	"github.com/Santanika/assistant-bot/internal/conversation"
	"github.com/Santanika/assistant-bot/internal/finance"
	"github.com/Santanika/assistant-bot/internal/task"
	"github.com/Santanika/assistant-bot/internal/telegram"
	"github.com/Santanika/assistant-bot/internal/voice"
)

// Messenger is the message transport the bot runs on. telegram.Client
// implements it; tests and offline runs use scripted fakes.
type Messenger interface {
	GetUpdates(offset int64, timeout int) ([]telegram.Update, error)
	SendMessage(chatID int64, text string) error
	SendMessageWithKeyboard(chatID int64, text string, keyboard [][]telegram.InlineButton) error
	SendMessageWithReplyKeyboard(chatID int64, text string, rows [][]string) error
	GetFile(fileID string) (string, error)
	DownloadFile(filePath string) ([]byte, error)
}

const unauthorizedText = "🔒 Этот бот приватный. Доступ запрещен."

// taskKeywords route a plain message into the task-creation flow.
var taskKeywords = []string{"сделать", "задача", "нужно", "план", "делегировать"}

// Bot is the single-user personal assistant.
type Bot struct {
	messenger Messenger
	conv      *conversation.Store
	tasks     *task.Service
	finances  *finance.Service
	analytics *analytics.Service
	voice     *voice.Service

	authorizedUserID int64
	pollTimeout      int
	sleep            time.Duration
	now              func() time.Time
}

// Options carries the bot's collaborators and settings.
type Options struct {
	Messenger        Messenger
	Conversations    *conversation.Store
	Tasks            *task.Service
	Finances         *finance.Service
	Analytics        *analytics.Service
	Voice            *voice.Service
	AuthorizedUserID int64
	PollTimeout      int
	SleepSeconds     int
}

// New creates a bot.
func New(opts Options) *Bot {
	sleep := time.Duration(opts.SleepSeconds) * time.Second
	if sleep <= 0 {
		sleep = time.Second
	}
	return &Bot{
		messenger:        opts.Messenger,
		conv:             opts.Conversations,
		tasks:            opts.Tasks,
		finances:         opts.Finances,
		analytics:        opts.Analytics,
		voice:            opts.Voice,
		authorizedUserID: opts.AuthorizedUserID,
		pollTimeout:      opts.PollTimeout,
		sleep:            sleep,
		now:              time.Now,
	}
}

// Run polls for updates and dispatches them until stop is closed.
func (b *Bot) Run(stop <-chan struct{}) {
	var offset int64
	for {
		select {
		case <-stop:
			return
		default:
		}

		updates, err := b.messenger.GetUpdates(offset, b.pollTimeout)
		if err != nil {
			log.Printf("[bot] getUpdates error: %v", err)
			time.Sleep(b.sleep)
			continue
		}
		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.HandleUpdate(update)
		}
		if len(updates) == 0 {
			time.Sleep(b.sleep)
		}
	}
}

// HandleUpdate routes one incoming update.
func (b *Bot) HandleUpdate(update telegram.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	userID := chatID
	if msg.From != nil {
		userID = msg.From.ID
	}
	if userID != b.authorizedUserID {
		b.send(chatID, unauthorizedText)
		return
	}

	switch {
	case msg.Voice != nil:
		b.handleVoice(chatID, msg.Voice)
	case len(msg.Photo) > 0:
		b.handlePhoto(chatID, msg.Photo)
	case msg.Text != nil:
		b.handleText(chatID, strings.TrimSpace(*msg.Text))
	}
}

// handleText routes a text message: callbacks first, then commands and
// keyboard buttons, then the task-creation heuristic, then plain chat.
func (b *Bot) handleText(chatID int64, text string) {
	if text == "" {
		return
	}
	if b.handleCallback(chatID, text) {
		return
	}
	if strings.HasPrefix(text, "/") {
		b.handleCommand(chatID, text)
		return
	}
	if command, ok := keyboardButtons[text]; ok {
		b.handleCommand(chatID, command)
		return
	}

	lower := strings.ToLower(text)
	for _, keyword := range taskKeywords {
		if strings.Contains(lower, keyword) {
			b.handleTaskCreation(chatID, text)
			return
		}
	}
	b.handleChat(chatID, text)
}

func (b *Bot) send(chatID int64, text string) {
	if err := b.messenger.SendMessage(chatID, text); err != nil {
		log.Printf("[bot] sendMessage error chat_id=%d: %v", chatID, err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard [][]telegram.InlineButton) {
	if err := b.messenger.SendMessageWithKeyboard(chatID, text, keyboard); err != nil {
		log.Printf("[bot] sendMessage error chat_id=%d: %v", chatID, err)
	}
}

func (b *Bot) record(kind, detail string) {
	if err := b.analytics.RecordInteraction(kind, detail); err != nil {
		log.Printf("[bot] record interaction error: %v", err)
	}
}
