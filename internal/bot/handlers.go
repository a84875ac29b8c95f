package bot

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Santanika/assistant-bot/internal/analytics"
	"github.com/Santanika/assistant-bot/internal/conversation"
	"github.com/Santanika/assistant-bot/internal/task"
	"github.com/Santanika/assistant-bot/internal/telegram"
)

const chatFailureText = "❌ Ошибка при обработке сообщения. Попробуйте позже."

var priorityLabels = map[string]string{
	task.PriorityHigh:   "высокий",
	task.PriorityMedium: "средний",
	task.PriorityLow:    "низкий",
}

func priorityLabel(priority string) string {
	if label, ok := priorityLabels[priority]; ok {
		return label
	}
	return priority
}

func (b *Bot) handleTaskCreation(chatID int64, text string) {
	b.send(chatID, "🧠 Анализирую задачу...")
	b.record(analytics.InteractionTaskCreated, text)

	created, err := b.tasks.Create(text)
	if err != nil {
		b.fail(chatID, "Ошибка при создании задачи", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("✅ Задача создана!\n\n")
	fmt.Fprintf(&sb, "📋 %s\n\n", created.Title)
	fmt.Fprintf(&sb, "⏱️ Время: %s\n", created.EstimatedTime)
	fmt.Fprintf(&sb, "🎯 Приоритет: %s\n\n", priorityLabel(created.Priority))

	var keyboard [][]telegram.InlineButton
	if created.SuggestedDelegate != "" {
		name := task.Delegates[created.SuggestedDelegate].Name
		fmt.Fprintf(&sb, "👥 Рекомендую делегировать: %s\n\n", name)
		keyboard = append(keyboard, []telegram.InlineButton{{
			Text:         fmt.Sprintf("👥 Делегировать %s", name),
			CallbackData: fmt.Sprintf("delegate_%d_%s", created.ID, created.SuggestedDelegate),
		}})
	}
	if len(created.Steps) > 0 {
		sb.WriteString("📝 План действий:\n")
		for i, step := range created.Steps {
			if i == 3 {
				fmt.Fprintf(&sb, "... и еще %d шагов\n", len(created.Steps)-3)
				break
			}
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
	}
	keyboard = append(keyboard,
		[]telegram.InlineButton{{Text: "📋 Подробный план", CallbackData: fmt.Sprintf("task_details_%d", created.ID)}},
		[]telegram.InlineButton{{Text: "✅ Выполнено", CallbackData: fmt.Sprintf("complete_task_%d", created.ID)}},
	)
	b.sendWithKeyboard(chatID, sb.String(), keyboard)
}

func (b *Bot) handleChat(chatID int64, text string) {
	b.record(analytics.InteractionTextMessage, text)

	// Fold current predictions into the request, as extra context for
	// the model.
	message := text
	if predictions, err := b.analytics.Predictions(); err == nil && len(predictions) > 0 {
		parts := make([]string, 0, 2)
		for i, p := range predictions {
			if i == 2 {
				break
			}
			parts = append(parts, p.Message)
		}
		message = fmt.Sprintf("%s. Контекст: %s", text, strings.Join(parts, "; "))
	}

	reply, err := b.conv.Reply(chatID, message)
	if err != nil {
		var upstream *conversation.UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("[bot] completion failed chat_id=%d: %v", chatID, err)
		} else {
			log.Printf("[bot] chat error chat_id=%d: %v", chatID, err)
		}
		b.send(chatID, chatFailureText)
		return
	}
	b.send(chatID, reply)
}

// handleCallback reacts to inline-button presses, which arrive as text
// updates carrying the callback data. Returns false when the text is
// not a known callback.
func (b *Bot) handleCallback(chatID int64, data string) bool {
	switch {
	case strings.HasPrefix(data, "delegate_"):
		parts := strings.SplitN(data, "_", 3)
		if len(parts) != 3 {
			return false
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return false
		}
		b.delegateCallback(chatID, id, parts[2])
		return true
	case strings.HasPrefix(data, "task_details_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "task_details_"), 10, 64)
		if err != nil {
			return false
		}
		summary, err := b.tasks.Summary(id)
		if err != nil {
			b.send(chatID, "❌ Задача не найдена")
			return true
		}
		b.send(chatID, summary)
		return true
	case strings.HasPrefix(data, "complete_task_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "complete_task_"), 10, 64)
		if err != nil {
			return false
		}
		if err := b.tasks.Complete(id); err != nil {
			b.send(chatID, "❌ Задача не найдена")
			return true
		}
		b.send(chatID, "✅ Задача выполнена!")
		return true
	case data == "weekly_report":
		b.send(chatID, b.weeklyReportText())
		return true
	case data == "show_analytics":
		b.send(chatID, b.analyticsText())
		return true
	case data == "new_task":
		b.send(chatID, "✍️ Напишите задачу текстом, и я составлю план")
		return true
	case data == "sync_tasks":
		b.send(chatID, syncUnavailableText)
		return true
	case data == "create_task_from_image":
		b.send(chatID, "✍️ Опишите задачу с изображения текстом")
		return true
	case data == "add_expense_from_image":
		b.send(chatID, "💰 Добавьте расход командой /expense <сумма> <описание>")
		return true
	}
	return false
}

func (b *Bot) delegateCallback(chatID, taskID int64, key string) {
	delegation, err := b.tasks.Delegate(taskID, key)
	if err != nil {
		switch {
		case errors.Is(err, task.ErrTaskNotFound):
			b.send(chatID, "❌ Задача не найдена")
		case errors.Is(err, task.ErrUnknownDelegate):
			b.send(chatID, "❌ Неизвестный делегат")
		default:
			b.fail(chatID, "Ошибка делегирования", err)
		}
		return
	}
	b.send(chatID, fmt.Sprintf(
		"✅ Задача делегирована %s!\n\n📋 Инструкции:\n%s",
		delegation.DelegateName, delegation.Instructions,
	))
}

func (b *Bot) handleVoice(chatID int64, note *telegram.Voice) {
	b.send(chatID, "🎤 Обрабатываю голосовое сообщение...")
	b.record(analytics.InteractionVoiceMessage, note.FileID)

	path, err := b.downloadMedia(note.FileID, ".ogg")
	if err != nil {
		b.fail(chatID, "Ошибка при обработке голосового сообщения", err)
		return
	}
	defer os.Remove(path)

	text, err := b.voice.Transcribe(path)
	if err != nil || text == "" {
		if err != nil {
			log.Printf("[bot] transcription failed chat_id=%d: %v", chatID, err)
		}
		b.send(chatID, "❌ Не удалось распознать речь")
		return
	}
	b.send(chatID, "📝 Распознано: "+text)
	b.handleText(chatID, text)
}

func (b *Bot) handlePhoto(chatID int64, sizes []telegram.PhotoSize) {
	b.send(chatID, "📸 Анализирую изображение...")
	b.record(analytics.InteractionPhotoMessage, "")

	// The last size is the largest.
	largest := sizes[len(sizes)-1]
	path, err := b.downloadMedia(largest.FileID, ".jpg")
	if err != nil {
		b.fail(chatID, "Ошибка при анализе изображения", err)
		return
	}
	defer os.Remove(path)

	b.sendWithKeyboard(chatID,
		"🔍 Анализ изображения:\n\nИзображение получено. Выберите действие:",
		[][]telegram.InlineButton{
			{{Text: "📋 Создать задачу", CallbackData: "create_task_from_image"}},
			{{Text: "💰 Добавить расход", CallbackData: "add_expense_from_image"}},
		})
}

func (b *Bot) downloadMedia(fileID, ext string) (string, error) {
	filePath, err := b.messenger.GetFile(fileID)
	if err != nil {
		return "", err
	}
	data, err := b.messenger.DownloadFile(filePath)
	if err != nil {
		return "", err
	}
	return b.voice.SaveFile(data, ext)
}
