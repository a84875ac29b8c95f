package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Santanika/assistant-bot/internal/analytics"
	"github.com/Santanika/assistant-bot/internal/task"
	"github.com/Santanika/assistant-bot/internal/telegram"
)

const welcomeText = `🤖 Супер Персональный Ассистент готов к работе!

🧠 AI Функции:
• Предиктивная аналитика
• Умные напоминания
• Анализ продуктивности
• Еженедельные отчеты

📋 Задачи:
• Умное планирование
• Делегирование (Аня, Дима, Олег)
• Пошаговые планы

📸 Анализ изображений:
• Чеки и квитанции
• Заметки и документы

Просто напишите что нужно сделать - я проанализирую и предложу оптимальный план!`

const helpText = `🆘 Помощь по командам:

Основные команды:
• /start - Запуск бота
• /tasks - Список задач
• /analytics - Аналитика и предсказания
• /delegate - Делегированные задачи
• /report - Еженедельный отчет
• /expense <сумма> <описание> - Добавить расход
• /finance - Статистика расходов
• /stats - Статистика диалога
• /reset - Очистить историю диалога

Как использовать:
1. Напишите задачу - получите план и советы
2. Отправьте фото - автоматический анализ
3. Голосовое сообщение - распознавание речи

Делегирование:
• Аня - личные задачи
• Дима - маркетинг (контент, креативы)
• Олег - маркетинг (стратегия, процессы)`

const syncUnavailableText = "🔄 Синхронизация с внешним трекером не настроена"

// keyboardButtons maps reply-keyboard labels to commands.
var keyboardButtons = map[string]string{
	"📋 Мои задачи":     "/tasks",
	"📊 Аналитика":      "/analytics",
	"🔄 Синхронизация": "/sync",
	"📈 Отчет":          "/report",
}

func (b *Bot) handleCommand(chatID int64, text string) {
	command := text
	var args string
	if i := strings.IndexByte(text, ' '); i > 0 {
		command, args = text[:i], strings.TrimSpace(text[i+1:])
	}

	switch command {
	case "/start":
		b.record(analytics.InteractionStartCommand, "")
		rows := [][]string{
			{"📋 Мои задачи", "📊 Аналитика"},
			{"🔄 Синхронизация", "📈 Отчет"},
		}
		if err := b.messenger.SendMessageWithReplyKeyboard(chatID, welcomeText, rows); err != nil {
			b.send(chatID, welcomeText)
		}
	case "/help":
		b.send(chatID, helpText)
	case "/tasks":
		b.tasksCommand(chatID)
	case "/analytics":
		b.analyticsCommand(chatID)
	case "/delegate":
		b.delegateCommand(chatID)
	case "/report":
		b.send(chatID, b.weeklyReportText())
	case "/sync":
		b.send(chatID, syncUnavailableText)
	case "/expense":
		b.expenseCommand(chatID, args)
	case "/finance":
		b.financeCommand(chatID)
	case "/stats":
		stats := b.conv.Stats(chatID)
		b.send(chatID, fmt.Sprintf(
			"📊 Статистика диалога:\nВсего сообщений: %d\nВаших: %d\nОтветов: %d",
			stats.TotalMessages, stats.UserMessages, stats.AssistantMessages,
		))
	case "/reset":
		b.conv.Reset(chatID)
		b.send(chatID, "🗑 История диалога очищена")
	default:
		b.send(chatID, "Неизвестная команда. Наберите /help")
	}
}

func (b *Bot) tasksCommand(chatID int64) {
	pending, err := b.tasks.Pending()
	if err != nil {
		b.fail(chatID, "Ошибка при получении задач", err)
		return
	}
	delegated, err := b.tasks.DelegatedByAssignee()
	if err != nil {
		b.fail(chatID, "Ошибка при получении задач", err)
		return
	}

	anyDelegated := false
	for _, tasks := range delegated {
		if len(tasks) > 0 {
			anyDelegated = true
		}
	}
	if len(pending) == 0 && !anyDelegated {
		b.send(chatID, "📋 У вас нет активных задач!")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Ваши задачи:\n\n")
	if len(pending) > 0 {
		sb.WriteString("👤 Личные задачи:\n")
		for i, t := range pending {
			if i == 5 {
				break
			}
			icon := "🔄"
			if t.Status != task.StatusPending {
				icon = "✅"
			}
			fmt.Fprintf(&sb, "%s %s\n", icon, t.Title)
		}
		sb.WriteString("\n")
	}
	for _, key := range []string{"anya", "dima", "oleg"} {
		tasks := delegated[key]
		if len(tasks) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "👥 Делегировано %s:\n", task.Delegates[key].Name)
		for i, t := range tasks {
			if i == 3 {
				break
			}
			fmt.Fprintf(&sb, "• %s\n", t.Title)
		}
		sb.WriteString("\n")
	}

	keyboard := [][]telegram.InlineButton{
		{{Text: "➕ Новая задача", CallbackData: "new_task"}},
		{{Text: "🔄 Синхронизация", CallbackData: "sync_tasks"}},
		{{Text: "📊 Аналитика", CallbackData: "show_analytics"}},
	}
	b.sendWithKeyboard(chatID, sb.String(), keyboard)
}

func (b *Bot) analyticsCommand(chatID int64) {
	b.sendWithKeyboard(chatID, b.analyticsText(), [][]telegram.InlineButton{
		{{Text: "📈 Еженедельный отчет", CallbackData: "weekly_report"}},
		{{Text: "🎯 Создать задачу", CallbackData: "new_task"}},
	})
}

func (b *Bot) analyticsText() string {
	var sb strings.Builder
	sb.WriteString("🧠 Предиктивная аналитика:\n\n")

	predictions, err := b.analytics.Predictions()
	if err == nil && len(predictions) > 0 {
		sb.WriteString("🔮 Предсказания:\n")
		for _, p := range predictions {
			fmt.Fprintf(&sb, "• %s (%d%%)\n", p.Message, int(p.Confidence*100))
		}
		sb.WriteString("\n")
	}
	insights, err := b.analytics.Insights()
	if err == nil && len(insights) > 0 {
		sb.WriteString("📊 Инсайты продуктивности:\n")
		for _, in := range insights {
			fmt.Fprintf(&sb, "• %s\n", in.Message)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("💡 Рекомендации:\n")
	switch hour := b.now().Hour(); {
	case hour >= 9 && hour <= 11:
		sb.WriteString("• Утро - время для планирования дня\n")
	case hour >= 14 && hour <= 16:
		sb.WriteString("• День - время для важных задач\n")
	case hour >= 17 && hour <= 19:
		sb.WriteString("• Вечер - время для подведения итогов\n")
	default:
		sb.WriteString("• Сфокусируйтесь на одной задаче за раз\n")
	}
	return sb.String()
}

func (b *Bot) delegateCommand(chatID int64) {
	delegated, err := b.tasks.DelegatedByAssignee()
	if err != nil {
		b.fail(chatID, "Ошибка при получении задач", err)
		return
	}
	var sb strings.Builder
	sb.WriteString("👥 Делегированные задачи:\n\n")
	empty := true
	for _, key := range []string{"anya", "dima", "oleg"} {
		tasks := delegated[key]
		if len(tasks) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(&sb, "%s:\n", task.Delegates[key].Name)
		for _, t := range tasks {
			fmt.Fprintf(&sb, "• %s\n", t.Title)
		}
		sb.WriteString("\n")
	}
	if empty {
		b.send(chatID, "👥 Делегированных задач нет")
		return
	}
	b.send(chatID, sb.String())
}

func (b *Bot) weeklyReportText() string {
	summary, err := b.analytics.GetWeeklySummary()
	if err != nil {
		return "❌ Ошибка при получении отчета"
	}
	var sb strings.Builder
	sb.WriteString("📊 Еженедельный отчет:\n\n")
	fmt.Fprintf(&sb, "📋 Создано задач: %d\n", summary.TasksCreated)
	fmt.Fprintf(&sb, "💰 Общие расходы: %.2f грн\n", summary.TotalExpenses)
	if summary.MostActiveDay != "" {
		fmt.Fprintf(&sb, "📅 Самый активный день: %s\n", summary.MostActiveDay)
	}
	if summary.ProductivityScore > 0 {
		fmt.Fprintf(&sb, "📈 Оценка продуктивности: %d/100\n", summary.ProductivityScore)
	}
	return sb.String()
}

func (b *Bot) expenseCommand(chatID int64, args string) {
	amountStr, description, _ := strings.Cut(args, " ")
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amount <= 0 || strings.TrimSpace(description) == "" {
		b.send(chatID, "Использование: /expense <сумма> <описание>")
		return
	}
	expense, err := b.finances.AddExpense(amount, strings.TrimSpace(description), "")
	if err != nil {
		b.fail(chatID, "Ошибка при добавлении расхода", err)
		return
	}
	b.send(chatID, fmt.Sprintf(
		"💰 Расход добавлен: %.2f %s — %s (%s)",
		expense.Amount, expense.Currency, expense.Description, expense.Category,
	))
}

func (b *Bot) financeCommand(chatID int64) {
	stats, err := b.finances.GetStatistics()
	if err != nil {
		b.fail(chatID, "Ошибка при получении статистики", err)
		return
	}
	b.send(chatID, fmt.Sprintf(
		"💰 Статистика расходов:\nВсего: %.2f грн\nЗа месяц: %.2f грн\nЗа неделю: %.2f грн\nСегодня: %.2f грн\nТоп категория: %s",
		stats.Total, stats.ThisMonth, stats.ThisWeek, stats.Today, stats.TopCategory,
	))
}

// fail logs the cause and shows a generic notice, never the internal
// error text.
func (b *Bot) fail(chatID int64, notice string, err error) {
	log.Printf("[bot] %s chat_id=%d: %v", notice, chatID, err)
	b.send(chatID, "❌ "+notice)
}
