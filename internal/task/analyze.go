package task

import (
	"strings"
	"time"
)

// Analysis is the heuristic breakdown of a free-form task request.
type Analysis struct {
	Title             string
	Description       string
	Priority          string
	EstimatedTime     string
	SuggestedDelegate string
	Steps             []string
	DueDate           *time.Time
}

// Priority levels assigned by Analyze.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const timeUnknown = "не определено"

var (
	highPriorityWords = []string{"срочно", "важно", "критично", "немедленно"}
	lowPriorityWords  = []string{"когда-нибудь", "не спешно", "потом"}
)

// Analyze derives title, priority, time estimate, delegate suggestion,
// action steps and a due date from the task text using keyword
// matching. It never fails; unknown inputs get defaults.
func Analyze(text string, now time.Time) Analysis {
	lower := strings.ToLower(text)

	a := Analysis{
		Title:         titleOf(text),
		Description:   text,
		Priority:      PriorityMedium,
		EstimatedTime: timeUnknown,
		Steps:         actionSteps(lower),
	}

	if containsAny(lower, highPriorityWords) {
		a.Priority = PriorityHigh
	} else if containsAny(lower, lowPriorityWords) {
		a.Priority = PriorityLow
	}

	switch {
	case containsAny(lower, []string{"быстро", "минут", "5 мин"}):
		a.EstimatedTime = "15-30 минут"
	case containsAny(lower, []string{"час", "часа"}):
		a.EstimatedTime = "1-2 часа"
	case containsAny(lower, []string{"день", "дня"}):
		a.EstimatedTime = "1 день"
	case containsAny(lower, []string{"неделя", "недели"}):
		a.EstimatedTime = "1 неделя"
	}

	a.SuggestedDelegate = suggestDelegate(lower)

	switch {
	case containsAny(lower, []string{"сегодня", "сейчас"}):
		due := now.Add(8 * time.Hour)
		a.DueDate = &due
	case strings.Contains(lower, "завтра"):
		due := now.AddDate(0, 0, 1)
		a.DueDate = &due
	case containsAny(lower, []string{"неделя", "на неделе"}):
		due := now.AddDate(0, 0, 7)
		a.DueDate = &due
	}

	return a
}

// titleOf takes the first sentence and caps it at 100 runes.
func titleOf(text string) string {
	title := strings.TrimSpace(strings.SplitN(text, ".", 2)[0])
	runes := []rune(title)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return title
}

// actionSteps picks a step template by task category, four steps at
// most.
func actionSteps(lower string) []string {
	switch {
	case containsAny(lower, []string{"купить", "покупка"}):
		return []string{
			"Составить список необходимого",
			"Найти лучшие предложения",
			"Сделать покупку",
			"Проверить качество",
		}
	case containsAny(lower, []string{"написать", "создать контент"}):
		return []string{
			"Исследовать тему",
			"Создать структуру",
			"Написать черновик",
			"Отредактировать и опубликовать",
		}
	case containsAny(lower, []string{"встреча", "созвон"}):
		return []string{
			"Подготовить повестку дня",
			"Отправить приглашения",
			"Провести встречу",
			"Зафиксировать результаты",
		}
	case containsAny(lower, []string{"анализ", "исследование"}):
		return []string{
			"Собрать данные",
			"Проанализировать информацию",
			"Сделать выводы",
			"Подготовить отчет",
		}
	default:
		return []string{
			"Определить требования",
			"Спланировать выполнение",
			"Выполнить основную работу",
			"Проверить результат",
		}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
