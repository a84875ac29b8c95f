package task

import (
	"fmt"
	"strings"
)

// Delegate describes one person tasks can be handed to.
type Delegate struct {
	Name   string
	Type   string
	Skills []string
}

// Delegate types used for instruction templates.
const (
	DelegatePersonal          = "personal"
	DelegateMarketingCreative = "marketing_creative"
	DelegateMarketingStrategy = "marketing_strategy"
)

// Delegates lists the known assignees by key.
var Delegates = map[string]Delegate{
	"anya": {
		Name:   "Аня",
		Type:   DelegatePersonal,
		Skills: []string{"личные дела", "покупки", "дом", "семья"},
	},
	"dima": {
		Name:   "Дима",
		Type:   DelegateMarketingCreative,
		Skills: []string{"контент", "креативы", "дизайн", "видео", "фото"},
	},
	"oleg": {
		Name:   "Олег",
		Type:   DelegateMarketingStrategy,
		Skills: []string{"стратегия", "процессы", "аналитика", "планирование"},
	},
}

// delegateKeys is the stable iteration order for delegate matching and
// listings.
var delegateKeys = []string{"anya", "dima", "oleg"}

// suggestDelegate returns the key of the first delegate whose skill
// keyword appears in the text, or "" when nobody fits.
func suggestDelegate(lower string) string {
	for _, key := range delegateKeys {
		for _, skill := range Delegates[key].Skills {
			if strings.Contains(lower, skill) {
				return key
			}
		}
	}
	return ""
}

// delegationInstructions renders the handover text for a delegated
// task, with type-specific guidance appended.
func delegationInstructions(t Task, d Delegate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Задача для %s:\n\n", d.Name)
	fmt.Fprintf(&b, "📋 %s\n\n", t.Title)

	if t.Description != "" {
		fmt.Fprintf(&b, "Описание: %s\n\n", t.Description)
	}
	if t.DueDate != nil {
		fmt.Fprintf(&b, "⏰ Срок: %s\n\n", t.DueDate.Format("02.01.2006 15:04"))
	}
	if len(t.Steps) > 0 {
		b.WriteString("📝 План действий:\n")
		for i, step := range t.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\n")
	}

	switch d.Type {
	case DelegatePersonal:
		b.WriteString("💡 Рекомендации:\n")
		b.WriteString("• Уточни детали, если что-то непонятно\n")
		b.WriteString("• Сообщи о завершении\n")
	case DelegateMarketingCreative:
		b.WriteString("🎨 Креативные требования:\n")
		b.WriteString("• Следуй брендбуку\n")
		b.WriteString("• Покажи варианты перед финализацией\n")
	case DelegateMarketingStrategy:
		b.WriteString("📊 Стратегические моменты:\n")
		b.WriteString("• Проанализируй эффективность\n")
		b.WriteString("• Предложи оптимизации\n")
	}
	return b.String()
}
