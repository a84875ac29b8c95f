package analytics

import (
	"database/sql"
	"fmt"
	"time"
)

// Interaction kinds recorded by the bot.
const (
	InteractionStartCommand = "start_command"
	InteractionTextMessage  = "text_message"
	InteractionVoiceMessage = "voice_message"
	InteractionPhotoMessage = "photo_message"
	InteractionTaskCreated  = "task_created"
)

// Prediction is one heuristic forecast with a confidence in (0, 1].
type Prediction struct {
	Message    string
	Confidence float64
}

// Insight is one productivity observation.
type Insight struct {
	Key     string
	Message string
}

// WeeklySummary aggregates the last seven days.
type WeeklySummary struct {
	TasksCreated      int
	TotalExpenses     float64
	MostActiveDay     string
	ProductivityScore int
}

var dayNames = [...]string{
	"Воскресенье", "Понедельник", "Вторник", "Среда",
	"Четверг", "Пятница", "Суббота",
}

// Service records interactions and derives heuristic findings from
// them. It reads the tasks and expenses tables of the same database.
type Service struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewService creates an analytics service over an initialized database.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database, Now: time.Now}
}

// RecordInteraction stores one interaction event. detail may be empty.
func (s *Service) RecordInteraction(kind, detail string) error {
	_, err := s.DB.Exec(
		`INSERT INTO interactions (kind, detail, created_at) VALUES (?, ?, ?)`,
		kind, detail, s.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record interaction %s: %w", kind, err)
	}
	return nil
}

// InteractionsSince counts interactions recorded at or after the given
// time.
func (s *Service) InteractionsSince(since time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM interactions WHERE created_at >= ?`,
		since.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return count, nil
}

// Predictions derives forecasts from the last two weeks of activity.
// With no recorded data it returns nothing.
func (s *Service) Predictions() ([]Prediction, error) {
	now := s.Now()
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	thisWeek, err := s.tasksCreatedBetween(weekAgo, now)
	if err != nil {
		return nil, err
	}
	prevWeek, err := s.tasksCreatedBetween(twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, err
	}

	var predictions []Prediction
	switch {
	case thisWeek > prevWeek && thisWeek >= 3:
		predictions = append(predictions, Prediction{
			Message:    fmt.Sprintf("Нагрузка растет: %d задач за неделю против %d ранее", thisWeek, prevWeek),
			Confidence: 0.8,
		})
	case thisWeek < prevWeek:
		predictions = append(predictions, Prediction{
			Message:    "Темп создания задач снижается",
			Confidence: 0.6,
		})
	}

	day, err := s.mostActiveDay(weekAgo)
	if err != nil {
		return nil, err
	}
	if day != "" {
		predictions = append(predictions, Prediction{
			Message:    fmt.Sprintf("Самый активный день — %s", day),
			Confidence: 0.7,
		})
	}
	return predictions, nil
}

// Insights summarizes the last week of recorded activity.
func (s *Service) Insights() ([]Insight, error) {
	weekAgo := s.Now().AddDate(0, 0, -7)

	interactions, err := s.InteractionsSince(weekAgo)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasksCreatedBetween(weekAgo, s.Now())
	if err != nil {
		return nil, err
	}

	var insights []Insight
	if interactions > 0 {
		insights = append(insights, Insight{
			Key:     "activity",
			Message: fmt.Sprintf("За неделю %d взаимодействий с ассистентом", interactions),
		})
	}
	if tasks > 0 {
		insights = append(insights, Insight{
			Key:     "tasks",
			Message: fmt.Sprintf("Создано %d задач за неделю", tasks),
		})
	}
	return insights, nil
}

// GetWeeklySummary aggregates tasks, expenses and activity over the
// last seven days.
func (s *Service) GetWeeklySummary() (WeeklySummary, error) {
	now := s.Now()
	weekAgo := now.AddDate(0, 0, -7)

	tasks, err := s.tasksCreatedBetween(weekAgo, now)
	if err != nil {
		return WeeklySummary{}, err
	}
	var expenses float64
	err = s.DB.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE created_at >= ?`,
		weekAgo.Unix(),
	).Scan(&expenses)
	if err != nil {
		return WeeklySummary{}, fmt.Errorf("sum weekly expenses: %w", err)
	}
	day, err := s.mostActiveDay(weekAgo)
	if err != nil {
		return WeeklySummary{}, err
	}
	interactions, err := s.InteractionsSince(weekAgo)
	if err != nil {
		return WeeklySummary{}, err
	}

	score := tasks*15 + interactions*2
	if score > 100 {
		score = 100
	}
	return WeeklySummary{
		TasksCreated:      tasks,
		TotalExpenses:     expenses,
		MostActiveDay:     day,
		ProductivityScore: score,
	}, nil
}

func (s *Service) tasksCreatedBetween(from, to time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE created_at >= ? AND created_at < ?`,
		from.Unix(), to.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count created tasks: %w", err)
	}
	return count, nil
}

// mostActiveDay returns the Russian weekday name with the most
// interactions since the given time, or "" when nothing was recorded.
func (s *Service) mostActiveDay(since time.Time) (string, error) {
	var weekday int
	err := s.DB.QueryRow(
		`SELECT CAST(strftime('%w', created_at, 'unixepoch') AS INTEGER) AS day
		 FROM interactions WHERE created_at >= ?
		 GROUP BY day ORDER BY COUNT(*) DESC LIMIT 1`,
		since.Unix(),
	).Scan(&weekday)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("most active day: %w", err)
	}
	if weekday < 0 || weekday >= len(dayNames) {
		return "", nil
	}
	return dayNames[weekday], nil
}
