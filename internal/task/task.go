package task

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDelegated  = "delegated"
	StatusCompleted  = "completed"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrUnknownDelegate = errors.New("unknown delegate")
)

// Task is one tracked task.
type Task struct {
	ID                     int64
	Title                  string
	Description            string
	Status                 string
	Priority               string
	EstimatedTime          string
	DueDate                *time.Time
	Steps                  []string
	SuggestedDelegate      string
	DelegatedTo            string
	DelegationInstructions string
	ExternalID             string
	CreatedAt              time.Time
}

// Delegation is the result of handing a task to an assignee.
type Delegation struct {
	DelegateName string
	Instructions string
}

// Service manages tasks in SQLite.
type Service struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewService creates a task service over an initialized database.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database, Now: time.Now}
}

// Create analyzes the request text and stores the resulting task.
func (s *Service) Create(text string) (Task, error) {
	now := s.Now()
	analysis := Analyze(text, now)

	steps, err := json.Marshal(analysis.Steps)
	if err != nil {
		return Task{}, fmt.Errorf("marshal task steps: %w", err)
	}
	var due any
	if analysis.DueDate != nil {
		due = analysis.DueDate.Unix()
	}

	res, err := s.DB.Exec(
		`INSERT INTO tasks (title, description, priority, estimated_time, due_date, steps, suggested_delegate, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		analysis.Title, analysis.Description, analysis.Priority, analysis.EstimatedTime,
		due, string(steps), nullable(analysis.SuggestedDelegate), now.Unix(), now.Unix(),
	)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Task{}, fmt.Errorf("get task id: %w", err)
	}
	return s.Get(id)
}

// Get loads one task by id.
func (s *Service) Get(id int64) (Task, error) {
	row := s.DB.QueryRow(
		`SELECT id, title, description, status, priority, estimated_time, due_date, steps,
		        COALESCE(suggested_delegate, ''), COALESCE(delegated_to, ''),
		        COALESCE(delegation_instructions, ''), COALESCE(external_id, ''), created_at
		 FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	return t, err
}

// Pending returns tasks that are pending or in progress, oldest first.
func (s *Service) Pending() ([]Task, error) {
	return s.query(
		`SELECT id, title, description, status, priority, estimated_time, due_date, steps,
		        COALESCE(suggested_delegate, ''), COALESCE(delegated_to, ''),
		        COALESCE(delegation_instructions, ''), COALESCE(external_id, ''), created_at
		 FROM tasks WHERE status IN (?, ?) ORDER BY id`,
		StatusPending, StatusInProgress,
	)
}

// DelegatedByAssignee groups delegated tasks by delegate key. All known
// delegates are present in the result, possibly with no tasks.
func (s *Service) DelegatedByAssignee() (map[string][]Task, error) {
	tasks, err := s.query(
		`SELECT id, title, description, status, priority, estimated_time, due_date, steps,
		        COALESCE(suggested_delegate, ''), COALESCE(delegated_to, ''),
		        COALESCE(delegation_instructions, ''), COALESCE(external_id, ''), created_at
		 FROM tasks WHERE status = ? ORDER BY id`,
		StatusDelegated,
	)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]Task, len(delegateKeys))
	for _, key := range delegateKeys {
		grouped[key] = nil
	}
	for _, t := range tasks {
		if _, known := Delegates[t.DelegatedTo]; known {
			grouped[t.DelegatedTo] = append(grouped[t.DelegatedTo], t)
		}
	}
	return grouped, nil
}

// Delegate hands a task to the delegate identified by key and records
// the generated instructions.
func (s *Service) Delegate(id int64, key string) (Delegation, error) {
	delegate, ok := Delegates[key]
	if !ok {
		return Delegation{}, ErrUnknownDelegate
	}
	t, err := s.Get(id)
	if err != nil {
		return Delegation{}, err
	}

	instructions := delegationInstructions(t, delegate)
	now := s.Now().Unix()
	if _, err := s.DB.Exec(
		`UPDATE tasks SET status = ?, delegated_to = ?, delegated_at = ?, delegation_instructions = ?, updated_at = ? WHERE id = ?`,
		StatusDelegated, key, now, instructions, now, id,
	); err != nil {
		return Delegation{}, fmt.Errorf("delegate task %d: %w", id, err)
	}
	return Delegation{DelegateName: delegate.Name, Instructions: instructions}, nil
}

// Complete marks a task completed.
func (s *Service) Complete(id int64) error {
	res, err := s.DB.Exec(
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, s.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CreatedSince counts tasks created at or after the given time.
func (s *Service) CreatedSince(since time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM tasks WHERE created_at >= ?`, since.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count created tasks: %w", err)
	}
	return count, nil
}

// Summary renders a detailed Russian-language card for one task.
func (s *Service) Summary(id int64) (string, error) {
	t, err := s.Get(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s\n\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(&b, "📝 Описание: %s\n\n", t.Description)
	}
	fmt.Fprintf(&b, "📊 Статус: %s\n", t.Status)
	fmt.Fprintf(&b, "🎯 Приоритет: %s\n", t.Priority)
	fmt.Fprintf(&b, "⏱️ Время: %s\n", t.EstimatedTime)
	if t.DueDate != nil {
		fmt.Fprintf(&b, "📅 Срок: %s\n", t.DueDate.Format("02.01.2006 15:04"))
	}
	if t.DelegatedTo != "" {
		if d, ok := Delegates[t.DelegatedTo]; ok {
			fmt.Fprintf(&b, "👥 Делегировано: %s\n", d.Name)
		}
	}
	if t.ExternalID != "" {
		fmt.Fprintf(&b, "🔄 Внешний ID: %s\n", t.ExternalID)
	}
	if len(t.Steps) > 0 {
		b.WriteString("\n📝 План действий:\n")
		for i, step := range t.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	return b.String(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var due sql.NullInt64
	var steps string
	var created int64
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.EstimatedTime,
		&due, &steps, &t.SuggestedDelegate, &t.DelegatedTo,
		&t.DelegationInstructions, &t.ExternalID, &created,
	)
	if err != nil {
		return Task{}, err
	}
	if due.Valid {
		d := time.Unix(due.Int64, 0)
		t.DueDate = &d
	}
	if err := json.Unmarshal([]byte(steps), &t.Steps); err != nil {
		return Task{}, fmt.Errorf("unmarshal steps for task %d: %w", t.ID, err)
	}
	t.CreatedAt = time.Unix(created, 0)
	return t, nil
}

func (s *Service) query(q string, args ...any) ([]Task, error) {
	rows, err := s.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
