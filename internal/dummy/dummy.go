// Package dummy provides script-driven stand-ins for the Telegram
// messenger and the OpenAI completer, for running the assistant
// without network access. Scripts are comma-separated actions:
// "ok", "err:<class>", "sleep:<ms>", "msg:<text>".
package dummy

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Santanika/assistant-bot/internal/conversation"
	"github.com/Santanika/assistant-bot/internal/telegram"
)

type action struct {
	kind string
	arg  string
}

func parseScript(script string) ([]action, error) {
	if strings.TrimSpace(script) == "" {
		return []action{{kind: "ok"}}, nil
	}
	parts := strings.Split(script, ",")
	actions := make([]action, 0, len(parts))
	for _, p := range parts {
		token := strings.TrimSpace(p)
		if token == "" {
			continue
		}
		switch {
		case token == "ok":
			actions = append(actions, action{kind: "ok"})
		case strings.HasPrefix(token, "err:"):
			actions = append(actions, action{kind: "err", arg: strings.TrimPrefix(token, "err:")})
		case strings.HasPrefix(token, "sleep:"):
			actions = append(actions, action{kind: "sleep", arg: strings.TrimPrefix(token, "sleep:")})
		case strings.HasPrefix(token, "msg:"):
			actions = append(actions, action{kind: "msg", arg: strings.TrimPrefix(token, "msg:")})
		default:
			return nil, fmt.Errorf("invalid dummy action: %s", token)
		}
	}
	if len(actions) == 0 {
		actions = append(actions, action{kind: "ok"})
	}
	return actions, nil
}

type scriptRunner struct {
	actions []action
	index   int
}

func newRunner(script string) (*scriptRunner, error) {
	actions, err := parseScript(script)
	if err != nil {
		return nil, err
	}
	return &scriptRunner{actions: actions}, nil
}

// next repeats the final action once the script is exhausted.
func (r *scriptRunner) next() action {
	if len(r.actions) == 0 {
		return action{kind: "ok"}
	}
	if r.index >= len(r.actions) {
		return r.actions[len(r.actions)-1]
	}
	a := r.actions[r.index]
	r.index++
	return a
}

// Messenger is a scripted message source. Polled messages come from the
// configured user so they pass the bot's authorization check.
type Messenger struct {
	mu       sync.Mutex
	poll     *scriptRunner
	send     *scriptRunner
	userID   int64
	updateID int64
	sent     []string
}

// NewMessenger creates a scripted messenger whose messages originate
// from userID.
func NewMessenger(pollScript, sendScript string, userID int64) (*Messenger, error) {
	poll, err := newRunner(pollScript)
	if err != nil {
		return nil, err
	}
	send, err := newRunner(sendScript)
	if err != nil {
		return nil, err
	}
	return &Messenger{poll: poll, send: send, userID: userID, updateID: 1}, nil
}

func (m *Messenger) GetUpdates(offset int64, timeout int) ([]telegram.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.poll.next()
	switch a.kind {
	case "err":
		return nil, fmt.Errorf("dummy messenger error class=%s", emptyAs(a.arg, "messenger_api"))
	case "sleep":
		ms, _ := strconv.Atoi(a.arg)
		if ms > 0 {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
		return nil, nil
	case "msg":
		text := a.arg
		m.updateID++
		return []telegram.Update{
			{
				UpdateID: m.updateID,
				Message: &telegram.Message{
					From: &telegram.User{ID: m.userID},
					Chat: telegram.Chat{ID: m.userID},
					Text: &text,
					Date: time.Now().Unix(),
				},
			},
		}, nil
	default:
		return nil, nil
	}
}

func (m *Messenger) SendMessage(chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.send.next()
	switch a.kind {
	case "err":
		return fmt.Errorf("dummy messenger send error class=%s", emptyAs(a.arg, "messenger_api"))
	case "sleep":
		ms, _ := strconv.Atoi(a.arg)
		if ms > 0 {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
	}
	m.sent = append(m.sent, text)
	return nil
}

func (m *Messenger) SendMessageWithKeyboard(chatID int64, text string, keyboard [][]telegram.InlineButton) error {
	return m.SendMessage(chatID, text)
}

func (m *Messenger) SendMessageWithReplyKeyboard(chatID int64, text string, rows [][]string) error {
	return m.SendMessage(chatID, text)
}

func (m *Messenger) GetFile(fileID string) (string, error) {
	return "dummy/" + fileID, nil
}

func (m *Messenger) DownloadFile(filePath string) ([]byte, error) {
	return []byte("dummy-media"), nil
}

// Sent returns all texts delivered so far.
func (m *Messenger) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

// Completer is a scripted text-generation capability.
type Completer struct {
	mu     sync.Mutex
	script *scriptRunner
}

// NewCompleter creates a scripted completer.
func NewCompleter(script string) (*Completer, error) {
	runner, err := newRunner(script)
	if err != nil {
		return nil, err
	}
	return &Completer{script: runner}, nil
}

func (c *Completer) ChatCompletion(messages []conversation.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.script.next()
	switch a.kind {
	case "err":
		return "", fmt.Errorf("dummy completer error class=%s", emptyAs(a.arg, "provider_api"))
	case "sleep":
		ms, _ := strconv.Atoi(a.arg)
		if ms > 0 {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
		return "dummy-after-sleep", nil
	case "msg":
		return a.arg, nil
	default:
		return emptyAs(a.arg, "dummy-ok"), nil
	}
}

func emptyAs(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
