package dummy

import (
	"strings"
	"testing"
)

func TestParseScript_Invalid(t *testing.T) {
	if _, err := NewCompleter("explode:now"); err == nil {
		t.Fatal("expected invalid script error")
	}
}

func TestMessenger_ScriptedPolling(t *testing.T) {
	m, err := NewMessenger("msg:привет,err:poll,ok", "ok", 42)
	if err != nil {
		t.Fatalf("NewMessenger failed: %v", err)
	}

	updates, err := m.GetUpdates(0, 0)
	if err != nil {
		t.Fatalf("GetUpdates failed: %v", err)
	}
	if len(updates) != 1 || updates[0].Message == nil || *updates[0].Message.Text != "привет" {
		t.Fatalf("unexpected updates: %#v", updates)
	}
	if updates[0].Message.From == nil || updates[0].Message.From.ID != 42 {
		t.Fatalf("expected configured sender, got %#v", updates[0].Message.From)
	}

	if _, err := m.GetUpdates(0, 0); err == nil {
		t.Fatal("expected scripted poll error")
	}

	updates, err = m.GetUpdates(0, 0)
	if err != nil {
		t.Fatalf("GetUpdates failed: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("expected no updates for ok action, got %#v", updates)
	}
}

func TestMessenger_RecordsSentMessages(t *testing.T) {
	m, err := NewMessenger("ok", "ok", 42)
	if err != nil {
		t.Fatalf("NewMessenger failed: %v", err)
	}
	if err := m.SendMessage(42, "первое"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if err := m.SendMessageWithKeyboard(42, "второе", nil); err != nil {
		t.Fatalf("SendMessageWithKeyboard failed: %v", err)
	}
	sent := m.Sent()
	if len(sent) != 2 || sent[0] != "первое" || sent[1] != "второе" {
		t.Fatalf("unexpected sent log: %v", sent)
	}
}

func TestMessenger_ScriptedSendError(t *testing.T) {
	m, err := NewMessenger("ok", "err:send", 42)
	if err != nil {
		t.Fatalf("NewMessenger failed: %v", err)
	}
	if err := m.SendMessage(42, "x"); err == nil {
		t.Fatal("expected scripted send error")
	}
}

func TestCompleter_Script(t *testing.T) {
	c, err := NewCompleter("msg:ответ,err:quota")
	if err != nil {
		t.Fatalf("NewCompleter failed: %v", err)
	}
	reply, err := c.ChatCompletion(nil)
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if reply != "ответ" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if _, err := c.ChatCompletion(nil); err == nil {
		t.Fatal("expected scripted completer error")
	}
	// Final action repeats once the script is exhausted.
	if _, err := c.ChatCompletion(nil); err == nil || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected repeated error, got %v", err)
	}
}
