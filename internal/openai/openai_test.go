package openai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Santanika/assistant-bot/internal/conversation"
)

func TestChatCompletion_SendsConfiguredRequest(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body is not valid json: %v", err)
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":" hello "}}]}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-4", 2000, 0.7, 2*time.Second)
	reply, err := c.ChatCompletion([]conversation.Message{
		{Role: conversation.RoleSystem, Content: "persona"},
		{Role: conversation.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if reply != "hello" {
		t.Errorf("expected trimmed reply %q, got %q", "hello", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if gotBody["model"] != "gpt-4" {
		t.Errorf("unexpected model: %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(2000) {
		t.Errorf("unexpected max_tokens: %v", gotBody["max_tokens"])
	}
	if gotBody["temperature"] != 0.7 {
		t.Errorf("unexpected temperature: %v", gotBody["temperature"])
	}
	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("unexpected messages payload: %v", gotBody["messages"])
	}
	first, _ := messages[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "persona" {
		t.Errorf("unexpected first message: %v", first)
	}
}

func TestChatCompletion_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limit"}}`)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, "gpt-4", 2000, 0.7, 2*time.Second)
	_, err := c.ChatCompletion([]conversation.Message{{Role: conversation.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for non-success status")
	}
	if !strings.Contains(err.Error(), "status=429") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChatCompletion_EmptyChoicesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, "gpt-4", 2000, 0.7, 2*time.Second)
	_, err := c.ChatCompletion([]conversation.Message{{Role: conversation.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for response without choices")
	}
}

func TestChatCompletion_MalformedBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not-json`)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, "gpt-4", 2000, 0.7, 2*time.Second)
	_, err := c.ChatCompletion([]conversation.Message{{Role: conversation.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
}
