package telegram

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Telegram rejects message texts above 4096 characters; stay under it.
const maxMessageChars = 3900

// Client is a minimal Telegram Bot API client.
type Client struct {
	apiBase    string
	fileBase   string
	httpClient *http.Client
}

// NewClient creates a Telegram client. apiBase is the bot method base
// (e.g. "https://api.telegram.org/bot<token>"), fileBase the download
// base (e.g. "https://api.telegram.org/file/bot<token>").
func NewClient(apiBase, fileBase string, requestTimeout time.Duration) *Client {
	return &Client{
		apiBase:  apiBase,
		fileBase: fileBase,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Response is the generic Telegram API response wrapper.
type Response struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

type tgRawUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *Message         `json:"message,omitempty"`
	CallbackQuery *tgCallbackQuery `json:"callback_query,omitempty"`
}

type tgCallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Data    string   `json:"data"`
	Message *Message `json:"message,omitempty"`
}

// GetUpdates calls the getUpdates API. Callback queries are answered
// and folded into the stream as text messages carrying their data.
func (c *Client) GetUpdates(offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))

	resp, err := c.httpClient.Get(c.apiBase + "/getUpdates?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read getUpdates response: %w", err)
	}

	var tgResp Response
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates response: %w", err)
	}
	if !tgResp.OK {
		return nil, nil
	}

	var raws []tgRawUpdate
	if err := json.Unmarshal(tgResp.Result, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates result: %w", err)
	}
	updates := make([]Update, 0, len(raws))
	for _, ru := range raws {
		if ru.Message != nil {
			updates = append(updates, Update{UpdateID: ru.UpdateID, Message: ru.Message})
			continue
		}
		if ru.CallbackQuery != nil && ru.CallbackQuery.Message != nil {
			msg := *ru.CallbackQuery.Message
			data := strings.TrimSpace(ru.CallbackQuery.Data)
			msg.Text = &data
			if ru.CallbackQuery.From != nil {
				msg.From = ru.CallbackQuery.From
			}
			if msg.Date == 0 {
				msg.Date = time.Now().Unix()
			}
			updates = append(updates, Update{UpdateID: ru.UpdateID, Message: &msg})
			_ = c.answerCallbackQuery(ru.CallbackQuery.ID)
		}
	}
	return updates, nil
}

// SendMessage sends a plain text message to the given chat.
func (c *Client) SendMessage(chatID int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    truncate(text, maxMessageChars),
	}
	return c.post("/sendMessage", payload)
}

// SendMessageWithKeyboard sends a text message with inline buttons.
func (c *Client) SendMessageWithKeyboard(chatID int64, text string, keyboard [][]InlineButton) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    truncate(text, maxMessageChars),
		"reply_markup": map[string]any{
			"inline_keyboard": keyboard,
		},
	}
	return c.post("/sendMessage", payload)
}

// SendMessageWithReplyKeyboard sends a text message with a persistent
// reply keyboard built from the given button labels.
func (c *Client) SendMessageWithReplyKeyboard(chatID int64, text string, rows [][]string) error {
	keyboard := make([][]map[string]string, 0, len(rows))
	for _, row := range rows {
		buttons := make([]map[string]string, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, map[string]string{"text": label})
		}
		keyboard = append(keyboard, buttons)
	}
	payload := map[string]any{
		"chat_id": chatID,
		"text":    truncate(text, maxMessageChars),
		"reply_markup": map[string]any{
			"keyboard":        keyboard,
			"resize_keyboard": true,
		},
	}
	return c.post("/sendMessage", payload)
}

// GetFile resolves a file_id to a server-side file path for download.
func (c *Client) GetFile(fileID string) (string, error) {
	params := url.Values{}
	params.Set("file_id", fileID)

	resp, err := c.httpClient.Get(c.apiBase + "/getFile?" + params.Encode())
	if err != nil {
		return "", fmt.Errorf("telegram getFile request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read getFile response: %w", err)
	}

	var tgResp Response
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return "", fmt.Errorf("failed to parse getFile response: %w", err)
	}
	if !tgResp.OK {
		return "", fmt.Errorf("telegram getFile failed for file_id=%s", fileID)
	}

	var file struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(tgResp.Result, &file); err != nil {
		return "", fmt.Errorf("failed to parse getFile result: %w", err)
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("telegram getFile returned empty path for file_id=%s", fileID)
	}
	return file.FilePath, nil
}

// DownloadFile fetches the file content at the path returned by GetFile.
func (c *Client) DownloadFile(filePath string) ([]byte, error) {
	resp, err := c.httpClient.Get(c.fileBase + "/" + filePath)
	if err != nil {
		return nil, fmt.Errorf("telegram file download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file download status=%d path=%s", resp.StatusCode, filePath)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read downloaded file: %w", err)
	}
	return data, nil
}

func (c *Client) post(method string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}
	resp, err := c.httpClient.Post(c.apiBase+method, "application/json", strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body) // drain
	return nil
}

func (c *Client) answerCallbackQuery(callbackID string) error {
	callbackID = strings.TrimSpace(callbackID)
	if callbackID == "" {
		return nil
	}
	return c.post("/answerCallbackQuery", map[string]any{"callback_query_id": callbackID})
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
