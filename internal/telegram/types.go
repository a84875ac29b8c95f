package telegram

// Update is one incoming Telegram update. Callback queries are mapped
// to synthetic text messages by the client.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an incoming chat message.
type Message struct {
	From  *User       `json:"from,omitempty"`
	Chat  Chat        `json:"chat"`
	Text  *string     `json:"text,omitempty"`
	Voice *Voice      `json:"voice,omitempty"`
	Photo []PhotoSize `json:"photo,omitempty"`
	Date  int64       `json:"date"`
}

// User identifies the sender of a message.
type User struct {
	ID int64 `json:"id"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// Voice describes a voice note attachment.
type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
}

// PhotoSize is one available resolution of a photo attachment.
// Telegram sends sizes in ascending order; the last entry is the
// largest.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int    `json:"file_size"`
}

// InlineButton is one inline-keyboard button carrying callback data.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}
