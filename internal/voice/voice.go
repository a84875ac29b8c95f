package voice

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Service handles voice notes. Speech recognition is not wired to a
// real engine yet; Transcribe returns a fixed notice.
//
// TODO: transcribe via the OpenAI audio transcription endpoint once an
// audio-capable API key is provisioned.
type Service struct {
	Dir string
}

// NewService creates a voice service storing downloaded files under
// dir.
func NewService(dir string) *Service {
	return &Service{Dir: dir}
}

// Transcribe recognizes speech in the file at path.
func (s *Service) Transcribe(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("voice file not readable: %w", err)
	}
	return "Функция распознавания речи в разработке", nil
}

// SaveFile writes downloaded media under a collision-free name and
// returns its path. ext must include the leading dot.
func (s *Service) SaveFile(data []byte, ext string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to save media file: %w", err)
	}
	return path, nil
}
