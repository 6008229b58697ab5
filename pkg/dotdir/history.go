package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const historyFile = "history.json"

// HistoryTurn is one persisted chat turn, in the shape the chat endpoint
// accepts as history.
type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// HistoryPath returns the history.json path inside the resolved directory.
func (m *Manager) HistoryPath(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historyFile), nil
}

// LoadHistory reads the turns stored at path. A missing file is an empty
// history.
func LoadHistory(path string) ([]HistoryTurn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []HistoryTurn{}, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	turns := []HistoryTurn{}
	if len(data) == 0 {
		return turns, nil
	}
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	return turns, nil
}

// SaveHistory rewrites the whole file at path. There is no locking; one chat
// process owns a history file.
func SaveHistory(path string, turns []HistoryTurn) error {
	if turns == nil {
		turns = []HistoryTurn{}
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// ClearHistory removes the file at path. A missing file is not an error.
func ClearHistory(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing history: %w", err)
	}
	return nil
}
