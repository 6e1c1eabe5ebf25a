package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/reportmill/internal/model"
)

// ContentStore persists the Content record as a single JSON file.
type ContentStore struct {
	path string
}

func NewContentStore(path string) *ContentStore {
	return &ContentStore{path: path}
}

// Load reads the content file. A missing file yields an empty default
// Content; a malformed file is a hard error for the caller.
func (s *ContentStore) Load() (*model.Content, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("content: no file yet, starting empty", "path", s.path)
		return model.DefaultContent(), nil
	} else if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}

	content := model.DefaultContent()
	if err := json.Unmarshal(data, content); err != nil {
		return nil, fmt.Errorf("parse content file %s: %w", s.path, err)
	}
	content.Normalize()
	return content, nil
}

// Save overwrites the content file. Key order is stable (struct field
// order); grids are normalized first so every list has five entries.
func (s *ContentStore) Save(content *model.Content) error {
	content.Normalize()
	data, err := json.MarshalIndent(content, "", "    ")
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write content file: %w", err)
	}
	return nil
}
