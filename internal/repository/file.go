package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage слот в виде одного файла на диске, аналог localStorage браузера
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Load(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrSlotEmpty
	}
	return raw, nil
}

// Store пишет во временный файл и переименовывает, чтобы не оставить полузаписанный слот
func (s *FileStorage) Store(_ context.Context, payload []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *FileStorage) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
