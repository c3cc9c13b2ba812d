package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"contestacao-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalStorage implements ResultStore on the local filesystem, one <id>.txt file per result
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Put writes content to a new file
func (s *LocalStorage) Put(ctx context.Context, content string) (string, error) {
	id := uuid.New()
	fullPath := filepath.Join(s.basePath, objectName(id))

	// O_EXCL keeps an existing result from being overwritten
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(fullPath) // Clean up on error
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	zap.L().Info("result saved", zap.String("backend", "local"), zap.String("path", fullPath), zap.Int("chars", len(content)))
	return id.String(), nil
}

// Get reads a result file
func (s *LocalStorage) Get(ctx context.Context, id string) (*models.StoredResult, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	fullPath := filepath.Join(s.basePath, objectName(parsed))

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &models.StoredResult{
		ID:        parsed,
		Content:   string(data),
		Size:      int64(len(data)),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a result file
func (s *LocalStorage) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return nil
	}
	fullPath := filepath.Join(s.basePath, objectName(parsed))

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
