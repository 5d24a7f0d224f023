package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaikyoudou/storefront/internal/domain"
	"go.uber.org/zap"
)

// FileStore persists the cart as a JSON document on the local device.
type FileStore struct {
	path   string
	logger *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

func (s *FileStore) Load(_ context.Context) ([]domain.CartLine, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStoreUnavailable, s.path, err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.Warn("discarding corrupt cart file",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, nil
	}

	return lines, nil
}

func (s *FileStore) Save(_ context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("%w: encoding cart: %v", ErrStoreUnavailable, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStoreUnavailable, filepath.Dir(s.path), err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStoreUnavailable, s.path, err)
	}

	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %v", ErrStoreUnavailable, s.path, err)
	}
	return nil
}
