package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/tasklist/internal/model"
	"go.uber.org/zap"
)

// FileBackend keeps the collection in a single JSON document on disk.
type FileBackend struct {
	path   string
	logger *zap.Logger
}

func NewFileBackend(path string, logger *zap.Logger) (*FileBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage: data file path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileBackend{path: path, logger: logger}, nil
}

func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Load(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Item{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	items, skipped, err := DecodeItems(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	logSkipped(b.logger, b.path, skipped)
	return items, nil
}

// Save writes to a sibling temp file and renames it over the target so a
// crash never leaves a half-written document behind.
func (b *FileBackend) Save(ctx context.Context, items []model.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeItems(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	dir := filepath.Dir(b.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}

func logSkipped(logger *zap.Logger, source string, skipped []Skipped) {
	for _, s := range skipped {
		logger.Warn("record normalized on load",
			zap.String("source", source),
			zap.Int("index", s.Index),
			zap.String("reason", s.Reason),
		)
	}
}
