package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/tasklist/internal/model"
)

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrInvalidFormat = errors.New("storage: invalid data format")
)

// Backend persists the whole ordered collection at once. Load on an empty
// or missing store returns an empty slice and no error.
type Backend interface {
	Load(ctx context.Context) ([]model.Item, error)
	Save(ctx context.Context, items []model.Item) error
}
