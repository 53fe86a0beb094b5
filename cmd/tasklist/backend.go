package main

import (
	"fmt"

	"github.com/sandeepkv93/tasklist/internal/config"
	"github.com/sandeepkv93/tasklist/internal/storage"
	"go.uber.org/zap"
)

func noopClose() error { return nil }

// openBackend builds the storage backend named by cfg. The returned close
// function is always non-nil.
func openBackend(cfg config.Config, logger *zap.Logger) (storage.Backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		b, err := storage.NewFileBackend(cfg.DataFile, logger)
		if err != nil {
			return nil, nil, err
		}
		return b, noopClose, nil
	case config.BackendSQLite:
		b, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case config.BackendGitHub:
		b, err := storage.NewGitHubBackend(storage.GitHubConfig{
			Owner:  cfg.GitHub.Owner,
			Repo:   cfg.GitHub.Repo,
			Path:   cfg.GitHub.Path,
			Branch: cfg.GitHub.Branch,
			Token:  cfg.GitHub.Token,
			APIURL: cfg.GitHub.APIURL,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return b, noopClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// watchPath is the local file to watch for outside edits, if the backend has
// one.
func watchPath(cfg config.Config) (string, bool) {
	switch cfg.Backend {
	case config.BackendJSON:
		return cfg.DataFile, true
	default:
		return "", false
	}
}
