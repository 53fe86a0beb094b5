// Package config resolves runtime settings from defaults, an optional TOML
// file and TASKLIST_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
	BackendGitHub Backend = "github"
)

func (b Backend) IsValid() bool {
	switch b {
	case BackendJSON, BackendSQLite, BackendGitHub:
		return true
	default:
		return false
	}
}

type GitHub struct {
	Owner  string `toml:"owner"`
	Repo   string `toml:"repo"`
	Path   string `toml:"path"`
	Branch string `toml:"branch"`
	Token  string `toml:"token"`
	APIURL string `toml:"api_url"`
}

type Config struct {
	Backend             Backend `toml:"backend"`
	DataFile            string  `toml:"data_file"`
	SQLitePath          string  `toml:"sqlite_path"`
	Delimiter           string  `toml:"delimiter"`
	CaseSensitiveSearch bool    `toml:"case_sensitive_search"`
	LogLevel            string  `toml:"log_level"`
	LogFormat           string  `toml:"log_format"`
	LogFile             string  `toml:"log_file"`
	ListenAddr          string  `toml:"listen_addr"`
	GitHub              GitHub  `toml:"github"`
}

func Default() Config {
	return Config{
		Backend:    BackendJSON,
		DataFile:   "todo_list.json",
		SQLitePath: "todo_list.db",
		Delimiter:  ";",
		LogLevel:   "info",
		LogFormat:  "console",
		ListenAddr: "127.0.0.1:8080",
		GitHub: GitHub{
			Path:   "todo_list.json",
			APIURL: "https://api.github.com",
		},
	}
}

// Load builds the configuration. An explicit path must exist; without one
// the project file and then the user file are tried and silently skipped
// when absent.
func Load(explicitPath string) (Config, error) {
	cfg := Default()

	path := strings.TrimSpace(explicitPath)
	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !c.Backend.IsValid() {
		return fmt.Errorf("config: unknown backend %q (want json, sqlite or github)", c.Backend)
	}
	switch c.Backend {
	case BackendJSON:
		if strings.TrimSpace(c.DataFile) == "" {
			return errors.New("config: data_file is required for the json backend")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("config: sqlite_path is required for the sqlite backend")
		}
	case BackendGitHub:
		if c.GitHub.Repo == "" || c.GitHub.Path == "" {
			return errors.New("config: github.repo and github.path are required for the github backend")
		}
	}
	if c.Delimiter == "" {
		return errors.New("config: delimiter must not be empty")
	}
	return nil
}

func findConfigFile() string {
	candidates := []string{"tasklist.toml", ".tasklist.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "tasklist", "config.toml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
