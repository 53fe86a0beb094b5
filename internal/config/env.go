package config

import (
	"os"
	"strings"
)

// FromEnv overlays TASKLIST_* variables on base. GITHUB_TOKEN is honoured
// when TASKLIST_GITHUB_TOKEN is unset.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnv("TASKLIST_BACKEND"); ok {
		cfg.Backend = Backend(strings.ToLower(v))
	}
	if v, ok := getEnv("TASKLIST_DATA_FILE"); ok {
		cfg.DataFile = v
	}
	if v, ok := getEnv("TASKLIST_SQLITE_PATH"); ok {
		cfg.SQLitePath = v
	}
	if v, ok := getEnv("TASKLIST_DELIMITER"); ok {
		cfg.Delimiter = v
	}
	if v, ok := getEnvBool("TASKLIST_CASE_SENSITIVE_SEARCH"); ok {
		cfg.CaseSensitiveSearch = v
	}
	if v, ok := getEnv("TASKLIST_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnv("TASKLIST_LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := getEnv("TASKLIST_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnv("TASKLIST_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := getEnv("TASKLIST_GITHUB_OWNER"); ok {
		cfg.GitHub.Owner = v
	}
	if v, ok := getEnv("TASKLIST_GITHUB_REPO"); ok {
		cfg.GitHub.Repo = v
	}
	if v, ok := getEnv("TASKLIST_GITHUB_PATH"); ok {
		cfg.GitHub.Path = v
	}
	if v, ok := getEnv("TASKLIST_GITHUB_BRANCH"); ok {
		cfg.GitHub.Branch = v
	}
	if v, ok := getEnv("TASKLIST_GITHUB_API_URL"); ok {
		cfg.GitHub.APIURL = v
	}
	if v, ok := getEnv("TASKLIST_GITHUB_TOKEN"); ok {
		cfg.GitHub.Token = v
	} else if v, ok := getEnv("GITHUB_TOKEN"); ok && cfg.GitHub.Token == "" {
		cfg.GitHub.Token = v
	}
	return cfg
}

func getEnv(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
