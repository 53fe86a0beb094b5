package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
	"go.uber.org/zap"
)

const DefaultGitHubAPIURL = "https://api.github.com"

type GitHubConfig struct {
	Owner  string
	Repo   string
	Path   string
	Branch string
	Token  string
	APIURL string
	Client *http.Client
}

// GitHubBackend keeps the canonical JSON document in a repository file
// through the contents API. The blob sha seen on the last Load or Save is
// sent with the next Save so concurrent edits are rejected by GitHub rather
// than silently overwritten.
type GitHubBackend struct {
	cfg    GitHubConfig
	logger *zap.Logger

	mu  sync.Mutex
	sha string
}

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type putContentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putContentsResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func NewGitHubBackend(cfg GitHubConfig, logger *zap.Logger) (*GitHubBackend, error) {
	cfg.Owner = strings.TrimSpace(cfg.Owner)
	cfg.Repo = strings.TrimSpace(cfg.Repo)
	if owner, repo, found := strings.Cut(cfg.Repo, "/"); found && cfg.Owner == "" {
		cfg.Owner, cfg.Repo = owner, repo
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("storage: github backend requires owner and repo")
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage: github backend requires a file path")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultGitHubAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitHubBackend{cfg: cfg, logger: logger}, nil
}

func (b *GitHubBackend) contentsURL() string {
	path := strings.TrimLeft(b.cfg.Path, "/")
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", b.cfg.APIURL,
		url.PathEscape(b.cfg.Owner), url.PathEscape(b.cfg.Repo), path)
}

func (b *GitHubBackend) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if b.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (b *GitHubBackend) Load(ctx context.Context) ([]model.Item, error) {
	target := b.contentsURL()
	if b.cfg.Branch != "" {
		target += "?ref=" + url.QueryEscape(b.cfg.Branch)
	}
	req, err := b.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github get: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		b.setSHA("")
		return []model.Item{}, nil
	case resp.StatusCode != http.StatusOK:
		return nil, statusError("github get", resp)
	}

	var payload contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("github get: decode response: %w", err)
	}
	b.setSHA(payload.SHA)
	if payload.Encoding != "" && payload.Encoding != "base64" {
		return nil, fmt.Errorf("%w: unsupported content encoding %q", ErrInvalidFormat, payload.Encoding)
	}
	// The API wraps base64 content at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: content is not base64: %v", ErrInvalidFormat, err)
	}
	items, skipped, err := DecodeItems(raw)
	if err != nil {
		return nil, err
	}
	logSkipped(b.logger, b.cfg.Path, skipped)
	return items, nil
}

func (b *GitHubBackend) Save(ctx context.Context, items []model.Item) error {
	payload, err := EncodeItems(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	body, err := json.Marshal(putContentsRequest{
		Message: fmt.Sprintf("Update %s (%d items)", b.cfg.Path, len(items)),
		Content: base64.StdEncoding.EncodeToString(payload),
		SHA:     b.currentSHA(),
		Branch:  b.cfg.Branch,
	})
	if err != nil {
		return err
	}
	req, err := b.newRequest(ctx, http.MethodPut, b.contentsURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	resp, err := b.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("github put: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("github put", resp)
	}
	var out putContentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("github put: decode response: %w", err)
	}
	b.setSHA(out.Content.SHA)
	b.logger.Debug("github contents updated", zap.String("path", b.cfg.Path), zap.String("sha", out.Content.SHA))
	return nil
}

func (b *GitHubBackend) currentSHA() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sha
}

func (b *GitHubBackend) setSHA(sha string) {
	b.mu.Lock()
	b.sha = sha
	b.mu.Unlock()
}

func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}
	return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, msg)
}
