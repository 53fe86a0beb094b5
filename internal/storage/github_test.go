package storage

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContents emulates the subset of the contents API the backend uses.
type fakeContents struct {
	mu      sync.Mutex
	content []byte
	sha     string
	puts    []putContentsRequest
	token   string
}

func (f *fakeContents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = r.Header.Get("Authorization")

	if r.URL.Path != "/repos/octo/todos/contents/data/todo.json" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		if f.content == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		encoded := base64.StdEncoding.EncodeToString(f.content)
		// mimic the API's line wrapping
		var wrapped strings.Builder
		for len(encoded) > 60 {
			wrapped.WriteString(encoded[:60] + "\n")
			encoded = encoded[60:]
		}
		wrapped.WriteString(encoded)
		_ = json.NewEncoder(w).Encode(contentsResponse{Content: wrapped.String(), Encoding: "base64", SHA: f.sha})
	case http.MethodPut:
		var req putContentsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.SHA != f.sha {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"sha mismatch"}`))
			return
		}
		raw, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		status := http.StatusOK
		if f.content == nil {
			status = http.StatusCreated
		}
		f.puts = append(f.puts, req)
		f.content = raw
		f.sha = "sha-" + string(rune('a'+len(f.puts)))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"content": map[string]string{"sha": f.sha}})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newGitHubBackend(t *testing.T, fake *fakeContents) *GitHubBackend {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	backend, err := NewGitHubBackend(GitHubConfig{
		Repo:   "octo/todos",
		Path:   "data/todo.json",
		Token:  "secret",
		APIURL: srv.URL,
		Client: srv.Client(),
	}, nil)
	require.NoError(t, err)
	return backend
}

func TestGitHubBackendCreateThenUpdate(t *testing.T) {
	fake := &fakeContents{}
	backend := newGitHubBackend(t, fake)

	items, err := backend.Load(testContext(t))
	require.NoError(t, err)
	assert.Empty(t, items)

	want := sampleItems(t)
	require.NoError(t, backend.Save(testContext(t), want))
	require.Len(t, fake.puts, 1)
	assert.Empty(t, fake.puts[0].SHA, "first write creates the file")
	assert.Equal(t, "Bearer secret", fake.token)

	got, err := backend.Load(testContext(t))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Pay rent", got[0].Title)
	assert.Equal(t, model.StatusDone, got[1].Status)

	require.NoError(t, backend.Save(testContext(t), got[:1]))
	require.Len(t, fake.puts, 2)
	assert.Equal(t, "sha-b", fake.puts[1].SHA)
}

func TestGitHubBackendSurfacesConflict(t *testing.T) {
	fake := &fakeContents{content: []byte(`[]`), sha: "remote"}
	backend := newGitHubBackend(t, fake)

	_, err := backend.Load(testContext(t))
	require.NoError(t, err)

	fake.mu.Lock()
	fake.sha = "changed-elsewhere"
	fake.mu.Unlock()

	err = backend.Save(testContext(t), sampleItems(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestNewGitHubBackendValidation(t *testing.T) {
	_, err := NewGitHubBackend(GitHubConfig{Repo: "todos", Path: "a.json"}, nil)
	require.Error(t, err)

	_, err = NewGitHubBackend(GitHubConfig{Owner: "octo", Repo: "todos"}, nil)
	require.Error(t, err)

	b, err := NewGitHubBackend(GitHubConfig{Owner: "octo", Repo: "todos", Path: "/a.json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/repos/octo/todos/contents/a.json", b.contentsURL())
}
