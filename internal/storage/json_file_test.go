package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sandeepkv93/tasklist/internal/model"
	"go.uber.org/zap"
)

func sampleItems(t *testing.T) []model.Item {
	t.Helper()
	due, err := model.ParseDueDate("2026-03-01")
	if err != nil {
		t.Fatalf("parse due: %v", err)
	}
	created := time.Date(2026, 2, 9, 12, 0, 0, 0, time.Local)

	first := model.New("Pay rent", "home", model.PriorityUrgent, due)
	first.CreatedAt = created
	second := model.New("Read book", "", model.PriorityLow, time.Time{})
	second.Status = model.StatusDone
	second.CreatedAt = created
	return []model.Item{first, second}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todo_list.json")
	backend, err := NewFileBackend(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	want := sampleItems(t)
	if err := backend.Save(testContext(t), want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp file to be gone, stat err: %v", err)
	}

	got, err := backend.Load(testContext(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFileBackendMissingFileIsEmpty(t *testing.T) {
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "absent.json"), nil)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	items, err := backend.Load(testContext(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d items", len(items))
	}
}

func TestFileBackendRejectsMalformedDocument(t *testing.T) {
	cases := map[string]string{
		"not json":       `{{{`,
		"object at root": `{"title": "x"}`,
		"string prio":    `[{"title": "x", "prio": "high"}]`,
		"missing title":  `[{"cat": "x"}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "todo.json")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			backend, _ := NewFileBackend(path, nil)
			_, err := backend.Load(context.Background())
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestDecodeItemsNormalizesLegacyRecords(t *testing.T) {
	raw := []byte(`[
	  {"title": "買い物", "cat": "未分類", "prio": null, "dl": null, "status": "未", "created_at": "2025-01-02 03:04:05"},
	  {"title": "振込", "cat": "", "prio": 7, "dl": "2025-13-01", "status": "完"},
	  {"title": "  ", "cat": "x"}
	]`)
	items, skipped, err := DecodeItems(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Priority != model.DefaultPriority || items[0].Status != model.StatusPending || items[0].Category != "未分類" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be parsed")
	}
	if items[1].Priority != model.DefaultPriority || items[1].HasDue() || items[1].Status != model.StatusDone {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	if items[1].Category != model.DefaultCategory {
		t.Fatalf("expected default category, got %q", items[1].Category)
	}
	// priority and due date on record 1, missing title on record 2
	if len(skipped) != 3 {
		t.Fatalf("expected 3 normalization notes, got %+v", skipped)
	}
}

func TestEncodeItemsUsesCanonicalKeys(t *testing.T) {
	out, err := EncodeItems([]model.Item{model.New("A", "x", model.PriorityHigh, time.Time{})})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "[\n  {\n    \"title\": \"A\",\n    \"cat\": \"x\",\n    \"prio\": 2,\n    \"dl\": null,\n    \"status\": \"pending\"\n  }\n]\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("encoding mismatch (-want +got):\n%s", diff)
	}
}
