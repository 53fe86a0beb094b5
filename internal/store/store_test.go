package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/storage"
)

type memBackend struct {
	saved   []model.Item
	saves   int
	failErr error
	loadErr error
}

func (m *memBackend) Load(context.Context) ([]model.Item, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]model.Item, len(m.saved))
	copy(out, m.saved)
	return out, nil
}

func (m *memBackend) Save(_ context.Context, items []model.Item) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.saved = make([]model.Item, len(items))
	copy(m.saved, items)
	return nil
}

var fixedNow = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *memBackend) {
	t.Helper()
	backend := &memBackend{}
	s := New(backend, Options{Now: func() time.Time { return fixedNow }})
	return s, backend
}

func titles(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func mustAdd(t *testing.T, s *Store, batch string, opts AddOptions) Result {
	t.Helper()
	res, err := s.Add(testContext(t), batch, opts)
	if err != nil {
		t.Fatalf("add %q: %v", batch, err)
	}
	return res
}

func TestAddBatchSharesAttributes(t *testing.T) {
	s, backend := newTestStore(t)
	res := mustAdd(t, s, "A;B;C", AddOptions{Category: "x", Priority: model.PriorityHigh})
	if res.Count != 3 {
		t.Fatalf("expected 3 added, got %d", res.Count)
	}
	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for _, item := range items {
		if item.Category != "x" || item.Priority != model.PriorityHigh || item.Status != model.StatusPending {
			t.Fatalf("unexpected item: %+v", item)
		}
		if !item.CreatedAt.Equal(fixedNow) {
			t.Fatalf("expected created_at %v, got %v", fixedNow, item.CreatedAt)
		}
	}
	if backend.saves != 1 {
		t.Fatalf("expected a single save for the batch, got %d", backend.saves)
	}
}

func TestAddTrimsAndDropsEmptyTitles(t *testing.T) {
	s, backend := newTestStore(t)
	res := mustAdd(t, s, "  buy milk ; ;;pay rent;  ", AddOptions{})
	if diff := cmp.Diff([]string{"buy milk", "pay rent"}, titles(s.List(""))); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	if res.Count != 2 {
		t.Fatalf("expected 2 added, got %d", res.Count)
	}
	item := s.Items()[0]
	if item.Category != model.DefaultCategory || item.Priority != model.DefaultPriority {
		t.Fatalf("expected defaults, got %+v", item)
	}

	res = mustAdd(t, s, " ; ", AddOptions{})
	if res.Count != 0 || len(res.Warnings) != 1 || backend.saves != 1 {
		t.Fatalf("expected no-op with a warning, got %+v saves=%d", res, backend.saves)
	}
}

func TestAddInvalidDueDateKeepsItemWithoutDate(t *testing.T) {
	s, _ := newTestStore(t)
	res := mustAdd(t, s, "file taxes", AddOptions{Due: "2026-02-30"})
	if res.Count != 1 {
		t.Fatalf("expected item to be added, got %+v", res)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "2026-02-30") {
		t.Fatalf("expected due-date warning, got %v", res.Warnings)
	}
	if s.Items()[0].HasDue() {
		t.Fatal("expected item without due date")
	}
}

func TestAddCustomDelimiter(t *testing.T) {
	s := New(&memBackend{}, Options{Delimiter: "|"})
	if _, err := s.Add(testContext(t), "a|b;c", AddOptions{}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b;c"}, titles(s.List(""))); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestListFiltersTitleAndCategory(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "Buy Milk;Call mom", AddOptions{Category: "home"})
	mustAdd(t, s, "Write report", AddOptions{Category: "Work"})

	if got := titles(s.List("milk")); !cmp.Equal(got, []string{"Buy Milk"}) {
		t.Fatalf("unexpected title match: %v", got)
	}
	if got := titles(s.List("work")); !cmp.Equal(got, []string{"Write report"}) {
		t.Fatalf("unexpected category match: %v", got)
	}
	entries := s.List("report")
	if len(entries) != 1 || entries[0].Position != 3 {
		t.Fatalf("expected position 3 to be preserved, got %+v", entries)
	}
	if len(s.List("")) != 3 {
		t.Fatal("expected empty keyword to list everything")
	}
}

func TestListCaseSensitiveOption(t *testing.T) {
	s := New(&memBackend{}, Options{CaseSensitive: true})
	if _, err := s.Add(testContext(t), "Buy Milk", AddOptions{}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(s.List("milk")) != 0 {
		t.Fatal("expected case-sensitive search to miss")
	}
	if len(s.List("Milk")) != 1 {
		t.Fatal("expected case-sensitive search to hit exact case")
	}
}

func TestCompleteIgnoresOutOfRange(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a;b;c;d", AddOptions{})

	res, err := s.Complete(testContext(t), "1-2,5")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("expected 2 completed, got %d", res.Count)
	}
	if diff := cmp.Diff([]string{"5"}, res.Ignored); diff != "" {
		t.Fatalf("ignored mismatch (-want +got):\n%s", diff)
	}
	want := []model.Status{model.StatusDone, model.StatusDone, model.StatusPending, model.StatusPending}
	for i, item := range s.Items() {
		if item.Status != want[i] {
			t.Fatalf("item %d status = %q, want %q", i+1, item.Status, want[i])
		}
	}
}

func TestDeleteReindexes(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a;b;c", AddOptions{})

	res, err := s.Delete(testContext(t), "2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("expected 1 deleted, got %d", res.Count)
	}
	entries := s.List("")
	if diff := cmp.Diff([]string{"a", "c"}, titles(entries)); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	if entries[0].Position != 1 || entries[1].Position != 2 {
		t.Fatalf("expected positions 1,2 got %d,%d", entries[0].Position, entries[1].Position)
	}
}

func TestDeleteRangeAppliesDescending(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a;b;c;d;e;f", AddOptions{})

	res, err := s.Delete(testContext(t), "1,3-5")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Count != 4 {
		t.Fatalf("expected 4 deleted, got %d", res.Count)
	}
	if diff := cmp.Diff([]string{"b", "f"}, titles(s.List(""))); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectorWithNoMatchesDoesNotSave(t *testing.T) {
	s, backend := newTestStore(t)
	mustAdd(t, s, "a", AddOptions{})
	saves := backend.saves

	res, err := s.Delete(testContext(t), "x,9")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Count != 0 || len(res.Ignored) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if backend.saves != saves {
		t.Fatal("expected no save for an empty selection")
	}
}

func TestUpdateAppliesPatch(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a;b;c", AddOptions{Category: "old"})

	cat := "new"
	prio := model.PriorityUrgent
	badDue := "someday"
	res, err := s.Update(testContext(t), "1,3", Patch{Category: &cat, Priority: &prio, Due: &badDue})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Count != 2 || len(res.Warnings) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	items := s.Items()
	if items[0].Category != "new" || items[0].Priority != model.PriorityUrgent || items[0].HasDue() {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Category != "old" {
		t.Fatalf("expected unselected item untouched: %+v", items[1])
	}

	res, err = s.Update(testContext(t), "1", Patch{Category: &cat})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("expected unchanged item not to count, got %d", res.Count)
	}
}

func TestSortPriorityThenDueIsStable(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "low-undated", AddOptions{Priority: model.PriorityLow})
	mustAdd(t, s, "urgent-late", AddOptions{Priority: model.PriorityUrgent, Due: "2026-05-01"})
	mustAdd(t, s, "urgent-undated", AddOptions{Priority: model.PriorityUrgent})
	mustAdd(t, s, "urgent-early-1", AddOptions{Priority: model.PriorityUrgent, Due: "2026-03-01"})
	mustAdd(t, s, "urgent-early-2", AddOptions{Priority: model.PriorityUrgent, Due: "2026-03-01"})

	if err := s.Sort(testContext(t), SortPriorityThenDue); err != nil {
		t.Fatalf("sort: %v", err)
	}
	want := []string{"urgent-early-1", "urgent-early-2", "urgent-late", "urgent-undated", "low-undated"}
	if diff := cmp.Diff(want, titles(s.List(""))); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortDueUndatedLast(t *testing.T) {
	for _, mode := range []SortMode{SortDue, SortDueDesc} {
		t.Run(string(mode), func(t *testing.T) {
			s, _ := newTestStore(t)
			mustAdd(t, s, "none", AddOptions{})
			mustAdd(t, s, "late", AddOptions{Due: "9999-12-31"})
			mustAdd(t, s, "early", AddOptions{Due: "2026-01-01"})

			if err := s.Sort(testContext(t), mode); err != nil {
				t.Fatalf("sort: %v", err)
			}
			got := titles(s.List(""))
			if got[2] != "none" {
				t.Fatalf("expected undated item last, got %v", got)
			}
			if mode == SortDue && got[0] != "early" {
				t.Fatalf("expected ascending order, got %v", got)
			}
			if mode == SortDueDesc && got[0] != "late" {
				t.Fatalf("expected descending order, got %v", got)
			}
		})
	}
}

func TestSortPriorityDesc(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "u", AddOptions{Priority: model.PriorityUrgent})
	mustAdd(t, s, "l", AddOptions{Priority: model.PriorityLow})
	mustAdd(t, s, "m", AddOptions{})
	if err := s.Sort(testContext(t), SortPriorityDesc); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if diff := cmp.Diff([]string{"l", "m", "u"}, titles(s.List(""))); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if err := s.Sort(testContext(t), SortMode("random")); !errors.Is(err, ErrUnknownSortMode) {
		t.Fatalf("expected ErrUnknownSortMode, got %v", err)
	}
}

func TestToggleSortAlternates(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "low-early", AddOptions{Priority: model.PriorityLow, Due: "2026-01-01"})
	mustAdd(t, s, "urgent-late", AddOptions{Priority: model.PriorityUrgent, Due: "2026-06-01"})

	if s.SortToggle() != ToggleByPriorityThenDate {
		t.Fatalf("unexpected initial toggle: %v", s.SortToggle())
	}
	mode, err := s.ToggleSort(testContext(t))
	if err != nil || mode != SortPriorityThenDue {
		t.Fatalf("first toggle = %q, %v", mode, err)
	}
	if got := titles(s.List("")); got[0] != "urgent-late" {
		t.Fatalf("expected priority order, got %v", got)
	}

	mode, err = s.ToggleSort(testContext(t))
	if err != nil || mode != SortDue {
		t.Fatalf("second toggle = %q, %v", mode, err)
	}
	if got := titles(s.List("")); got[0] != "low-early" {
		t.Fatalf("expected date order, got %v", got)
	}
	if s.SortToggle() != ToggleByPriorityThenDate {
		t.Fatalf("expected toggle to wrap around, got %v", s.SortToggle())
	}
}

func TestSaveFailureRollsBack(t *testing.T) {
	s, backend := newTestStore(t)
	mustAdd(t, s, "a;b", AddOptions{})

	backend.failErr = errors.New("disk full")
	_, err := s.Delete(testContext(t), "1")
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected rollback to keep 2 items, got %d", s.Len())
	}

	if _, err := s.ToggleSort(testContext(t)); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist from toggle, got %v", err)
	}
	if s.SortToggle() != ToggleByPriorityThenDate {
		t.Fatal("expected toggle not to advance on failure")
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	backend := &memBackend{saved: []model.Item{model.New("kept", "", 0, time.Time{})}}
	s := New(backend, Options{})
	if err := s.Load(testContext(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", s.Len())
	}

	backend.loadErr = errors.New("unreadable")
	if err := s.Reload(testContext(t)); err == nil {
		t.Fatal("expected reload error")
	}
	if s.Len() != 1 {
		t.Fatal("expected reload failure to keep the list")
	}
	if err := s.Load(testContext(t)); err == nil {
		t.Fatal("expected load error")
	}
	if s.Len() != 0 {
		t.Fatal("expected load failure to leave an empty list")
	}
}

func TestPersistLoadRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.json")
	backend, err := storage.NewFileBackend(path, nil)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	created := time.Date(2026, 2, 9, 12, 0, 0, 987654321, time.Local)
	s := New(backend, Options{Now: func() time.Time { return created }})
	mustAdd(t, s, "A;B", AddOptions{Category: "x", Priority: model.PriorityHigh, Due: "2026-04-01"})
	mustAdd(t, s, "C", AddOptions{})
	if _, err := s.Import(testContext(t), strings.NewReader("D,home,2\n")); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := s.Items()[0].CreatedAt.Nanosecond(); got != 0 {
		t.Fatalf("expected created_at truncated to seconds, got %dns", got)
	}
	if _, err := s.Complete(testContext(t), "2"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	reopened := New(backend, Options{})
	if err := reopened.Load(testContext(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(s.Items(), reopened.Items()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
