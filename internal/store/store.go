// Package store owns the ordered to-do collection and every operation on it.
// A Store is not safe for concurrent use; callers that share one across
// goroutines serialize access themselves.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/selector"
	"github.com/sandeepkv93/tasklist/internal/storage"
	"go.uber.org/zap"
)

const DefaultDelimiter = ";"

// ErrPersist wraps every backend write failure. The in-memory collection has
// already been rolled back when it is returned.
var ErrPersist = errors.New("store: persist failed")

type Options struct {
	// Delimiter separates titles in a batch add. Defaults to ";".
	Delimiter string
	// CaseSensitive makes keyword search match case exactly.
	CaseSensitive bool
	Logger        *zap.Logger
	Now           func() time.Time
}

// Result reports the outcome of a bulk operation. Warnings carry recovered
// problems such as an unparsable due date; Ignored lists selector tokens
// that matched nothing.
type Result struct {
	Count    int
	Warnings []string
	Ignored  []string
}

// Entry pairs an item with its 1-based position in the full collection.
type Entry struct {
	Position int
	model.Item
}

type Store struct {
	backend storage.Backend
	opts    Options
	logger  *zap.Logger
	items   []model.Item
	toggle  SortToggle
}

func New(backend storage.Backend, opts Options) *Store {
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		backend: backend,
		opts:    opts,
		logger:  opts.Logger,
		items:   make([]model.Item, 0),
		toggle:  ToggleByPriorityThenDate,
	}
}

// Load replaces the collection with the backend's contents. On failure the
// collection is left empty and the error is returned for the caller to show.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.backend.Load(ctx)
	if err != nil {
		s.items = make([]model.Item, 0)
		s.logger.Warn("load failed, starting with an empty list", zap.Error(err))
		return fmt.Errorf("load items: %w", err)
	}
	s.items = items
	s.logger.Debug("items loaded", zap.Int("count", len(items)))
	return nil
}

// Reload is Load that keeps the current collection when the backend fails.
func (s *Store) Reload(ctx context.Context) error {
	items, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("reload failed, keeping current list", zap.Error(err))
		return fmt.Errorf("reload items: %w", err)
	}
	s.items = items
	return nil
}

func (s *Store) Len() int { return len(s.items) }

// Items returns a copy of the collection in its current order.
func (s *Store) Items() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// SortToggle reports which policy the next ToggleSort call will apply.
func (s *Store) SortToggle() SortToggle { return s.toggle }

type AddOptions struct {
	Category string
	Priority model.Priority
	// Due is a YYYY-MM-DD string; an invalid value is dropped with a warning.
	Due string
}

// Add splits titles on the configured delimiter and appends one item per
// non-empty title, all sharing category, priority and due date.
func (s *Store) Add(ctx context.Context, titles string, opts AddOptions) (Result, error) {
	var res Result
	names := SplitTitles(titles, s.opts.Delimiter)
	if len(names) == 0 {
		res.Warnings = append(res.Warnings, "no titles given")
		return res, nil
	}

	due, err := model.ParseDueDate(opts.Due)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("due date %q is not YYYY-MM-DD; saved without a due date", opts.Due))
		due = time.Time{}
	}
	if opts.Priority != 0 && !opts.Priority.IsValid() {
		res.Warnings = append(res.Warnings, fmt.Sprintf("priority %d out of range; using %d", int(opts.Priority), int(model.DefaultPriority)))
	}

	now := s.createdAt()
	err = s.mutate(ctx, "add", func() {
		for _, name := range names {
			item := model.New(name, opts.Category, opts.Priority, due)
			item.CreatedAt = now
			s.items = append(s.items, item)
		}
	})
	if err != nil {
		return Result{}, err
	}
	res.Count = len(names)
	return res, nil
}

// createdAt is the creation stamp for new items, at the second resolution
// the storage formats keep.
func (s *Store) createdAt() time.Time {
	return s.opts.Now().Truncate(time.Second)
}

// SplitTitles splits a batch title string, trims each part and drops the
// empty ones.
func SplitTitles(raw, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	parts := strings.Split(raw, delimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// List returns every item whose title or category contains keyword, in
// current order. An empty keyword matches everything.
func (s *Store) List(keyword string) []Entry {
	keyword = strings.TrimSpace(keyword)
	out := make([]Entry, 0, len(s.items))
	for i, item := range s.items {
		if keyword != "" && !s.matches(item, keyword) {
			continue
		}
		out = append(out, Entry{Position: i + 1, Item: item})
	}
	return out
}

func (s *Store) matches(item model.Item, keyword string) bool {
	if s.opts.CaseSensitive {
		return strings.Contains(item.Title, keyword) || strings.Contains(item.Category, keyword)
	}
	kw := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(item.Title), kw) ||
		strings.Contains(strings.ToLower(item.Category), kw)
}

// Complete marks the selected positions done.
func (s *Store) Complete(ctx context.Context, expr string) (Result, error) {
	sel := selector.Parse(expr, len(s.items))
	res := Result{Ignored: sel.Ignored}
	if sel.Empty() {
		return res, nil
	}
	err := s.mutate(ctx, "complete", func() {
		for _, idx := range sel.Indices {
			s.items[idx].Status = model.StatusDone
		}
	})
	if err != nil {
		return Result{}, err
	}
	res.Count = len(sel.Indices)
	return res, nil
}

// Delete removes the selected positions. Removal runs from the highest index
// down so earlier removals never shift later targets.
func (s *Store) Delete(ctx context.Context, expr string) (Result, error) {
	sel := selector.Parse(expr, len(s.items))
	res := Result{Ignored: sel.Ignored}
	if sel.Empty() {
		return res, nil
	}
	err := s.mutate(ctx, "delete", func() {
		for _, idx := range sel.Descending() {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		}
	})
	if err != nil {
		return Result{}, err
	}
	res.Count = len(sel.Indices)
	return res, nil
}

// Patch carries the fields a bulk update changes; nil fields are left alone.
type Patch struct {
	Category *string
	Priority *model.Priority
	Due      *string
}

func (p Patch) IsEmpty() bool {
	return p.Category == nil && p.Priority == nil && p.Due == nil
}

// Update applies patch to every selected item. Count is the number of items
// with at least one field changed.
func (s *Store) Update(ctx context.Context, expr string, patch Patch) (Result, error) {
	sel := selector.Parse(expr, len(s.items))
	res := Result{Ignored: sel.Ignored}
	if sel.Empty() || patch.IsEmpty() {
		return res, nil
	}

	var (
		category string
		setCat   bool
		prio     model.Priority
		setPrio  bool
		due      time.Time
		setDue   bool
	)
	if patch.Category != nil && strings.TrimSpace(*patch.Category) != "" {
		category, setCat = strings.TrimSpace(*patch.Category), true
	}
	if patch.Priority != nil {
		if patch.Priority.IsValid() {
			prio, setPrio = *patch.Priority, true
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("priority %d out of range; unchanged", int(*patch.Priority)))
		}
	}
	if patch.Due != nil && strings.TrimSpace(*patch.Due) != "" {
		d, err := model.ParseDueDate(*patch.Due)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("due date %q is not YYYY-MM-DD; unchanged", *patch.Due))
		} else {
			due, setDue = d, true
		}
	}
	if !setCat && !setPrio && !setDue {
		return res, nil
	}

	changed := 0
	err := s.mutate(ctx, "update", func() {
		for _, idx := range sel.Indices {
			item := &s.items[idx]
			touched := false
			if setCat && item.Category != category {
				item.Category, touched = category, true
			}
			if setPrio && item.Priority != prio {
				item.Priority, touched = prio, true
			}
			if setDue && !item.Due.Equal(due) {
				item.Due, touched = due, true
			}
			if touched {
				changed++
			}
		}
	})
	if err != nil {
		return Result{}, err
	}
	res.Count = changed
	return res, nil
}

// mutate applies fn and persists the result. A failed save restores the
// collection to its state before fn ran.
func (s *Store) mutate(ctx context.Context, op string, fn func()) error {
	snapshot := s.Items()
	fn()
	if err := s.backend.Save(ctx, s.items); err != nil {
		s.items = snapshot
		s.logger.Error("save failed, changes rolled back", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrPersist, op, err)
	}
	s.logger.Debug("items saved", zap.String("op", op), zap.Int("count", len(s.items)))
	return nil
}
