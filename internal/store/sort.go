package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sandeepkv93/tasklist/internal/model"
)

var ErrUnknownSortMode = errors.New("store: unknown sort mode")

type SortMode string

const (
	SortPriority        SortMode = "priority"
	SortPriorityDesc    SortMode = "priority-desc"
	SortDue             SortMode = "due"
	SortDueDesc         SortMode = "due-desc"
	SortPriorityThenDue SortMode = "priority-due"
)

func SortModes() []SortMode {
	return []SortMode{SortPriority, SortPriorityDesc, SortDue, SortDueDesc, SortPriorityThenDue}
}

func ParseSortMode(raw string) (SortMode, error) {
	v := SortMode(strings.ToLower(strings.TrimSpace(raw)))
	switch v {
	case SortPriority, SortPriorityDesc, SortDue, SortDueDesc, SortPriorityThenDue:
		return v, nil
	case "date":
		return SortDue, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortMode, raw)
	}
}

// SortToggle is the two-state policy behind repeated "sort" presses: each
// ToggleSort applies the current state and advances to the other one.
type SortToggle int

const (
	ToggleByPriorityThenDate SortToggle = iota
	ToggleByDateOnly
)

func (t SortToggle) Mode() SortMode {
	if t == ToggleByDateOnly {
		return SortDue
	}
	return SortPriorityThenDue
}

func (t SortToggle) Next() SortToggle {
	if t == ToggleByDateOnly {
		return ToggleByPriorityThenDate
	}
	return ToggleByDateOnly
}

func (t SortToggle) String() string {
	if t == ToggleByDateOnly {
		return "by-date-only"
	}
	return "by-priority-then-date"
}

// dueBefore orders dated items ascending and puts undated items after all
// of them.
func dueBefore(a, b model.Item) bool {
	if a.HasDue() != b.HasDue() {
		return a.HasDue()
	}
	return a.Due.Before(b.Due)
}

// lessFunc reports whether a must come before b under mode.
func lessFunc(mode SortMode) func(a, b model.Item) bool {
	switch mode {
	case SortPriority:
		return func(a, b model.Item) bool { return a.Priority < b.Priority }
	case SortPriorityDesc:
		return func(a, b model.Item) bool { return a.Priority > b.Priority }
	case SortDue:
		return dueBefore
	case SortDueDesc:
		return func(a, b model.Item) bool {
			// undated items stay at the end in both directions
			if a.HasDue() != b.HasDue() {
				return a.HasDue()
			}
			return a.Due.After(b.Due)
		}
	default:
		return func(a, b model.Item) bool {
			if a.Priority != b.Priority {
				return a.Priority < b.Priority
			}
			return dueBefore(a, b)
		}
	}
}

// Sort reorders the collection in place with a stable sort and persists it.
func (s *Store) Sort(ctx context.Context, mode SortMode) error {
	mode, err := ParseSortMode(string(mode))
	if err != nil {
		return err
	}
	less := lessFunc(mode)
	return s.mutate(ctx, "sort", func() {
		sort.SliceStable(s.items, func(i, j int) bool {
			return less(s.items[i], s.items[j])
		})
	})
}

// ToggleSort applies the current toggle policy and flips it for the next
// call. The toggle only advances when the sort was persisted.
func (s *Store) ToggleSort(ctx context.Context) (SortMode, error) {
	mode := s.toggle.Mode()
	if err := s.Sort(ctx, mode); err != nil {
		return "", err
	}
	s.toggle = s.toggle.Next()
	return mode, nil
}
