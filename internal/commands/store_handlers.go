package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/store"
)

// StoreHandlers binds every command to s. setFilter receives the keyword of
// find ("" for clear); it may be nil when the caller has no filter state.
func StoreHandlers(ctx context.Context, s *store.Store, setFilter func(string)) Handlers {
	if setFilter == nil {
		setFilter = func(string) {}
	}
	return Handlers{
		Add: func(a AddArgs) (Result, error) {
			prio, _ := parseOptionalPriority(a.Priority)
			res, err := s.Add(ctx, a.Titles, store.AddOptions{Category: a.Category, Priority: prio, Due: a.Due})
			if err != nil {
				return Result{}, err
			}
			return Result{Message: Describe("added", res)}, nil
		},
		Complete: func(a SelectArgs) (Result, error) {
			res, err := s.Complete(ctx, a.Selector)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: Describe("completed", res)}, nil
		},
		Delete: func(a SelectArgs) (Result, error) {
			res, err := s.Delete(ctx, a.Selector)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: Describe("deleted", res)}, nil
		},
		Update: func(a UpdateArgs) (Result, error) {
			patch, err := PatchFromAttrs(a.Attrs)
			if err != nil {
				return Result{}, err
			}
			res, err := s.Update(ctx, a.Selector, patch)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: Describe("updated", res)}, nil
		},
		Sort: func(a SortArgs) (Result, error) {
			if a.Mode == "" {
				mode, err := s.ToggleSort(ctx)
				if err != nil {
					return Result{}, err
				}
				return Result{Message: fmt.Sprintf("sorted by %s", mode)}, nil
			}
			mode, err := store.ParseSortMode(a.Mode)
			if err != nil {
				return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
			}
			if err := s.Sort(ctx, mode); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("sorted by %s", mode)}, nil
		},
		Find: func(a FindArgs) (Result, error) {
			setFilter(a.Keyword)
			return Result{Message: fmt.Sprintf("%d match(es) for %q", len(s.List(a.Keyword)), a.Keyword)}, nil
		},
		Clear: func() (Result, error) {
			setFilter("")
			return Result{Message: "filter cleared"}, nil
		},
	}
}

// PatchFromAttrs turns the textual attributes into a store patch.
func PatchFromAttrs(a Attrs) (store.Patch, error) {
	var patch store.Patch
	if a.Category != "" {
		cat := a.Category
		patch.Category = &cat
	}
	if a.Priority != "" {
		prio, err := parseOptionalPriority(a.Priority)
		if err != nil {
			return store.Patch{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
		}
		patch.Priority = &prio
	}
	if a.Due != "" {
		due := a.Due
		patch.Due = &due
	}
	return patch, nil
}

func parseOptionalPriority(raw string) (model.Priority, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return model.ParsePriority(raw)
}

// Describe renders a store result as a one-line status message.
func Describe(verb string, res store.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d item(s)", verb, res.Count)
	if len(res.Ignored) > 0 {
		fmt.Fprintf(&b, "; ignored %s", strings.Join(res.Ignored, ","))
	}
	for _, w := range res.Warnings {
		b.WriteString("; ")
		b.WriteString(w)
	}
	return b.String()
}

// IsUserError reports whether err came from parsing rather than storage.
func IsUserError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}
