package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid item status")
	ErrInvalidPriority = errors.New("model: invalid item priority")
	ErrInvalidDueDate  = errors.New("model: invalid due date")
)

const (
	DefaultCategory = "uncategorized"
	DueDateLayout   = "2006-01-02"
	CreatedAtLayout = "2006-01-02 15:04:05"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDone:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the canonical names and the single-character markers
// older data files used.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pending", "todo", "未":
		return StatusPending, nil
	case "done", "完":
		return StatusDone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

type Priority int

const (
	PriorityUrgent Priority = 1
	PriorityHigh   Priority = 2
	PriorityMedium Priority = 3
	PriorityLow    Priority = 4

	DefaultPriority = PriorityMedium
)

func (p Priority) IsValid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

func (p Priority) Label() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

func (p Priority) String() string {
	return fmt.Sprintf("%d-%s", int(p), p.Label())
}

// ParsePriority accepts a number 1-4 or one of the labels.
func ParsePriority(raw string) (Priority, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "urgent":
		return PriorityUrgent, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !Priority(n).IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return Priority(n), nil
}

// ParseDueDate parses a YYYY-MM-DD date. An empty string yields the zero
// time and no error.
func ParseDueDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(DueDateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, raw)
	}
	return d, nil
}

type Item struct {
	Title     string
	Category  string
	Priority  Priority
	Due       time.Time
	Status    Status
	CreatedAt time.Time
}

// New returns a pending item with defaults filled in for an empty category
// or an out-of-range priority.
func New(title, category string, priority Priority, due time.Time) Item {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	if !priority.IsValid() {
		priority = DefaultPriority
	}
	return Item{
		Title:    strings.TrimSpace(title),
		Category: category,
		Priority: priority,
		Due:      due,
		Status:   StatusPending,
	}
}

func (i Item) HasDue() bool { return !i.Due.IsZero() }

func (i Item) IsDone() bool { return i.Status == StatusDone }

// DueString is the YYYY-MM-DD form of the due date, or "" when unset.
func (i Item) DueString() string {
	if !i.HasDue() {
		return ""
	}
	return i.Due.Format(DueDateLayout)
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return errors.New("model: item title is required")
	}
	if !i.Priority.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, int(i.Priority))
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, i.Status)
	}
	return nil
}
