package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
)

// Import appends one item per line of r. Each line is
// "title,category,priority,due"; only the title is required. Blank lines and
// lines starting with '#' are skipped. A bad priority falls back to the
// default and a bad due date is dropped, each with a warning. The whole
// batch is persisted once.
func (s *Store) Import(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	var batch []model.Item
	now := s.createdAt()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item, warnings, ok := parseImportLine(line)
		for _, w := range warnings {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %s", lineNo, w))
		}
		if !ok {
			continue
		}
		item.CreatedAt = now
		batch = append(batch, item)
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read import: %w", err)
	}
	if len(batch) == 0 {
		return res, nil
	}

	if err := s.mutate(ctx, "import", func() {
		s.items = append(s.items, batch...)
	}); err != nil {
		return Result{}, err
	}
	res.Count = len(batch)
	return res, nil
}

func parseImportLine(line string) (model.Item, []string, bool) {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	title := parts[0]
	if title == "" {
		return model.Item{}, []string{"missing title, line skipped"}, false
	}

	var warnings []string
	category := ""
	if len(parts) > 1 {
		category = parts[1]
	}
	prio := model.DefaultPriority
	if len(parts) > 2 && parts[2] != "" {
		p, err := model.ParsePriority(parts[2])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("priority %q invalid, using %d", parts[2], int(model.DefaultPriority)))
		} else {
			prio = p
		}
	}
	var due time.Time
	if len(parts) > 3 && parts[3] != "" {
		d, err := model.ParseDueDate(parts[3])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("due date %q invalid, saved without a due date", parts[3]))
		} else {
			due = d
		}
	}
	return model.New(title, category, prio, due), warnings, true
}
