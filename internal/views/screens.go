package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/store"
)

var itemHeaders = []string{"#", "Title", "Category", "Priority", "Due", "Status"}

type ItemsPanelData struct {
	TableView string
	Filter    string
	SortLabel string
	Shown     int
	Total     int
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

// ItemRow is the display form of an entry shared by the TUI table and the
// CLI listing.
func ItemRow(e store.Entry) []string {
	return []string{
		strconv.Itoa(e.Position),
		e.Title,
		e.Category,
		e.Priority.String(),
		e.DueString(),
		string(e.Status),
	}
}

func ItemHeaders() []string {
	out := make([]string, len(itemHeaders))
	copy(out, itemHeaders)
	return out
}

func RenderItemsPanel(data ItemsPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("items: %d/%d", data.Shown, data.Total))
	if data.Filter != "" {
		b.WriteString(fmt.Sprintf(" | filter: %q", data.Filter))
	}
	if data.SortLabel != "" {
		b.WriteString(" | next sort: " + data.SortLabel)
	}
	b.WriteString("\n")
	if data.Total == 0 {
		b.WriteString("(no items yet, press [a] to add one)")
		return b.String()
	}
	if data.Shown == 0 {
		b.WriteString("(nothing matches the filter, press [f] then enter to clear)")
		return b.String()
	}
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderHelpPanel(data HelpPanelData) string {
	md := "## Keys\n\n" + strings.Join(data.Bindings, "\n") +
		"\n\n## Palette\n\n" +
		"- `add <title>[;<title>...] [cat:X] [prio:N] [due:YYYY-MM-DD]`\n" +
		"- `done <sel>` / `delete <sel>`\n" +
		"- `update <sel> [cat:X] [prio:N] [due:D]`\n" +
		"- `sort [priority|priority-desc|due|due-desc|priority-due]`\n" +
		"- `find <keyword>` / `clear`\n\n" +
		"Selectors look like `1,3,5-7`.\n"
	out := RenderMarkdown(md)
	if data.HelpView != "" {
		out += "\n" + data.HelpView
	}
	return out
}

// RenderItemTable renders entries as a bordered table for terminal output.
func RenderItemTable(entries []store.Entry) string {
	if len(entries) == 0 {
		return "no items"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ItemRow(e))
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(itemHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(entries) {
				return base
			}
			e := entries[row]
			switch {
			case e.IsDone():
				return base.Inherit(doneStyle)
			case col == 3 && e.Priority == model.PriorityUrgent:
				return base.Inherit(urgentStyle)
			}
			return base
		})
	return t.String()
}
