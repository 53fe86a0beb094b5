package update

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasklist/internal/storage"
	"github.com/sandeepkv93/tasklist/internal/views"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModePalette:
			return m.handlePaletteKey(typed), nil
		case ModeAdding, ModeFiltering:
			return m.handleEntryKey(typed), nil
		}
		return m.handleNormalKey(typed)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case DueAlertMsg:
		text := "due today: " + typed.Alert.Title
		if typed.Alert.Category != "" {
			text += " (" + typed.Alert.Category + ")"
		}
		m.Status = StatusBar{Text: text}
		return m, nil
	case DataChangedMsg:
		if m.Store == nil {
			return m, nil
		}
		before, _ := storage.EncodeItems(m.Store.Items())
		if err := m.Store.Reload(m.ctx); err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: "reload failed: " + err.Error(), IsError: true}
			return m, nil
		}
		m.clampCursor()
		m.rescheduleAlerts()
		// Our own saves come back as change events too.
		if after, _ := storage.EncodeItems(m.Store.Items()); !bytes.Equal(before, after) {
			m.Status = StatusBar{Text: "reloaded from storage"}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
	case m.Keys.Palette:
		m.Mode = ModePalette
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	case m.Keys.Add:
		m.openEntry(ModeAdding, "add> ", "")
	case m.Keys.Filter:
		m.openEntry(ModeFiltering, "filter> ", m.Filter)
	case m.Keys.Complete:
		m = m.actOnSelected("done")
	case m.Keys.Delete:
		m = m.actOnSelected("delete")
	case m.Keys.Sort:
		m = m.runCommand("sort")
	case "j", "down":
		m.Cursor++
		m.clampCursor()
	case "k", "up":
		m.Cursor--
		m.clampCursor()
	case "g", "home":
		m.Cursor = 0
	case "G", "end":
		m.Cursor = len(m.visible()) - 1
		m.clampCursor()
	case "esc":
		if m.Filter != "" {
			m.Filter = ""
			m.Cursor = 0
			m.Status = StatusBar{Text: "filter cleared"}
		}
	}
	return m, nil
}

func (m *Model) openEntry(mode Mode, prompt, value string) {
	m.Mode = mode
	m.entryInput.Prompt = prompt
	m.entryInput.SetValue(value)
	m.entryInput.CursorEnd()
	m.entryInput.Focus()
}

func (m Model) closeEntry() Model {
	m.Mode = ModeNormal
	m.entryInput.SetValue("")
	m.entryInput.Blur()
	return m
}

func (m Model) handleEntryKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m = m.closeEntry()
		m.Status = StatusBar{Text: "cancelled"}
		return m
	case "enter":
		value := strings.TrimSpace(m.entryInput.Value())
		mode := m.Mode
		m = m.closeEntry()
		if mode == ModeFiltering {
			m.Filter = value
			m.Cursor = 0
			if value == "" {
				m.Status = StatusBar{Text: "filter cleared"}
			} else {
				m.Status = StatusBar{Text: fmt.Sprintf("%d match(es) for %q", len(m.visible()), value)}
			}
			return m
		}
		if value == "" {
			m.Status = StatusBar{Text: "nothing to add", IsError: true}
			return m
		}
		return m.runCommand("add " + value)
	}
	if text, ok := typedText(msg); ok {
		m.entryInput.SetValue(m.entryInput.Value() + text)
		m.entryInput.CursorEnd()
		return m
	}
	var cmd tea.Cmd
	m.entryInput, cmd = m.entryInput.Update(msg)
	_ = cmd
	return m
}

// actOnSelected runs verb against the highlighted row's position in the
// full collection, which differs from the cursor while a filter is active.
func (m Model) actOnSelected(verb string) Model {
	entry, ok := m.Selected()
	if !ok {
		m.Status = StatusBar{Text: "no item selected", IsError: true}
		return m
	}
	return m.runCommand(fmt.Sprintf("%s %d", verb, entry.Position))
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	entries := m.visible()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row(views.ItemRow(e)))
	}
	m.itemTable.SetRows(rows)
	if m.Cursor < len(rows) {
		m.itemTable.SetCursor(m.Cursor)
	}

	total := 0
	sortLabel := ""
	if m.Store != nil {
		total = m.Store.Len()
		sortLabel = m.Store.SortToggle().String()
	}
	left := views.RenderItemsPanel(views.ItemsPanelData{
		TableView: m.itemTable.View(),
		Filter:    m.Filter,
		SortLabel: sortLabel,
		Shown:     len(entries),
		Total:     total,
	})

	input := ""
	switch m.Mode {
	case ModeAdding, ModeFiltering:
		input = m.entryInput.View()
	case ModePalette:
		input = m.commandInput.View()
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("tasklist | mode: %s", m.Mode),
		LeftPane:   left,
		RightPane:  m.renderHelpIfVisible(),
		InputLine:  input,
		StatusLine: status,
		StatusErr:  m.Status.IsError,
		Footer: fmt.Sprintf("keys: %s add | %s filter | %s done | %s delete | %s sort | %s cmd | %s help | %s quit",
			m.Keys.Add, m.Keys.Filter, m.Keys.Complete, m.Keys.Delete, m.Keys.Sort, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}
