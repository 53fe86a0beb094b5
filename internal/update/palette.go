package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasklist/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Mode = ModeNormal
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		raw := m.commandInput.Value()
		m.Mode = ModeNormal
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m = m.runCommand(raw)
	default:
		if text, ok := typedText(msg); ok {
			m.commandInput.SetValue(m.commandInput.Value() + text)
			m.commandInput.CursorEnd()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
	}
	return m
}

// runCommand parses and executes one command line against the store and
// reports the outcome on the status bar.
func (m Model) runCommand(raw string) Model {
	cmd, err := commands.Parse(strings.TrimSpace(raw))
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if m.Store == nil {
		m.Status = StatusBar{Text: "no store attached", IsError: true}
		return m
	}

	filter := m.Filter
	res, err := commands.Execute(cmd, commands.StoreHandlers(m.ctx, m.Store, func(keyword string) {
		filter = keyword
	}))
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if filter != m.Filter {
		m.Filter = filter
		m.Cursor = 0
	}
	m.clampCursor()
	m.rescheduleAlerts()
	m.Status = StatusBar{Text: res.Message}
	return m
}

func typedText(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes), true
	case tea.KeySpace:
		return " ", true
	default:
		return "", false
	}
}
