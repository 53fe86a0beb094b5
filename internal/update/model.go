package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sandeepkv93/tasklist/internal/scheduler"
	"github.com/sandeepkv93/tasklist/internal/store"
	"github.com/sandeepkv93/tasklist/internal/views"
)

type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeAdding    Mode = "adding"
	ModeFiltering Mode = "filtering"
	ModePalette   Mode = "palette"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Add      string
	Filter   string
	Palette  string
	Complete string
	Delete   string
	Sort     string
	Help     string
	Quit     string
}

type Model struct {
	Store       *store.Store
	Filter      string
	Mode        Mode
	Cursor      int
	Status      StatusBar
	HelpVisible bool
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	ctx          context.Context
	alerts       *scheduler.Engine
	itemTable    table.Model
	entryInput   textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// DataChangedMsg reports that the backing data changed outside the TUI. The
// store is reloaded on the UI goroutine when it arrives.
type DataChangedMsg struct{}

// DueAlertMsg carries an alert fired by the due-date scheduler.
type DueAlertMsg struct {
	Alert scheduler.DueAlert
}

func DefaultKeys() GlobalKeyMap {
	return GlobalKeyMap{
		Add:      "a",
		Filter:   "f",
		Palette:  "/",
		Complete: "x",
		Delete:   "d",
		Sort:     "s",
		Help:     "?",
		Quit:     "q",
	}
}

func NewModel(ctx context.Context, s *store.Store) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		Store: s,
		Mode:  ModeNormal,
		Keys:  DefaultKeys(),
		ctx:   ctx,
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	headers := views.ItemHeaders()
	widths := []int{4, 28, 14, 10, 11, 8}
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	m.itemTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(14))

	m.entryInput = textinput.New()
	m.entryInput.CharLimit = 512
	m.entryInput.Width = 60

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 512
	m.commandInput.Width = 60

	m.helpModel = help.New()
}

// visible returns the entries shown under the current filter.
func (m Model) visible() []store.Entry {
	if m.Store == nil {
		return nil
	}
	return m.Store.List(m.Filter)
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// Selected returns the highlighted entry, if any.
func (m Model) Selected() (store.Entry, bool) {
	entries := m.visible()
	if m.Cursor < 0 || m.Cursor >= len(entries) {
		return store.Entry{}, false
	}
	return entries[m.Cursor], true
}

// WithAlerts attaches a due-date scheduler. Alerts are rescheduled from the
// current items now and after every change to the list.
func (m Model) WithAlerts(engine *scheduler.Engine) Model {
	m.alerts = engine
	m.rescheduleAlerts()
	return m
}

func (m Model) rescheduleAlerts() {
	if m.alerts == nil || m.Store == nil {
		return
	}
	_ = m.alerts.Replace(scheduler.AlertsFor(m.Store.Items(), time.Now()))
}
