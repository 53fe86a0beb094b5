package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasklist/internal/scheduler"
	"github.com/sandeepkv93/tasklist/internal/update"
	"github.com/sandeepkv93/tasklist/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI (the default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

// runTUI keeps going when the initial load fails: the list starts empty and
// the error is shown on the status bar.
func (a *app) runTUI(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := a.openStore()
	if err != nil {
		return err
	}
	m := update.NewModel(ctx, s)
	if loadErr := s.Load(ctx); loadErr != nil {
		a.logger.Error("initial load failed", zap.Error(loadErr))
		next, _ := m.Update(update.AppErrorMsg{Err: fmt.Errorf("load items: %w", loadErr)})
		m = next.(update.Model)
	}

	alerts := scheduler.NewEngine(32)
	alerts.Start()
	defer alerts.Stop()
	m = m.WithAlerts(alerts)

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		for alert := range alerts.C() {
			program.Send(update.DueAlertMsg{Alert: alert})
		}
	}()

	if path, ok := watchPath(a.cfg); ok {
		w, err := watch.New(path, func(context.Context) {
			program.Send(update.DataChangedMsg{})
		}, watch.Options{Logger: a.logger})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			a.logger.Warn("file watch disabled", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tasklist ui failed: %w", err)
	}
	return nil
}
