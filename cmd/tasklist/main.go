package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/tasklist/internal/config"
	"github.com/sandeepkv93/tasklist/internal/logging"
	"github.com/sandeepkv93/tasklist/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the state shared by every subcommand once the root's
// PersistentPreRunE has resolved configuration and logging.
type app struct {
	configPath string
	overrides  overrides

	cfg    config.Config
	logger *zap.Logger

	store        *store.Store
	closeBackend func() error
}

type overrides struct {
	backend       string
	dataFile      string
	sqlitePath    string
	delimiter     string
	caseSensitive bool
	logLevel      string
	logFormat     string
	logFile       string
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "tasklist",
		Short: "A small to-do list with a terminal UI, a CLI and an HTTP API",
		Long: `tasklist keeps an ordered list of to-do items with a category, a
priority (1 urgent .. 4 low), an optional due date and a done flag.

Run without arguments to open the terminal UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (default: ./tasklist.toml or the user config dir)")
	pf.StringVar(&a.overrides.backend, "backend", "", "storage backend: json, sqlite or github")
	pf.StringVarP(&a.overrides.dataFile, "data-file", "f", "", "JSON data file")
	pf.StringVar(&a.overrides.sqlitePath, "sqlite-path", "", "SQLite database file")
	pf.StringVar(&a.overrides.delimiter, "delimiter", "", "separator for batch titles")
	pf.BoolVar(&a.overrides.caseSensitive, "case-sensitive", false, "match search keywords case-sensitively")
	pf.StringVar(&a.overrides.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.overrides.logFormat, "log-format", "", "console or json")
	pf.StringVar(&a.overrides.logFile, "log-file", "", "write logs to this file")

	root.AddCommand(
		a.newAddCmd(),
		a.newListCmd(),
		a.newDoneCmd(),
		a.newDeleteCmd(),
		a.newUpdateCmd(),
		a.newSortCmd(),
		a.newImportCmd(),
		a.newExecCmd(),
		a.newTUICmd(),
		a.newServeCmd(),
		a.newMigrateCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = a.applyOverrides(cmd, cfg)
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	opts := logging.Options{Level: a.cfg.LogLevel, Format: a.cfg.LogFormat, File: a.cfg.LogFile}
	var logger *zap.Logger
	if isTerminalUI(cmd) {
		logger, err = logging.ForTerminalUI(opts)
	} else {
		logger, err = logging.New(opts)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) applyOverrides(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = config.Backend(a.overrides.backend)
	}
	if flags.Changed("data-file") {
		cfg.DataFile = a.overrides.dataFile
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = a.overrides.sqlitePath
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = a.overrides.delimiter
	}
	if flags.Changed("case-sensitive") {
		cfg.CaseSensitiveSearch = a.overrides.caseSensitive
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.overrides.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.overrides.logFormat
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.overrides.logFile
	}
	return cfg
}

func (a *app) teardown() {
	if a.closeBackend != nil {
		if err := a.closeBackend(); err != nil {
			a.logger.Warn("close backend", zap.Error(err))
		}
		a.closeBackend = nil
	}
	_ = a.logger.Sync()
}

func isTerminalUI(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

// loadStore opens the configured backend and loads the list. A load failure
// is returned so one-shot commands never overwrite data they could not read.
func (a *app) loadStore(ctx context.Context) (*store.Store, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return s, nil
}

func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	backend, closer, err := openBackend(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.closeBackend = closer
	a.store = store.New(backend, store.Options{
		Delimiter:     a.cfg.Delimiter,
		CaseSensitive: a.cfg.CaseSensitiveSearch,
		Logger:        a.logger,
	})
	return a.store, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
