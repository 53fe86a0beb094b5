package main

import (
	"fmt"

	"github.com/sandeepkv93/tasklist/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back the SQLite schema at sqlite_path",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := storage.OpenSQLiteDB(a.cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer db.Close()

			switch args[0] {
			case "up":
				err = storage.MigrateUp(db)
			case "down":
				err = storage.MigrateDown(db)
			default:
				return fmt.Errorf("unknown direction %q (want up or down)", args[0])
			}
			if err != nil {
				return err
			}
			a.logger.Info("migration applied", zap.String("direction", args[0]), zap.String("path", a.cfg.SQLitePath))
			printf(cmd.OutOrStdout(), "migrate %s: ok (%s)\n", args[0], a.cfg.SQLitePath)
			return nil
		},
	}
}
