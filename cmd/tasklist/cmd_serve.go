package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sandeepkv93/tasklist/internal/api"
	"github.com/sandeepkv93/tasklist/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the list over HTTP under /api",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.ListenAddr = addr
			}
			return a.serve(cmd.Context(), !noWatch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the data file changes on disk")
	return cmd
}

func (a *app) serve(ctx context.Context, watchFile bool) error {
	s, err := a.loadStore(ctx)
	if err != nil {
		return err
	}
	if a.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers := api.NewHandlers(s, a.logger)
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           api.NewRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if path, ok := watchPath(a.cfg); ok && watchFile {
		w, err := watch.New(path, func(ctx context.Context) {
			if err := handlers.Reload(ctx); err != nil {
				a.logger.Error("reload after file change failed", zap.Error(err))
				return
			}
			a.logger.Info("reloaded items after file change", zap.String("path", path))
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

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
