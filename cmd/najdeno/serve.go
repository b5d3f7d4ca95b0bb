package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server. A missing database is created first, together with
an admin account whose password is printed once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringP("addr", "a", ":8080", "listen address")
	bindFlag(serveCmd, config.KeyAddr, "addr")
}

func serve(ctx context.Context) error {
	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DB); os.IsNotExist(err) {
		password, err := initDatabase(ctx, cfg.DB, cfg.Admin.Email)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		printInitResult(os.Stdout, cfg.DB, cfg.Admin.Email, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	// Idempotent; applies migrations added since the database was created.
	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DB)

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret, err = store.New(database).JWTSecret(ctx)
		if err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: api.NewRouter(database, jwtSecret, api.Options{
			Version:       version,
			TokenTTL:      cfg.JWT.Expiration,
			CORSOrigins:   cfg.CORS.Origins,
			AuthPerMinute: cfg.RateLimit.AuthPerMinute,
			MaxUpload:     cfg.Upload.MaxBytes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "version", version)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
