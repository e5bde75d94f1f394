package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mshibata/studyledger/internal/analytics"
	"github.com/mshibata/studyledger/internal/bootstrap"
	"github.com/mshibata/studyledger/internal/config"
	"github.com/mshibata/studyledger/internal/database"
	"github.com/mshibata/studyledger/internal/goal"
	"github.com/mshibata/studyledger/internal/note"
	"github.com/mshibata/studyledger/internal/resource"
	"github.com/mshibata/studyledger/internal/rollup"
	"github.com/mshibata/studyledger/internal/server"
	"github.com/mshibata/studyledger/internal/session"
	"github.com/mshibata/studyledger/internal/task"
)

var configFile string

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "studyledger-server",
		Short:         "Study ledger HTTP API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})),
	)
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	db, err := database.OpenWithRetry(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return db.Close()
	})

	if cfg.Database.MigrateOnStart {
		if err := database.MigrateUp(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	taskService := task.NewService(db, cfg.Analytics.DailyTargetMinutes)
	goalService := goal.NewService(db)
	aggregator := analytics.NewAggregator(
		rollup.NewDBRepository(db),
		goal.NewDBRepository(db),
		session.NewDBRepository(db),
	)

	handler, err := server.New(
		taskService,
		goalService,
		note.NewDBRepository(db),
		resource.NewDBRepository(db),
		aggregator,
	)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	mux := server.AuthMiddleware(handler.Routes())
	chain := server.CORSMiddleware(server.LoggingMiddleware(mux), cfg.Server.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h2c.NewHandler(chain, &http2.Server{}),
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
