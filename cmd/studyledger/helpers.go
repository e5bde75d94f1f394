package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mshibata/studyledger/internal/config"
	"github.com/mshibata/studyledger/internal/database"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func openDatabase(ctx context.Context) (*sqlx.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := database.OpenWithRetry(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
