package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mshibata/studyledger/internal/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateDownCommand())
	return cmd
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			if err := database.MigrateUp(db); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func newMigrateDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			if err := database.MigrateDown(db); err != nil {
				return fmt.Errorf("failed to roll back migration: %w", err)
			}
			fmt.Println("migration rolled back")
			return nil
		},
	}
}
