package cmd

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/movieapi/internal/config"
	"github.com/templui/movieapi/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the movies schema",
	}

	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", db.RunMigrations),
		migrateStep("down", "Roll back the latest migration", db.MigrateDown),
		migrateStep("status", "Show applied migrations", db.MigrationStatus),
	)
	return cmd
}

func migrateStep(use, short string, step func(database *sql.DB, driver string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			database, err := connect(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			return step(database.DB, cfg.DBDriver)
		},
	}
}

// connect opens the configured datastore and refuses to continue when it is unreachable
func connect(cfg *config.Config) (*sqlx.DB, error) {
	dsn, err := db.DSN(db.Params{
		Driver:     cfg.DBDriver,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		Name:       cfg.DBName,
		Connection: cfg.DBConnection,
	})
	if err != nil {
		return nil, err
	}

	database, err := db.Init(cfg.DBDriver, dsn)
	var unavailable *db.UnavailableError
	if errors.As(err, &unavailable) {
		_ = database.Close()
		return nil, fmt.Errorf("database %s unreachable: %w", cfg.DBDriver, err)
	}
	return database, err
}
