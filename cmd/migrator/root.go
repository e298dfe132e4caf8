package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/student-toolkit/db/migrations"
	"github.com/gokatarajesh/student-toolkit/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "migrator",
	Short:         "Database and developer tooling for the student toolkit API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(upCmd, downCmd, statusCmd, seedCmd, tokenCmd)
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *sql.DB) error {
			if err := goose.UpContext(cmd.Context(), db, "."); err != nil {
				return fmt.Errorf("run migrations up: %w", err)
			}
			log.Info().Msg("migrations applied successfully")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *sql.DB) error {
			if err := goose.DownContext(cmd.Context(), db, "."); err != nil {
				return fmt.Errorf("run migrations down: %w", err)
			}
			log.Info().Msg("migrations rolled back successfully")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *sql.DB) error {
			return goose.StatusContext(cmd.Context(), db, ".")
		})
	},
}

// withDB opens Postgres through the pgx stdlib driver and points goose at the
// embedded migrations.
func withDB(fn func(db *sql.DB) error) error {
	pg, err := config.LoadSection[config.Postgres]()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", pg.DSN())
	if err != nil {
		return fmt.Errorf("open database connection: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("host", pg.Host).
		Int("port", pg.Port).
		Str("database", pg.Database).
		Msg("connected to database")

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName("goose_db_version")
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return fn(db)
}
