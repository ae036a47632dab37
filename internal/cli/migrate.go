package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deskline/support-portal/internal/persistence"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQL migrations",
	Long:  `Apply every migration file in the migrations directory in name order. Statements are idempotent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
		if pg.PoolHandle() == nil {
			return fmt.Errorf("POSTGRES_DSN is required")
		}
		if err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), migrationDir(), logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
		return nil
	},
}

var migrateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the migration files that would run",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := persistence.MigrationFiles(migrationDir())
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No migrations found.")
			return nil
		}
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", filepath.Base(f))
		}
		return nil
	},
}

func migrationDir() string {
	if migrationsDir != "" {
		return migrationsDir
	}
	return cfg.Postgres.MigrationsDir
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "migrations directory (defaults to postgres.migrations_dir)")
	migrateCmd.AddCommand(migrateListCmd)
}
