package commands

import (
	"github.com/spf13/cobra"

	pginfra "github.com/oksasatya/go-blog-graph/internal/infrastructure/postgres"
)

var migrationsDir string

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back every migration`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pginfra.Migrate(dsn, migrationsPath(), false, newLogger())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pginfra.Migrate(dsn, migrationsPath(), true, newLogger())
	},
}

func migrationsPath() string {
	if migrationsDir != "" {
		return migrationsDir
	}
	return cfg.MigrationsDir
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "", "Directory for migration files (defaults to MIGRATIONS_DIR)")
}
