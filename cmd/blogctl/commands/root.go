package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-blog-graph/config"
	"github.com/oksasatya/go-blog-graph/internal/application"
	pginfra "github.com/oksasatya/go-blog-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
	"github.com/oksasatya/go-blog-graph/pkg/validation"
)

var (
	// Global flags
	dsn        string
	verbose    bool
	jsonOutput bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Provisioning and maintenance for the blog backend",
	Long: `blogctl manages what the GraphQL API cannot: user accounts, the badge
catalogue, and database migrations.

Configuration is read from the same environment (and .env) as the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.Load()
		if dsn == "" {
			dsn = cfg.PostgresDSN()
		}
		validation.Init()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "db", "", "Database connection URL (defaults to DB_* settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func newLogger() *logrus.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return helpers.NewLogger("blogctl", cfg.Env, level)
}

// withAdmin opens the database for the duration of fn.
func withAdmin(ctx context.Context, fn func(context.Context, *application.AdminService) error) error {
	logger := newLogger()
	pool, err := pginfra.NewPool(ctx, dsn, pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	admin := application.NewAdminService(
		pginfra.NewUserRepository(pool),
		pginfra.NewAuthorRepository(pool),
		pginfra.NewBadgeRepository(pool),
		logger,
	)
	return fn(ctx, admin)
}
