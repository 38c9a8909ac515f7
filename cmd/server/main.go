// Command server runs the REMS marketplace: the HTTP server plus its
// migrate and seed maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/config"
	"github.com/diewo77/go-rems/internal/db"
	"github.com/diewo77/go-rems/internal/logging"
)

var (
	cfg *config.Config
	log *logrus.Logger

	envFile string
)

var rootCmd = &cobra.Command{
	Use:           "rems",
	Short:         "Real estate marketplace server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is fine, the environment may already be set
		_ = godotenv.Load(envFile)
		cfg = config.Load()
		log = logging.New(cfg.App.LogLevel)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations completed")
		return nil
	},
}

var (
	seedDemo bool

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load permissions, the admin account and optionally demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			return seed(conn, seedDemo || cfg.Seed.Demo)
		},
	}
)

func seed(conn *gorm.DB, demo bool) error {
	if err := db.SeedPermissions(conn); err != nil {
		return err
	}
	admin, err := db.SeedAdmin(conn, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}
	if admin == nil {
		log.Warn("ADMIN_PASSWORD is empty, no admin account seeded")
	}
	if demo {
		if err := db.SeedDemo(conn); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
	}
	log.WithField("demo", demo).Info("seeding completed")
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading the configuration")
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "Also insert demo agents, listings and reviews")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default :$PORT)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	// no subcommand means serve
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"serve"})
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
