// crmctl is the operational CLI for the clinic CRM: schema migration and
// development seed data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/sharyyoru/medical-crm/internal/config"
	"github.com/sharyyoru/medical-crm/internal/logging"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "crmctl",
		Short: "Operational tooling for the clinic CRM",
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")

	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads the configuration and opens a pgx pool.
func connect(ctx context.Context) (*pgxpool.Pool, *logging.Logger, error) {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, logger, nil
}
