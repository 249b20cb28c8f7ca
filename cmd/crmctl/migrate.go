package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	schemaFile := "migrations/schema.sql"

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, logger, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			schema, err := os.ReadFile(schemaFile)
			if err != nil {
				return fmt.Errorf("failed to read schema file: %w", err)
			}

			if _, err := pool.Exec(ctx, string(schema)); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}

			logger.Info("Schema applied", "file", schemaFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaFile, "schema", schemaFile, "Path to schema file")
	return cmd
}
