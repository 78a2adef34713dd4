package main

import (
	"fmt"

	"walink/internal/storage"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema of the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		backend, err := storage.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := backend.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", backend.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
