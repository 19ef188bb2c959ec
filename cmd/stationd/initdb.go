package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filament-station/config"
	"filament-station/internal/db"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database schema and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(resolveConfigPath())
		if err != nil {
			return err
		}

		if _, err := db.Init(&cfg.Database); err != nil {
			return err
		}
		fmt.Printf("Initialized %s database at: %s\n", cfg.Database.Driver, cfg.Database.DSN)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
