package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stationd",
	Short: "Filament station kiosk daemon",
	Long: `stationd runs the filament station kiosk: it watches a webcam for
spool and location QR codes, records weights and moves in a local database,
and serves the touchscreen front-end over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the config file (default $FS_CONF_PATH, then ./config/config.yaml)")
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv("FS_CONF_PATH"); p != "" {
		return p
	}
	return "./config/config.yaml"
}
