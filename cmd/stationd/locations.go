package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filament-station/config"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Print the configured location QR payloads",
	Long: `Prints each configured storage location with its QR payload, for
generating and printing the location labels.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(resolveConfigPath())
		if err != nil {
			return err
		}

		if len(cfg.Station.Locations) == 0 {
			fmt.Println("(No locations configured yet)")
			return nil
		}
		for _, loc := range cfg.Station.Locations {
			fmt.Printf("%s: %s\n", loc.Name, loc.QR)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}
