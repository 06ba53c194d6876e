package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/adifpush/adifpush/internal/config"
)

var (
	initURL       string
	initAPIKey    string
	initStationID string
)

// configCmd groups configuration commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage adifpush configuration",
	Long: `Manage the adifpush configuration file.

The config lives at ~/.adifpush/config.toml (override with --config).`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the configuration file",
	Long: `Create the configuration file with defaults plus the Cloudlog
connection details given by the flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'adifpush config show' to view it, or delete it first to recreate", path)
		}

		cfg := config.Default()
		cfg.Cloudlog.URL = initURL
		cfg.Cloudlog.APIKey = initAPIKey
		cfg.Cloudlog.StationID = initStationID

		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("Configuration saved to %s\n", path)
		if cfg.Cloudlog.URL == "" {
			fmt.Println("Set cloudlog.url, cloudlog.api_key and cloudlog.station_id before uploading.")
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

func init() {
	configInitCmd.Flags().StringVar(&initURL, "url", "", "Cloudlog base URL (e.g. https://cloudlog.example.com)")
	configInitCmd.Flags().StringVar(&initAPIKey, "api-key", "", "Cloudlog API key")
	configInitCmd.Flags().StringVar(&initStationID, "station-id", "", "Cloudlog station profile ID")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
