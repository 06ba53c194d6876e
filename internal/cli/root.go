// Package cli implements the adifpush command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adifpush/adifpush/internal/config"
	"github.com/adifpush/adifpush/internal/uploader"
	"github.com/adifpush/adifpush/pkg/logger"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "adifpush",
	Short: "Upload WSJT-X QSO logs to Cloudlog with duplicate detection",
	Long: `adifpush uploads amateur-radio contacts to a Cloudlog logbook.

It ingests QSOs from the live WSJT-X UDP multicast stream or from an ADIF
log file, remembers what has already been uploaded in a durable local
cache, and delivers each new contact exactly once. Re-running against the
same log never produces duplicate uploads.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("adifpush v1.0.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.adifpush/config.toml)")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config path and loads it.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// newLogger builds the process logger from the logging config.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// printSummary renders the final run accounting.
func printSummary(s uploader.Summary) {
	fmt.Printf("Delivered: %d  Failed: %d  Skipped: %d  Malformed: %d\n",
		s.Delivered, s.Failed, s.Skipped, s.Malformed)
}
