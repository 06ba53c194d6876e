package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adifpush/adifpush/internal/cloudlog"
	"github.com/adifpush/adifpush/internal/dedup"
	"github.com/adifpush/adifpush/internal/storage/sqlite"
	"github.com/adifpush/adifpush/internal/uploader"
)

// pushCmd uploads one ADIF log file.
var pushCmd = &cobra.Command{
	Use:   "push [file]",
	Short: "Upload an ADIF log file to Cloudlog",
	Long: `Upload the contacts of an ADIF log file to Cloudlog, skipping
anything already in the dedup cache. Without an argument the WSJT-X log
file for this platform (or wsjtx.log_path from the config) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("run 'adifpush config init' first: %w", err)
		}

		path := cfg.WSJTX.LogPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no log file given and no default WSJT-X log path found")
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := dedup.Load(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		var history *sqlite.UploadStorage
		if cfg.Storage.Enabled {
			history, err = sqlite.Open(cfg.Storage.Path, log)
			if err != nil {
				return err
			}
			defer history.Close()
		}

		client := cloudlog.NewClient(
			cfg.Cloudlog.URL,
			cfg.Cloudlog.APIKey,
			cfg.Cloudlog.StationID,
			time.Duration(cfg.Cloudlog.TimeoutSeconds)*time.Second,
			log,
		)
		up := uploader.New(store, client, history, log)

		summary, err := up.PushFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		printSummary(summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
