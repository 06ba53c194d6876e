package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adifpush/adifpush/internal/api"
	"github.com/adifpush/adifpush/internal/cloudlog"
	"github.com/adifpush/adifpush/internal/dedup"
	"github.com/adifpush/adifpush/internal/storage/sqlite"
	"github.com/adifpush/adifpush/internal/uploader"
	"github.com/adifpush/adifpush/internal/wsjtx"
	"github.com/adifpush/adifpush/pkg/logger"
)

// listenCmd runs the live pipeline until interrupted.
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Listen for WSJT-X contacts and upload them as they are logged",
	Long: `Join the WSJT-X UDP multicast group and upload every newly logged
contact to Cloudlog. Contacts already present in the dedup cache are
skipped. Runs until interrupted (Ctrl+C); the final accounting is printed
on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("run 'adifpush config init' first: %w", err)
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

		listener, err := wsjtx.Listen(cfg.WSJTX.MulticastGroup, cfg.WSJTX.Port, log)
		if err != nil {
			return err
		}
		defer listener.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Server.Enabled {
			router := api.NewRouter(up, history, listener.Addr(), cfg, log)
			server := api.NewServer(router, cfg.Server.Port, log)
			go func() {
				if err := server.Serve(ctx); err != nil {
					log.Error("Status API stopped", logger.Error(err))
				}
			}()
		}

		log.Info("Waiting for WSJT-X QSOs, Ctrl+C to stop",
			logger.String("cache", store.Path()),
			logger.Int("known_qsos", store.Len()),
		)

		summary, err := up.Drain(ctx, listener)
		printSummary(summary)
		return err
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
}
