package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adifpush/adifpush/internal/storage/sqlite"
)

var (
	historyLimit int
	historyCall  string
)

// historyCmd lists recent delivery attempts from the sqlite history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent upload attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Storage.Enabled {
			return fmt.Errorf("upload history is disabled (storage.enabled = false)")
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		history, err := sqlite.Open(cfg.Storage.Path, log)
		if err != nil {
			return err
		}
		defer history.Close()

		var records []*sqlite.UploadRecord
		if historyCall != "" {
			records, err = history.GetUploadsByCallsign(historyCall, historyLimit)
		} else {
			records, err = history.GetRecentUploads(historyLimit)
		}
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No upload attempts recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tCALL\tDATE\tTIME\tFREQ\tMODE\tOUTCOME\tERROR")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Callsign, r.QSODate, r.TimeOn, r.Freq, r.Mode, r.Outcome, r.Error)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum attempts to show")
	historyCmd.Flags().StringVar(&historyCall, "call", "", "only show attempts for this callsign")
	rootCmd.AddCommand(historyCmd)
}
