package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adifpush/adifpush/internal/dedup"
)

// cacheCmd groups dedup cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the duplicate-detection cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cache location and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := dedup.Load(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Printf("Cache file: %s\n", store.Path())
		fmt.Printf("Uploaded QSOs remembered: %d\n", store.Len())
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every uploaded QSO",
	Long: `Empty the duplicate-detection cache. The next run will re-upload
every contact in its source. This cannot be undone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := dedup.Load(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		n := store.Len()
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Printf("Cleared %d remembered QSOs from %s\n", n, store.Path())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
