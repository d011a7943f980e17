package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/easyapply/internal/observability"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent application attempts from the ledger",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyDays int

func init() {
	historyCmd.Flags().IntVarP(&historyDays, "days", "d", 2, "How many days back to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", historyDays)
	}
	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return err
	}
	store, err := openStorage(cmd.Context(), cfg, false, commandLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	cutoff := time.Now().Add(-time.Duration(historyDays) * 24 * time.Hour)
	recs, err := store.ledger.Since(cmd.Context(), cutoff)
	if err != nil {
		return fmt.Errorf("failed to read application history: %w", err)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintHistory(recs)
	return nil
}
