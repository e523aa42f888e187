package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/due-process/internal/cli"
	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// pipelineStages is the number of progress steps a full scan reports.
const pipelineStages = 11

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the inbox for credit card statements",
		Long: `Read recent messages, pick out credit card statement notifications,
extract the bill details, and reconcile them into the ledger.

Messages that already produced a bill are skipped, so repeated scans
are safe and cheap.

Examples:
  # Scan the last 30 days
  dues scan

  # Scan further back
  dues scan --days-back 90

  # Only statements for one card
  dues scan --last4 4521`,
		RunE: runScan,
	}

	cmd.Flags().StringP("last4", "l", "", "Only process statements for the card with these trailing digits")
	cmd.Flags().IntP("days-back", "d", 30, "How many days of messages to scan")

	_ = viper.BindPFlag("scan.last4", cmd.Flags().Lookup("last4"))
	_ = viper.BindPFlag("scan.days_back", cmd.Flags().Lookup("days-back"))

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	extractor, err := initExtractor()
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}
	defer extractor.Close()

	box, err := initInbox()
	if err != nil {
		return err
	}

	cfg := pipeline.DefaultConfig()
	if daysBack := viper.GetInt("scan.days_back"); daysBack > 0 {
		cfg.DaysBack = daysBack
	}

	p := pipeline.NewWithConfig(store, box, extractor, cfg)

	bar := cli.NewStageProgress(pipelineStages)
	opts := pipeline.Options{
		TargetTail: viper.GetString("scan.last4"),
		Progress: func(stage string) {
			bar.Describe(stage)
			_ = bar.Add(1)
		},
	}

	summary, err := p.Run(ctx, opts)
	_ = bar.Finish()
	if err != nil {
		if errors.Is(err, common.ErrPermissionDenied) {
			return fmt.Errorf("%s", cli.FormatError("inbox access denied; check that inbox.path points to a readable backup file"))
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	slog.Info("scan complete",
		"messages_scanned", summary.MessagesScanned,
		"statements", summary.Classified,
		"bills_added", summary.BillsAdded,
		"bills_updated", summary.BillsUpdated)

	if summary.BillsAdded == 0 && summary.BillsUpdated == 0 {
		fmt.Println(cli.FormatSuccess("Ledger already up to date."))
		return nil
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %d and updated %d bills.", summary.BillsAdded, summary.BillsUpdated)))
	return nil
}
