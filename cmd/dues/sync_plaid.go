package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/due-process/internal/cli"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/pipeline"
	"github.com/Veraticus/due-process/internal/plaid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func syncPlaidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-plaid",
		Short: "Sync card liabilities from Plaid",
		Long: `Fetch credit card liabilities (statement balances, minimum payments,
and due dates) from Plaid and reconcile them into the ledger.

Requires plaid.client_id, plaid.secret, and plaid.access_token in the
config file, or the DUES_PLAID_* environment variables.`,
		RunE: runSyncPlaid,
	}
}

func runSyncPlaid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := plaid.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
	}
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}

	client, err := plaid.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	slog.Info("fetching card liabilities from Plaid", "environment", cfg.Environment)

	liabilities, err := client.GetCardLiabilities(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch liabilities: %w", err)
	}

	if len(liabilities) == 0 {
		fmt.Println(cli.FormatSuccess("No credit card liabilities found."))
		return nil
	}

	facts := make([]model.ValidatedBillFact, 0, len(liabilities))
	for _, liability := range liabilities {
		facts = append(facts, liability.Fact())
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	summary, err := pipeline.NewIngestor(store).Ingest(ctx, facts)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Synced %d cards: %d bills added, %d updated.",
		len(liabilities), summary.BillsAdded, summary.BillsUpdated)))
	return nil
}
