package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/due-process/internal/cli"
	"github.com/Veraticus/due-process/internal/service"
	"github.com/Veraticus/due-process/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to Google Sheets",
		Long: `Export all cards and bills to a Google Sheets spreadsheet.

Authentication uses either a service account key
(GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH) or OAuth2 credentials
(GOOGLE_SHEETS_CLIENT_ID, GOOGLE_SHEETS_CLIENT_SECRET,
GOOGLE_SHEETS_REFRESH_TOKEN). Set GOOGLE_SHEETS_SPREADSHEET_ID to
reuse an existing spreadsheet; otherwise a new one is created.`,
		RunE: runExport,
	}

	cmd.Flags().Bool("no-formatting", false, "Skip spreadsheet formatting")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := sheets.DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}
	if noFormat, _ := cmd.Flags().GetBool("no-formatting"); noFormat {
		cfg.EnableFormatting = false
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	cards, err := store.GetCards(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cards: %w", err)
	}
	bills, err := store.GetBills(ctx, service.BillFilter{})
	if err != nil {
		return fmt.Errorf("failed to load bills: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	if err := writer.Write(ctx, cards, bills); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d cards and %d bills.", len(cards), len(bills))))
	return nil
}
