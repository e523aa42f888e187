package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/due-process/internal/cli"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/ofx"
	"github.com/Veraticus/due-process/internal/pipeline"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import card statement balances from OFX/QFX files",
		Long: `Import credit card statement balances from OFX or QFX (Quicken) files
exported from your bank. Imported balances flow through the same
linking and reconciliation as scanned statements.

Examples:
  # Import a single file
  dues import-ofx ~/Downloads/hdfc_march.qfx

  # Import everything in a directory
  dues import-ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, statErr := os.Stat(pattern); statErr == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("importing OFX files", "file_count", len(allFiles))

	parser := ofx.NewParser()
	var facts []model.ValidatedBillFact

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		statements, err := parser.ParseFile(f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}

		if len(statements) == 0 {
			slog.Warn("No card statements found in file", "file", filepath.Base(filePath))
			continue
		}

		for _, stmt := range statements {
			facts = append(facts, stmt.Fact())
		}
		slog.Info("parsed statements", "file", filepath.Base(filePath), "statements", len(statements))
	}

	if len(facts) == 0 {
		return fmt.Errorf("no card statements found in any file")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	summary, err := pipeline.NewIngestor(store).Ingest(ctx, facts)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d statements: %d bills added, %d updated.",
		len(facts), summary.BillsAdded, summary.BillsUpdated)))
	return nil
}
