package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/due-process/internal/cli"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/service"
	"github.com/Veraticus/due-process/internal/tui"
	"github.com/spf13/cobra"
)

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Manage the bill ledger",
		Long:  `List, pay, and reopen bills tracked in the ledger.`,
	}

	cmd.AddCommand(billsListCmd())
	cmd.AddCommand(billsPayCmd())
	cmd.AddCommand(billsUnpayCmd())

	return cmd
}

func billsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills",
		RunE:  runBillsList,
	}

	cmd.Flags().StringP("card", "c", "", "Only bills for this card ID")
	cmd.Flags().BoolP("unpaid", "u", false, "Only unpaid bills")
	cmd.Flags().IntP("limit", "n", 0, "Limit the number of bills shown")
	cmd.Flags().BoolP("interactive", "i", false, "Browse bills interactively")

	return cmd
}

func runBillsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive {
		return tui.Run(ctx, store)
	}

	filter := service.BillFilter{}
	if cardID, _ := cmd.Flags().GetString("card"); cardID != "" {
		id := model.CardID(cardID)
		filter.CardID = &id
	}
	filter.UnpaidOnly, _ = cmd.Flags().GetBool("unpaid")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	bills, err := store.GetBills(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load bills: %w", err)
	}

	if len(bills) == 0 {
		fmt.Println(cli.FormatSuccess("No bills to show."))
		return nil
	}

	cards, err := store.GetCards(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cards: %w", err)
	}
	cardNames := make(map[model.CardID]string, len(cards))
	for _, card := range cards {
		cardNames[card.ID] = card.Name
	}

	fmt.Println(cli.FormatTitle("Bills"))
	for _, bill := range bills {
		due := "no due date"
		if bill.DueDate != nil {
			due = "due " + bill.DueDate.Format("2006-01-02")
		}
		name := cardNames[bill.CardID]
		if name == "" {
			name = "Card ending " + bill.CardLast4
		}
		status := cli.UnpaidStyle.Render("UNPAID")
		if bill.IsPaid {
			status = cli.PaidStyle.Render("PAID")
		}
		fmt.Printf("%s  %-28s %12s  %s  %s\n",
			bill.ID, name, cli.FormatAmount(bill.Amount), due, status)
	}

	return nil
}

func billsPayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <bill-id>",
		Short: "Mark a bill as paid",
		Long: `Mark a bill as paid. By default the full bill amount is recorded;
use --amount with --type custom for a partial payment, or --type
outstanding to record paying the card's whole outstanding balance.`,
		Args: cobra.ExactArgs(1),
		RunE: runBillsPay,
	}

	cmd.Flags().Float64P("amount", "a", 0, "Amount paid (defaults to the bill amount)")
	cmd.Flags().StringP("type", "t", string(model.PaidTypeBill), "Payment type (bill, outstanding, custom)")

	return cmd
}

func runBillsPay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	billID := model.BillID(args[0])
	bill, err := store.GetBillByID(ctx, billID)
	if err != nil {
		return fmt.Errorf("failed to find bill %s: %w", billID, err)
	}

	paidType := model.PaidType(cmd.Flags().Lookup("type").Value.String())
	switch paidType {
	case model.PaidTypeBill, model.PaidTypeOutstanding, model.PaidTypeCustom:
	default:
		return fmt.Errorf("invalid payment type %q: must be bill, outstanding, or custom", paidType)
	}

	amount, _ := cmd.Flags().GetFloat64("amount")
	if amount <= 0 {
		switch paidType {
		case model.PaidTypeCustom:
			return fmt.Errorf("a custom payment requires --amount")
		case model.PaidTypeOutstanding:
			card, cardErr := store.GetCardByID(ctx, bill.CardID)
			if cardErr != nil {
				return fmt.Errorf("failed to find card for bill: %w", cardErr)
			}
			amount = card.Outstanding
		default:
			amount = bill.Amount
		}
	}

	if err := store.MarkBillPaid(ctx, billID, amount, paidType, time.Now()); err != nil {
		return fmt.Errorf("failed to mark bill paid: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Marked %s paid (%s).", billID, cli.FormatAmount(amount))))
	return nil
}

func billsUnpayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpay <bill-id>",
		Short: "Reopen a paid bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			billID := model.BillID(args[0])
			if err := store.MarkBillUnpaid(ctx, billID); err != nil {
				return fmt.Errorf("failed to reopen bill: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Reopened %s.", billID)))
			return nil
		},
	}
}
