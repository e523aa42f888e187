package main

import (
	"fmt"
	"regexp"
	"time"

	"github.com/Veraticus/due-process/internal/cli"
	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/spf13/cobra"
)

var last4Re = regexp.MustCompile(`^\d{4}$`)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage cards",
		Long:  `List, add, and remove the credit cards tracked in the ledger.`,
	}

	cmd.AddCommand(cardsListCmd())
	cmd.AddCommand(cardsAddCmd())
	cmd.AddCommand(cardsRemoveCmd())

	return cmd
}

func cardsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			cards, err := store.GetCards(ctx)
			if err != nil {
				return fmt.Errorf("failed to load cards: %w", err)
			}

			if len(cards) == 0 {
				fmt.Println(cli.FormatSuccess("No cards yet. Add one with 'dues cards add'."))
				return nil
			}

			fmt.Println(cli.FormatTitle("Cards"))
			for _, card := range cards {
				tag := ""
				if card.IsPlaceholder {
					tag = cli.SubtleStyle.Render(" (placeholder)")
				}
				fmt.Printf("%s  %-28s %s  outstanding %s%s\n",
					card.ID, card.Name, card.MaskedNumber(), cli.FormatAmount(card.Outstanding), tag)
			}

			return nil
		},
	}
}

func cardsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name> <last4>",
		Short: "Add a card",
		Long: `Add a card to the ledger. If a scan previously created a placeholder
for the same trailing digits, the new card absorbs it: the
placeholder's bills carry over and the placeholder disappears.`,
		Args: cobra.ExactArgs(2),
		RunE: runCardsAdd,
	}

	cmd.Flags().Float64P("outstanding", "o", 0, "Current outstanding balance")

	return cmd
}

func runCardsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name, last4 := args[0], args[1]
	if !last4Re.MatchString(last4) {
		return fmt.Errorf("last4 must be exactly four digits, got %q", last4)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	outstanding, _ := cmd.Flags().GetFloat64("outstanding")

	cards, err := store.GetCards(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cards: %w", err)
	}

	// A placeholder with the same tail is promoted in place so its bills
	// stay attached.
	for _, existing := range cards {
		if existing.Last4 != last4 {
			continue
		}
		if !existing.IsPlaceholder {
			return fmt.Errorf("%w: a card ending %s already exists: %s", common.ErrDuplicateEntry, last4, existing.Name)
		}

		promoted := existing
		promoted.Name = name
		promoted.IsPlaceholder = false
		if outstanding > 0 {
			promoted.Outstanding = outstanding
		}
		if err := store.SaveCard(ctx, &promoted); err != nil {
			return fmt.Errorf("failed to promote placeholder: %w", err)
		}

		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s, absorbing placeholder %s.", name, existing.ID)))
		return nil
	}

	card := model.Card{
		ID:          model.NewCardID(),
		Name:        name,
		Last4:       last4,
		Outstanding: outstanding,
		CreatedAt:   time.Now(),
	}
	if err := store.SaveCard(ctx, &card); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s (%s).", name, card.MaskedNumber())))
	return nil
}

func cardsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <card-id>",
		Short: "Remove a card and its bills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			cardID := model.CardID(args[0])
			if err := store.DeleteCard(ctx, cardID); err != nil {
				return fmt.Errorf("failed to remove card: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Removed %s.", cardID)))
			return nil
		},
	}
}
