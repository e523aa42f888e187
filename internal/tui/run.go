package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/due-process/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive bill browser and blocks until the user quits.
func Run(ctx context.Context, storage service.Storage) error {
	program := tea.NewProgram(NewModel(ctx, storage), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("bill browser failed: %w", err)
	}
	return nil
}
