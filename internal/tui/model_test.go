package tui

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/due-process/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelRendersLoadedBills(t *testing.T) {
	m := NewModel(context.Background(), nil)

	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	msg := billsLoadedMsg{
		bills: []model.BillRecord{
			{ID: "bill-1", CardID: "card-1", DueDate: &due, Amount: 8500, MinDue: 425},
			{ID: "bill-2", CardID: "card-2", CardLast4: "9876", Amount: 1500, IsPaid: true},
		},
		cards: map[model.CardID]model.Card{
			"card-1": {ID: "card-1", Name: "HDFC Regalia", Last4: "4521"},
		},
	}

	updated, _ := m.Update(msg)
	loaded, ok := updated.(Model)
	require.True(t, ok)

	rows := loaded.rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-15", rows[0][0])
	assert.Equal(t, "HDFC Regalia", rows[0][1])
	// Bills without a known card fall back to the tail digits.
	assert.Equal(t, "-", rows[1][0])
	assert.Equal(t, "9876", rows[1][1])

	view := loaded.View()
	assert.Contains(t, view, "Bills")
	assert.Contains(t, view, "2 bills")
}

func TestModelQuitKey(t *testing.T) {
	m := NewModel(context.Background(), nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
