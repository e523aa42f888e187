// Package tui provides an interactive terminal browser for the bill ledger.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/due-process/internal/cli"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(cli.SubtleColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(cli.SubtleColor).
			MarginTop(1)
)

type billsLoadedMsg struct {
	bills []model.BillRecord
	cards map[model.CardID]model.Card
}

type errMsg struct{ err error }

// Model is the bubbletea model for the bill browser.
type Model struct {
	ctx        context.Context
	storage    service.Storage
	cards      map[model.CardID]model.Card
	lastError  error
	status     string
	bills      []model.BillRecord
	table      table.Model
	keymap     KeyMap
	showHelp   bool
	unpaidOnly bool
}

// NewModel creates a bill browser backed by the given storage.
func NewModel(ctx context.Context, storage service.Storage) Model {
	columns := []table.Column{
		{Title: "Due", Width: 10},
		{Title: "Card", Width: 24},
		{Title: "Amount", Width: 12},
		{Title: "Min Due", Width: 10},
		{Title: "Status", Width: 8},
		{Title: "Paid On", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(cli.PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(cli.PrimaryColor).
		Bold(true)
	t.SetStyles(styles)

	return Model{
		ctx:     ctx,
		storage: storage,
		table:   t,
		keymap:  DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadBills()
}

func (m Model) loadBills() tea.Cmd {
	return func() tea.Msg {
		bills, err := m.storage.GetBills(m.ctx, service.BillFilter{UnpaidOnly: m.unpaidOnly})
		if err != nil {
			return errMsg{err}
		}
		cards, err := m.storage.GetCards(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		byID := make(map[model.CardID]model.Card, len(cards))
		for _, c := range cards {
			byID[c.ID] = c
		}
		return billsLoadedMsg{bills: bills, cards: byID}
	}
}

func (m Model) togglePaid() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.bills) {
		return nil
	}
	bill := m.bills[idx]
	return func() tea.Msg {
		var err error
		if bill.IsPaid {
			err = m.storage.MarkBillUnpaid(m.ctx, bill.ID)
		} else {
			err = m.storage.MarkBillPaid(m.ctx, bill.ID, bill.Amount, model.PaidTypeBill, time.Now())
		}
		if err != nil {
			return errMsg{err}
		}
		bills, err := m.storage.GetBills(m.ctx, service.BillFilter{UnpaidOnly: m.unpaidOnly})
		if err != nil {
			return errMsg{err}
		}
		return billsLoadedMsg{bills: bills, cards: m.cards}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 8)
		return m, nil

	case billsLoadedMsg:
		m.bills = msg.bills
		if msg.cards != nil {
			m.cards = msg.cards
		}
		m.lastError = nil
		m.table.SetRows(m.rows())
		return m, nil

	case errMsg:
		m.lastError = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Refresh):
			return m, m.loadBills()
		case key.Matches(msg, m.keymap.TogglePaid):
			return m, m.togglePaid()
		case key.Matches(msg, m.keymap.ToggleUnpaid):
			m.unpaidOnly = !m.unpaidOnly
			return m, m.loadBills()
		case key.Matches(msg, m.keymap.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.bills))
	for _, bill := range m.bills {
		due := "-"
		if bill.DueDate != nil {
			due = bill.DueDate.Format("2006-01-02")
		}
		name := bill.CardLast4
		if card, ok := m.cards[bill.CardID]; ok {
			name = card.Name
		}
		status := cli.UnpaidStyle.Render("UNPAID")
		paidOn := ""
		if bill.IsPaid {
			status = cli.PaidStyle.Render("PAID")
			if bill.PaidAt != nil {
				paidOn = bill.PaidAt.Format("2006-01-02")
			}
		}
		minDue := ""
		if bill.MinDue > 0 {
			minDue = fmt.Sprintf("%.2f", bill.MinDue)
		}
		rows = append(rows, table.Row{
			due,
			name,
			cli.FormatAmount(bill.Amount),
			minDue,
			status,
			paidOn,
		})
	}
	return rows
}

// View implements tea.Model.
func (m Model) View() string {
	title := cli.TitleStyle.Render("Bills")
	if m.unpaidOnly {
		title = cli.TitleStyle.Render("Bills (unpaid)")
	}

	var status string
	switch {
	case m.lastError != nil:
		status = cli.ErrorStyle.Render("error: " + m.lastError.Error())
	case m.showHelp:
		status = "↑/↓ move · p mark paid/unpaid · u unpaid only · r refresh · q quit"
	default:
		status = fmt.Sprintf("%d bills · press ? for help", len(m.bills))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		baseStyle.Render(m.table.View()),
		statusStyle.Render(status),
	)
}
