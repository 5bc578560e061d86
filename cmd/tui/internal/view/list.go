package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	"github.com/MrJamesThe3rd/ledgerbook/internal/payee"
	"github.com/MrJamesThe3rd/ledgerbook/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateRule
)

// ruleFields is bound to the payee rule form.
type ruleFields struct {
	pattern  string
	merchant string
}

type ListModel struct {
	CommonModel
	accountService *account.Service
	txService      *transaction.Service
	payeeService   *payee.Service

	state listState
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form
	rule  *ruleFields

	accounts   []*account.Account
	accountIdx int // 0 is all accounts
	statusIdx  int
	timeframe  Timeframe

	loading bool
	err     error
	status  string
}

var statusFilters = []struct {
	label  string
	status *transaction.Status
}{
	{label: "All"},
	{label: "Pending", status: new(transaction.StatusPending)},
	{label: "Posted", status: new(transaction.StatusPosted)},
}

func NewListModel(accountSvc *account.Service, txSvc *transaction.Service, payeeSvc *payee.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Status", Width: 9},
		{Title: "Description", Width: 40},
		{Title: "Merchant", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		accountService: accountSvc,
		txService:      txSvc,
		payeeService:   payeeSvc,
		table:          t,
		rule:           &ruleFields{},
		loading:        true,
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateRule {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: account | s: status | d: dates | p: payee rule | x: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return tea.Batch(m.loadAccountsCmd(), m.loadTxsCmd())
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listAccountsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.accounts = msg.accounts

		return m, nil

	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case listActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(msg.Height - 10)

		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateRule:
		return m.updateRule(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "a":
			m.accountIdx = (m.accountIdx + 1) % (len(m.accounts) + 1)
			return m, m.loadTxsCmd()
		case "s":
			m.statusIdx = (m.statusIdx + 1) % len(statusFilters)
			return m, m.loadTxsCmd()
		case "d":
			m.timeframe = m.timeframe.Next()
			return m, m.loadTxsCmd()
		case "x":
			return m, m.deleteCmd()
		case "p":
			return m.enterRuleMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) enterRuleMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.rule.pattern = tx.Description
	m.rule.merchant = tx.Merchant

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("pattern").
				Title("Descriptions containing").
				Value(&m.rule.pattern).
				Validate(huh.ValidateNotEmpty()),

			huh.NewInput().
				Key("merchant").
				Title("Belong to merchant").
				Value(&m.rule.merchant).
				Validate(huh.ValidateNotEmpty()),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateRule
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateRule(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.learnCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf(
		"[a] Account: %s | [s] Status: %s | [d] Date: %s",
		activeStyle(m.accountLabel()),
		activeStyle(statusFilters[m.statusIdx].label),
		activeStyle(m.timeframe.String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateRule && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Payee Rule\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m ListModel) accountLabel() string {
	if m.accountIdx == 0 || m.accountIdx > len(m.accounts) {
		return "All"
	}

	return m.accounts[m.accountIdx-1].Name
}

func (m ListModel) filter() transaction.ListFilter {
	f := transaction.ListFilter{Status: statusFilters[m.statusIdx].status}

	if m.accountIdx > 0 && m.accountIdx <= len(m.accounts) {
		f.AccountID = new(m.accounts[m.accountIdx-1].ID)
	}

	if start, end, ok := m.timeframe.DateRange(time.Now()); ok {
		f.StartDate = &start
		f.EndDate = &end
	}

	return f
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			FormatSigned(tx),
			string(tx.Status),
			tx.Description,
			tx.Merchant,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type listAccountsMsg struct {
	accounts []*account.Account
	err      error
}

type loadListMsg struct {
	txs []*transaction.Transaction
	err error
}

type listActionMsg struct {
	status string
	err    error
}

func (m ListModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.accountService.List(ctx)

		return listAccountsMsg{accounts: accounts, err: err}
	}
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadListMsg{txs: txs, err: err}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, tx.ID); err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: fmt.Sprintf("Deleted %s %s.", FormatDate(tx.Date), tx.Description)}
	}
}

func (m ListModel) learnCmd() tea.Cmd {
	pattern, merchant := m.rule.pattern, m.rule.merchant

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.payeeService.Learn(ctx, pattern, merchant); err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: fmt.Sprintf("Descriptions containing %q now map to %s.", pattern, merchant)}
	}
}
