package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ledgerbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	accountStore "github.com/MrJamesThe3rd/ledgerbook/internal/account/store"
	"github.com/MrJamesThe3rd/ledgerbook/internal/config"
	"github.com/MrJamesThe3rd/ledgerbook/internal/database"
	"github.com/MrJamesThe3rd/ledgerbook/internal/importer"
	"github.com/MrJamesThe3rd/ledgerbook/internal/payee"
	payeeStore "github.com/MrJamesThe3rd/ledgerbook/internal/payee/store"
	"github.com/MrJamesThe3rd/ledgerbook/internal/transaction"
	txStore "github.com/MrJamesThe3rd/ledgerbook/internal/transaction/store"
)

type model struct {
	accountService *account.Service
	txService      *transaction.Service
	payeeService   *payee.Service
	importService  *importer.Service

	currentView View

	importView view.ImportModel
	listView   view.ListModel
}

type View int

const (
	ViewMenu   View = 0
	ViewImport View = 1
	ViewList   View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	accountSvc := account.NewService(accountStore.New(db))
	txSvc := transaction.NewService(txStore.New(db))
	payeeSvc := payee.NewService(payeeStore.New(db))
	impSvc := importer.NewService(accountSvc, txSvc, payeeSvc, importer.Options{
		PreviewRows:     cfg.Import.PreviewRows,
		KeepZeroAmounts: cfg.Import.KeepZeroAmounts,
	})

	return model{
		accountService: accountSvc,
		txService:      txSvc,
		payeeService:   payeeSvc,
		importService:  impSvc,
		currentView:    ViewMenu,
		importView:     view.NewImportModel(accountSvc, impSvc),
		listView:       view.NewListModel(accountSvc, txSvc, payeeSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.accountService, m.importService)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.accountService, m.txService, m.payeeService)

				return m, m.listView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Ledgerbook\n\n" +
				"1. Import Statement\n" +
				"2. Browse Transactions\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View() + "\n" + lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(m.importView.ShortHelp())
	case ViewList:
		return m.listView.View() + "\n" + lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(m.listView.ShortHelp())
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
