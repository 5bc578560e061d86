package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	"github.com/MrJamesThe3rd/ledgerbook/internal/importer"
	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

const importTimeout = 2 * time.Minute

// maxShownErrors bounds the row errors listed on the result screen.
const maxShownErrors = 10

type importState int

const (
	importStateLoading importState = iota
	importStateAccount
	importStateFilePick
	importStatePreviewing
	importStateMapping
	importStateImporting
	importStateResult
)

// importSelection holds the values bound to the wizard's forms. It lives
// behind a pointer so the bindings survive model copies.
type importSelection struct {
	accountID uuid.UUID
	mapping   statement.ColumnMapping
	confirm   bool
}

type ImportModel struct {
	CommonModel
	accountService *account.Service
	importService  *importer.Service

	state       importState
	sel         *importSelection
	accounts    []*account.Account
	accountForm *huh.Form
	filePicker  filepicker.Model
	mappingForm *huh.Form
	sample      table.Model

	path    string
	preview *importer.Preview
	result  *importer.Result

	status string
	err    error
}

func NewImportModel(accountSvc *account.Service, importSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt", ".xlsx"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		accountService: accountSvc,
		importService:  importSvc,
		sel:            &importSelection{},
		filePicker:     fp,
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateMapping:
		return "Tab: next field | Enter: confirm | Esc: choose another file"
	case importStateResult:
		return "Esc: import another file"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadAccountsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height

	case accountsLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}

		if len(msg.accounts) == 0 {
			return m.fail(errors.New("no accounts yet, create one through the API first"))
		}

		m.accounts = msg.accounts
		m.accountForm = m.buildAccountForm()
		m.state = importStateAccount

		return m, m.accountForm.Init()

	case previewMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}

		m.preview = msg.preview
		m.sample = buildSampleTable(msg.preview)
		m.mappingForm = m.buildMappingForm(msg.preview)
		m.state = importStateMapping

		return m, m.mappingForm.Init()

	case importDoneMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}

		m.result = msg.result
		m.state = importStateResult
		m.status = fmt.Sprintf("Imported %d, skipped %d duplicates, dropped %d zero-amount rows, %d rows with errors.",
			msg.result.ImportedCount, msg.result.SkippedCount, msg.result.DroppedCount, len(msg.result.Errors))

		return m, nil
	}

	switch m.state {
	case importStateAccount:
		return m.updateAccount(msg)
	case importStateFilePick:
		return m.updateFilePick(msg)
	case importStateMapping:
		return m.updateMapping(msg)
	}

	return m, nil
}

func (m ImportModel) fail(err error) (tea.Model, tea.Cmd) {
	m.state = importStateResult
	m.err = err
	m.result = nil
	m.status = fmt.Sprintf("Error: %v", err)

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.accountForm = m.buildAccountForm()
		m.state = importStateAccount

		return m, m.accountForm.Init()
	case importStateMapping:
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	case importStateResult:
		if m.accounts == nil {
			return m, Back
		}

		m.err = nil
		m.status = ""
		m.result = nil
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) updateAccount(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.accountForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.accountForm = f
	}

	if m.accountForm.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = importStateFilePick

	return m, m.filePicker.Init()
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = importStatePreviewing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m ImportModel) updateMapping(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.mappingForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.mappingForm = f
	}

	if m.mappingForm.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.sel.confirm {
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	}

	m.state = importStateImporting
	m.status = fmt.Sprintf("Importing %s...", m.path)

	return m, m.importCmd()
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	case importStateAccount:
		return lipgloss.NewStyle().Padding(1).Render(m.accountForm.View())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select statement to import into %s:\n\n%s", m.accountName(), m.filePicker.View()),
		)
	case importStatePreviewing, importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateMapping:
		return m.viewMapping()
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) accountName() string {
	for _, a := range m.accounts {
		if a.ID == m.sel.accountID {
			return a.Name
		}
	}

	return "account"
}

func (m ImportModel) viewMapping() string {
	p := m.preview

	info := fmt.Sprintf("%d rows | delimiter %q | %s", p.TotalRows, p.Delimiter, p.Format)
	if p.Encoding != "" {
		info += " | " + string(p.Encoding)
	}

	if p.Preset != "" {
		info += " | layout " + activeStyle(p.Preset)
	}

	if p.SavedMapping != nil {
		info += " | using saved mapping"
	}

	sample := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.sample.View())

	panel := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(m.mappingForm.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Faint(true).Render(info),
			sample,
			panel,
		),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status))

	if m.result != nil && len(m.result.Errors) > 0 {
		b.WriteString("\n\nRows not imported:\n")

		for i, e := range m.result.Errors {
			if i == maxShownErrors {
				fmt.Fprintf(&b, "  ... and %d more\n", len(m.result.Errors)-maxShownErrors)
				break
			}

			fmt.Fprintf(&b, "  %s\n", e.Error())
		}
	}

	b.WriteString("\n\n(Esc to go back)")

	return style.Render(b.String())
}

func (m ImportModel) buildAccountForm() *huh.Form {
	options := make([]huh.Option[uuid.UUID], len(m.accounts))
	for i, a := range m.accounts {
		options[i] = huh.NewOption(a.Name, a.ID)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Import into account").
				Options(options...).
				Value(&m.sel.accountID),
		),
	).WithWidth(50).WithShowHelp(false)
}

// buildMappingForm asks the user to confirm the column mapping, starting from
// the account's saved mapping or else the detected one.
func (m ImportModel) buildMappingForm(p *importer.Preview) *huh.Form {
	m.sel.mapping = p.DetectedMapping
	if p.SavedMapping != nil {
		m.sel.mapping = *p.SavedMapping
	}

	if m.sel.mapping.AmountMode == "" {
		m.sel.mapping.AmountMode = statement.AmountSingle
	}

	m.sel.confirm = true

	mp := &m.sel.mapping
	required := headerOptions(p.Headers, false)
	optional := headerOptions(p.Headers, true)

	dateFormats := []huh.Option[statement.DateFormat]{huh.NewOption("Detect from file", statement.DateFormat(""))}
	for _, f := range statement.DateFormats() {
		dateFormats = append(dateFormats, huh.NewOption(string(f), f))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Date column").Options(required...).Value(&mp.DateColumn),
			huh.NewSelect[statement.DateFormat]().Title("Date format").Options(dateFormats...).Value(&mp.DateFormat),
			huh.NewSelect[string]().Title("Description column").Options(optional...).Value(&mp.DescriptionColumn),
			huh.NewSelect[string]().Title("Merchant column").Options(optional...).Value(&mp.MerchantColumn),
			huh.NewSelect[string]().Title("Status column").Options(optional...).Value(&mp.StatusColumn),
		),
		huh.NewGroup(
			huh.NewSelect[statement.AmountMode]().
				Title("Amounts").
				Options(
					huh.NewOption("One signed column", statement.AmountSingle),
					huh.NewOption("Separate debit and credit columns", statement.AmountSplit),
				).
				Value(&mp.AmountMode),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Amount column").Options(required...).Value(&mp.AmountColumn),
		).WithHideFunc(func() bool { return mp.AmountMode != statement.AmountSingle }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Debit column").Options(required...).Value(&mp.DebitColumn),
			huh.NewSelect[string]().Title("Credit column").Options(required...).Value(&mp.CreditColumn),
		).WithHideFunc(func() bool { return mp.AmountMode != statement.AmountSplit }),
		huh.NewGroup(
			huh.NewSelect[statement.Separator]().
				Title("Decimal separator").
				Options(
					huh.NewOption("Detect", statement.SeparatorAuto),
					huh.NewOption("Comma (1234,56)", statement.SeparatorComma),
					huh.NewOption("Period (1234.56)", statement.SeparatorPeriod),
				).
				Value(&mp.DecimalSeparator),
			huh.NewSelect[statement.Separator]().
				Title("Thousand separator").
				Options(
					huh.NewOption("Detect", statement.SeparatorAuto),
					huh.NewOption("None", statement.SeparatorNone),
					huh.NewOption("Comma", statement.SeparatorComma),
					huh.NewOption("Period", statement.SeparatorPeriod),
					huh.NewOption("Space", statement.SeparatorSpace),
					huh.NewOption("Apostrophe", statement.SeparatorApostrophe),
				).
				Value(&mp.ThousandSeparator),
			huh.NewConfirm().
				Title("Negative amounts in parentheses?").
				Value(&mp.NegativeInParentheses),
			huh.NewConfirm().
				Title("Import with this mapping?").
				Description("The mapping is saved on the account.").
				Value(&m.sel.confirm).
				Validate(func(bool) error { return mp.Check() }),
		),
	).WithWidth(60).WithShowHelp(false)
}

func headerOptions(headers []string, optional bool) []huh.Option[string] {
	var options []huh.Option[string]
	if optional {
		options = append(options, huh.NewOption("(none)", ""))
	}

	for _, h := range headers {
		if h == "" {
			continue
		}

		options = append(options, huh.NewOption(h, h))
	}

	return options
}

func buildSampleTable(p *importer.Preview) table.Model {
	columns := make([]table.Column, len(p.Headers))
	for i, h := range p.Headers {
		columns[i] = table.Column{Title: h, Width: max(len(h), 12)}
	}

	rows := make([]table.Row, len(p.SampleRows))
	for i, r := range p.SampleRows {
		rows[i] = table.Row(r)
	}

	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
}

// Messages

type accountsLoadedMsg struct {
	accounts []*account.Account
	err      error
}

type previewMsg struct {
	preview *importer.Preview
	err     error
}

type importDoneMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.accountService.List(ctx)

		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	accountID := m.sel.accountID

	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return previewMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.importService.Preview(ctx, accountID, data)
		if err != nil {
			return previewMsg{err: err}
		}

		return previewMsg{preview: p}
	}
}

func (m ImportModel) importCmd() tea.Cmd {
	var (
		accountID = m.sel.accountID
		mapping   = m.sel.mapping
		path      = m.path
	)

	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return importDoneMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.importService.Import(ctx, accountID, data, &mapping)

		return importDoneMsg{result: res, err: err}
	}
}
