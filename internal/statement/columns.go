package statement

import (
	"strings"
)

type role int

const (
	roleDate role = iota
	roleDescription
	roleMerchant
	roleStatus
	roleDebit
	roleCredit
	roleAmount
)

type columnRule struct {
	role     role
	patterns []string
}

// columnRules is evaluated top to bottom. Within a rule, patterns are tried in
// order and the first header containing the pattern wins.
var columnRules = []columnRule{
	{roleDate, []string{"date", "posted", "transaction date", "fecha", "data"}},
	{roleDescription, []string{"description", "desc", "memo", "narrative", "details", "descri", "concepto", "payee", "name"}},
	{roleMerchant, []string{"merchant", "payee", "vendor", "name"}},
	{roleStatus, []string{"status", "state"}},
	{roleDebit, []string{"debit", "withdrawal", "money out", "paid out", "débito", "debito", "cargo"}},
	{roleCredit, []string{"credit", "deposit", "money in", "paid in", "crédito", "credito", "abono"}},
	{roleAmount, []string{"amount", "montante", "movimento", "importe"}},
}

// DetectColumns guesses which header plays which role. Fields without a
// match are left empty for the user to fill in.
func DetectColumns(headers []string) ColumnMapping {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	found := make(map[role]string, len(columnRules))

	for _, rule := range columnRules {
		skip := ""
		if rule.role == roleMerchant {
			skip = found[roleDescription]
		}

		if h, ok := findHeader(headers, lower, rule.patterns, skip); ok {
			found[rule.role] = h
		}
	}

	m := ColumnMapping{
		DateColumn:        found[roleDate],
		DescriptionColumn: found[roleDescription],
		MerchantColumn:    found[roleMerchant],
		StatusColumn:      found[roleStatus],
	}

	debit, credit := found[roleDebit], found[roleCredit]
	if debit != "" && credit != "" && debit != credit {
		m.AmountMode = AmountSplit
		m.DebitColumn = debit
		m.CreditColumn = credit
	} else {
		m.AmountMode = AmountSingle
		m.AmountColumn = found[roleAmount]
	}

	return m
}

func findHeader(headers, lower, patterns []string, skip string) (string, bool) {
	for _, p := range patterns {
		for i, h := range lower {
			if headers[i] == skip || headers[i] == "" {
				continue
			}

			if strings.Contains(h, p) {
				return headers[i], true
			}
		}
	}

	return "", false
}

// detectionSamples bounds how many rows DetectMapping inspects.
const detectionSamples = 20

// DetectMapping proposes a full mapping for a table. A known preset wins;
// otherwise the result is the detected columns, a date format fitted to the
// date column and the parentheses convention seen in the amount columns, with
// separators left on auto.
func DetectMapping(t *Table) ColumnMapping {
	if p, ok := MatchPreset(t.Headers); ok {
		return p.Mapping
	}

	m := DetectColumns(t.Headers)
	m.ThousandSeparator = SeparatorAuto
	m.DecimalSeparator = SeparatorAuto

	rows := t.Rows
	if len(rows) > detectionSamples {
		rows = rows[:detectionSamples]
	}

	if m.DateColumn != "" {
		samples := make([]string, 0, len(rows))
		for _, r := range rows {
			if v, ok := r.Get(m.DateColumn); ok {
				samples = append(samples, v)
			}
		}

		if f, ok := fitDateFormat(samples); ok {
			m.DateFormat = f
		}
	}

	for _, col := range m.amountCols() {
		if col == "" {
			continue
		}

		for _, r := range rows {
			v, _ := r.Get(col)
			if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
				m.NegativeInParentheses = true
			}
		}
	}

	return m
}
