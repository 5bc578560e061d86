package statement

import "strings"

// Preset is a known bank export layout. When a statement's headers contain
// every column a preset requires, the preset's mapping is proposed instead
// of a heuristic one.
type Preset struct {
	Name    string
	Mapping ColumnMapping
}

func (p Preset) requiredCols() []string {
	return append([]string{p.Mapping.DateColumn, p.Mapping.DescriptionColumn}, p.Mapping.amountCols()...)
}

// cgdMapping is the number and date convention shared by Caixa Geral de
// Depósitos exports.
func cgdMapping(m ColumnMapping) ColumnMapping {
	m.DescriptionColumn = "Descrição"
	m.DateFormat = DateEUDash
	m.ThousandSeparator = SeparatorPeriod
	m.DecimalSeparator = SeparatorComma

	return m
}

// presets is ordered from most to least specific.
var presets = []Preset{
	{
		Name: "cgd-cartao",
		Mapping: cgdMapping(ColumnMapping{
			DateColumn:   "Data",
			AmountMode:   AmountSplit,
			DebitColumn:  "Débito",
			CreditColumn: "Crédito",
		}),
	},
	{
		Name: "cgd-extrato",
		Mapping: cgdMapping(ColumnMapping{
			DateColumn:   "Data mov.",
			AmountMode:   AmountSingle,
			AmountColumn: "Movimento",
		}),
	},
	{
		Name: "cgd-conta",
		Mapping: cgdMapping(ColumnMapping{
			DateColumn:   "Data mov.",
			AmountMode:   AmountSingle,
			AmountColumn: "Montante",
		}),
	},
}

// MatchPreset returns the first preset whose required columns are all among
// the headers.
func MatchPreset(headers []string) (Preset, bool) {
	cols := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		cols[strings.TrimSpace(h)] = struct{}{}
	}

	for _, p := range presets {
		if hasAll(cols, p.requiredCols()) {
			return p, true
		}
	}

	return Preset{}, false
}

func hasAll(cols map[string]struct{}, names []string) bool {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return false
		}
	}

	return true
}

// preambleScanLines bounds the search for a preset header.
const preambleScanLines = 50

// ParseStatement is Parse for real-world exports: account summary lines that
// some banks print above a known preset's header are skipped, and row line
// numbers still refer to the original text.
func ParseStatement(text string) *Table {
	text = strings.TrimPrefix(text, "\ufeff")

	body, skipped := trimPreamble(text)

	t := Parse(body)
	for i := range t.Rows {
		t.Rows[i].Line += skipped
	}

	return t
}

// trimPreamble returns text starting at the first line that is a preset
// header, and the number of lines dropped. Text without such a line is
// returned unchanged.
func trimPreamble(text string) (string, int) {
	offset, n := 0, 0

	for line := range strings.Lines(text) {
		if n == preambleScanLines {
			break
		}

		if fields := splitLine(line); len(fields) > 1 {
			if _, ok := MatchPreset(fields); ok {
				return text[offset:], n
			}
		}

		offset += len(line)
		n++
	}

	return text, 0
}

func splitLine(line string) []string {
	line = strings.TrimRight(line, "\r\n")

	fields, err := readLine(line, DetectDelimiter(line))
	if err != nil {
		return nil
	}

	return fields
}
