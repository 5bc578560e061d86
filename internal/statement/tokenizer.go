package statement

import (
	"encoding/csv"
	"errors"
	"strings"
)

var (
	ErrNoHeaders = errors.New("statement has no header row")
	ErrNoRows    = errors.New("statement has no data rows")
)

// Row is one data line of a statement, keyed by header name.
type Row struct {
	Line   int // 1-based line in the source text
	Values map[string]string
}

// Get returns the trimmed value of the named column and whether the column
// exists in the statement's headers.
func (r Row) Get(col string) (string, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// Table is a tokenized statement.
type Table struct {
	Headers   []string
	Rows      []Row
	Delimiter rune
	Malformed int // lines rejected by the CSV reader
}

// Validate reports the structural failures that make a statement unusable.
func (t *Table) Validate() error {
	if len(t.Headers) == 0 {
		return ErrNoHeaders
	}

	if len(t.Rows) == 0 {
		return ErrNoRows
	}

	return nil
}

// Records returns the data rows as ordered slices following Headers.
func (t *Table) Records(limit int) [][]string {
	n := len(t.Rows)
	if limit >= 0 && limit < n {
		n = limit
	}

	out := make([][]string, 0, n)
	for _, row := range t.Rows[:n] {
		rec := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			rec[i] = row.Values[h]
		}

		out = append(out, rec)
	}

	return out
}

// candidateDelimiters are counted in the header line to pick the delimiter.
var candidateDelimiters = []rune{',', ';', '\t'}

// Parse splits raw CSV text into a header row and data rows. The delimiter is
// detected from the header line. Every line is tokenized on its own, so a
// quote left open stays within its line. Blank lines are discarded and
// missing trailing fields default to the empty string.
func Parse(text string) *Table {
	text = strings.TrimPrefix(text, "\ufeff")

	headerLine, ok := firstNonBlankLine(text)
	if !ok {
		return &Table{Delimiter: ','}
	}

	delim := DetectDelimiter(headerLine)

	var (
		records   [][]string
		lines     []int
		malformed int
		n         int
	)

	for line := range strings.Lines(text) {
		n++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := readLine(line, delim)
		if err != nil {
			malformed++
			continue
		}

		if blankRecord(rec) {
			continue
		}

		records = append(records, rec)
		lines = append(lines, n)
	}

	t := buildTable(records, lines)
	t.Delimiter = delim
	t.Malformed = malformed

	return t
}

// readLine tokenizes a single line. An unterminated quoted field runs to the
// end of the line.
func readLine(line string, delim rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return r.Read()
}

// DetectDelimiter counts unquoted commas, semicolons and tabs in the header
// line and returns the most frequent one. Ties and lines without any of them
// fall back to a comma.
func DetectDelimiter(headerLine string) rune {
	counts := make(map[rune]int, len(candidateDelimiters))
	inQuotes := false

	for _, r := range headerLine {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}

		if inQuotes {
			continue
		}

		if isCandidateDelimiter(r) {
			counts[r]++
		}
	}

	best, bestCount, tie := ',', 0, false

	for _, d := range candidateDelimiters {
		switch c := counts[d]; {
		case c > bestCount:
			best, bestCount, tie = d, c, false
		case c == bestCount && c > 0:
			tie = true
		}
	}

	if bestCount == 0 || tie {
		return ','
	}

	return best
}

func isCandidateDelimiter(r rune) bool {
	for _, d := range candidateDelimiters {
		if r == d {
			return true
		}
	}

	return false
}

// buildTable turns raw records into a Table. The first record is the header.
func buildTable(records [][]string, lines []int) *Table {
	if len(records) == 0 {
		return &Table{Delimiter: ','}
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(records)-1)

	for i, rec := range records[1:] {
		values := make(map[string]string, len(headers))

		for j, h := range headers {
			if _, dup := values[h]; dup {
				continue
			}

			values[h] = cell(rec, j)
		}

		rows = append(rows, Row{Line: lines[i+1], Values: values})
	}

	return &Table{Headers: headers, Rows: rows}
}

// cell safely gets a trimmed cell value from a record.
func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[idx])
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}

func firstNonBlankLine(text string) (string, bool) {
	for line := range strings.Lines(text) {
		if strings.TrimSpace(line) != "" {
			return strings.TrimRight(line, "\r\n"), true
		}
	}

	return "", false
}
