package statement

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var (
	ErrInvalidWorkbook = errors.New("invalid workbook")
	ErrNoSheets        = errors.New("workbook has no sheets")
)

// xlsxMagic is the zip local file header every .xlsx file starts with.
var xlsxMagic = []byte("PK\x03\x04")

// IsXLSX reports whether data looks like an Excel workbook.
func IsXLSX(data []byte) bool {
	return bytes.HasPrefix(data, xlsxMagic)
}

// ReadXLSX reads the first sheet of a workbook into a Table. Row numbers
// follow the sheet's own row numbering.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	var (
		records [][]string
		lines   []int
	)

	for i, row := range rows {
		if blankRecord(row) {
			continue
		}

		records = append(records, row)
		lines = append(lines, i+1)
	}

	return buildTable(records, lines), nil
}
