package wordlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetLines reads the first sheet of an xlsx workbook and joins the
// cells of each row with sep. Rows without any non-empty cell are dropped.
func SpreadsheetLines(r io.Reader, sep string) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		line := strings.Join(row, sep)
		if strings.TrimSpace(strings.ReplaceAll(line, sep, "")) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
