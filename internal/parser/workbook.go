package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/traceworks/order-import/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet is a read-only grid of cells. Rows come straight from excelize and
// are jagged: trailing empty cells are trimmed, so all access goes through
// Cell, which treats out-of-range as empty.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the trimmed value at (row, col), or "" when the coordinate
// is outside the grid. An empty string is the missing-cell marker
// throughout the parser.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// RowCount returns the number of rows in the sheet.
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// ParseWorkbook opens a workbook and parses every detail sheet, preserving
// workbook sheet order. A workbook that cannot be opened is a fatal error;
// a workbook with no detail sheets yields an empty result.
func ParseWorkbook(path string, log zerolog.Logger) ([]types.SheetOrders, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	var results []types.SheetOrders
	for _, name := range f.GetSheetList() {
		if !strings.Contains(name, detailSheetMarker) {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheet := &Sheet{Name: name, Rows: rows}
		orders := ParseSheet(sheet, log)
		log.Debug().Str("sheet", name).Int("orders", len(orders)).Msg("Parsed detail sheet")
		results = append(results, types.SheetOrders{Sheet: name, Orders: orders})
	}
	return results, nil
}
