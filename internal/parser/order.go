package parser

import (
	"strings"

	"github.com/traceworks/order-import/internal/types"
)

const (
	// headerWindow bounds how far below a block's start the header fields
	// and the item-table header row are searched for.
	headerWindow = 10
	// maxItemRows bounds the item scan below the detected data start.
	maxItemRows = 15
	// heightCap discards implausible height values. Real heights in this
	// domain are well below 100; anything larger means the parser aligned
	// to the wrong column, so the value must not be trusted.
	heightCap = 100.0
)

// Item row column layout. Column 4 is a merged spacer on every known sheet
// variant and is never read.
const (
	colName = iota
	colLength
	colWidth
	colHeight
	_
	colQuantity
	colUnitPrice
	colTotalPrice
	colRemark
)

// ParseOrderBlock parses one order block spanning rows [start, end) of a
// sheet. The sheet label drives category inference. The returned order may
// have zero items; the caller decides retention from the customer name.
//
// Header capture is last-match-wins within the lookahead window: when the
// same label appears twice (the printed template often repeats labels), the
// later value overwrites the earlier one. A label whose value cell is empty
// leaves any earlier capture in place. Both behaviors are workarounds for
// inconsistent source layouts and are preserved as found.
func ParseOrderBlock(sheet *Sheet, start, end int, sheetLabel string) types.Order {
	order := types.Order{
		Category: categoryForLabel(sheetLabel),
		Items:    []types.LineItem{},
	}

	searchEnd := min(start+headerWindow, end)
	for i := start; i < searchEnd; i++ {
		scanHeaderRow(sheet, i, &order)
	}

	dataStart := findItemTable(sheet, start, searchEnd)
	if dataStart < 0 {
		return order
	}

	for _, res := range ItemRows(sheet, dataStart, end) {
		if res.Item != nil {
			order.Items = append(order.Items, *res.Item)
		}
	}
	return order
}

// scanHeaderRow captures header fields from label/value cell pairs in one
// row: a cell matching a known label captures the cell immediately to its
// right.
func scanHeaderRow(sheet *Sheet, row int, order *types.Order) {
	width := 0
	if row >= 0 && row < sheet.RowCount() {
		width = len(sheet.Rows[row])
	}
	for j := 0; j < width; j++ {
		cell := sheet.Cell(row, j)
		if cell == "" {
			continue
		}

		field, ok := headerLabels[cell]
		if !ok {
			if !strings.Contains(cell, remarkLabel) {
				continue
			}
			field = fieldRemark
		}

		value := sheet.Cell(row, j+1)
		if value == "" {
			continue
		}
		switch field {
		case fieldDate:
			order.Date = value
		case fieldCustomer:
			order.CustomerName = value
		case fieldPhone:
			order.Phone = value
		case fieldAddress:
			order.Address = value
		case fieldRemark:
			order.Remark = value
		}
	}
}

// findItemTable locates the item table's column-header row within
// [start, searchEnd) and returns the index of the first data row, or -1
// when the block has no item table.
func findItemTable(sheet *Sheet, start, searchEnd int) int {
	for i := start; i < searchEnd; i++ {
		var joined strings.Builder
		if i < sheet.RowCount() {
			for j := range sheet.Rows[i] {
				joined.WriteString(sheet.Cell(i, j))
			}
		}
		if isItemHeaderRow(joined.String()) {
			return i + 1
		}
	}
	return -1
}

// ItemRows scans up to maxItemRows rows from dataStart, bounded by end, and
// returns one RowResult per visited row. The grand-total marker in column 0
// stops the scan; its RowResult is the last one returned. Rows without
// retainable data are reported as skips so callers can audit why a row was
// dropped.
func ItemRows(sheet *Sheet, dataStart, end int) []types.RowResult {
	var results []types.RowResult
	dataEnd := min(dataStart+maxItemRows, end)

	for i := dataStart; i < dataEnd; i++ {
		if strings.Contains(sheet.Cell(i, 0), totalsMarker) {
			results = append(results, types.RowResult{Row: i, Skip: types.SkipTotalsRow})
			break
		}

		item := parseItemRow(sheet, i)
		if !item.HasData() {
			results = append(results, types.RowResult{Row: i, Skip: types.SkipNoData})
			continue
		}

		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		item.Unit = unitForQuantity(item.Quantity)
		results = append(results, types.RowResult{Row: i, Item: &item})
	}
	return results
}

// parseItemRow extracts one candidate line item from a row by fixed column
// positions. Numeric columns pass through the positive-number classifier;
// anything that fails it keeps its default.
func parseItemRow(sheet *Sheet, row int) types.LineItem {
	item := types.LineItem{
		Name:     sheet.Cell(row, colName),
		Quantity: 1,
		Remark:   sheet.Cell(row, colRemark),
	}

	if v, ok := validNumber(sheet.Cell(row, colLength)); ok {
		item.Length = v
	}
	if v, ok := validNumber(sheet.Cell(row, colWidth)); ok {
		item.Width = v
	}
	if v, ok := validNumber(sheet.Cell(row, colHeight)); ok && v < heightCap {
		item.Height = v
	}
	if v, ok := validNumber(sheet.Cell(row, colQuantity)); ok {
		item.Quantity = v
	}
	if v, ok := validNumber(sheet.Cell(row, colUnitPrice)); ok {
		item.UnitPrice = v
	}
	if v, ok := validNumber(sheet.Cell(row, colTotalPrice)); ok {
		item.TotalPrice = v
	}
	return item
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
