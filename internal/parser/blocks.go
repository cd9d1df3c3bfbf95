package parser

import "strings"

// FindOrderBlocks scans a sheet top-to-bottom and returns the row indices
// where a new order block begins, identified by the sales-list marker in
// column 0. Indices are ascending; a sheet without markers yields an empty
// slice, not an error.
func FindOrderBlocks(sheet *Sheet) []int {
	starts := []int{}
	for i := 0; i < sheet.RowCount(); i++ {
		if strings.Contains(sheet.Cell(i, 0), blockMarker) {
			starts = append(starts, i)
		}
	}
	return starts
}
