package parser

import (
	"github.com/rs/zerolog"
	"github.com/traceworks/order-import/internal/types"
)

// ParseSheet parses all order blocks of one detail sheet, in ascending row
// order. A sheet without block markers is treated as one legacy
// single-order sheet covering every row. Orders without a customer name
// are dropped.
func ParseSheet(sheet *Sheet, log zerolog.Logger) []types.Order {
	var orders []types.Order

	starts := FindOrderBlocks(sheet)
	if len(starts) == 0 {
		order := ParseOrderBlock(sheet, 0, sheet.RowCount(), sheet.Name)
		if order.Valid() {
			orders = append(orders, order)
		}
		return orders
	}

	for i, start := range starts {
		end := sheet.RowCount()
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		order := ParseOrderBlock(sheet, start, end, sheet.Name)
		if !order.Valid() {
			log.Debug().Str("sheet", sheet.Name).Int("row", start).Msg("Block has no customer name, dropped")
			continue
		}
		orders = append(orders, order)
	}
	return orders
}
