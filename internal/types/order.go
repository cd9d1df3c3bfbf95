package types

// Order is the parsed result of one sales-list block. An order is only
// worth keeping when CustomerName is non-empty; whether any line items were
// recognized does not affect validity.
type Order struct {
	Category     string     `json:"category"`
	CustomerName string     `json:"customerName"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	Date         string     `json:"date"`
	Remark       string     `json:"remark"`
	Items        []LineItem `json:"items"`
}

// Valid reports whether the order should be retained.
func (o *Order) Valid() bool {
	return o.CustomerName != ""
}

// TotalAmount sums the total prices of all retained line items.
func (o *Order) TotalAmount() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	return total
}

// LineItem is one parsed product row. Quantity keeps the fractional value
// from the sheet (square-meter counts are decimals); persistence truncates
// it to a whole number with a floor of 1.
type LineItem struct {
	Name       string  `json:"name"`
	Length     float64 `json:"length"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Remark     string  `json:"remark"`
}

// HasData reports whether the row carried enough to be retained: a
// measurable dimension, or a named item with a positive amount. Everything
// else is an incidental row inside the scanned range.
func (it *LineItem) HasData() bool {
	return it.Length > 0 || it.Width > 0 || (it.Name != "" && it.TotalPrice > 0)
}

// SkipReason classifies why an item row was not retained.
type SkipReason string

const (
	// SkipNone marks a retained row.
	SkipNone SkipReason = ""
	// SkipTotalsRow marks the grand-total row; it terminates the scan and
	// discounts every row after it.
	SkipTotalsRow SkipReason = "totals_row"
	// SkipNoData marks a row with no measurable data.
	SkipNoData SkipReason = "no_data"
)

// RowResult is the outcome of parsing one item row. Exactly one of Item or
// Skip is meaningful: a retained row has Item set and Skip == SkipNone.
type RowResult struct {
	Row  int
	Item *LineItem
	Skip SkipReason
}

// SheetOrders groups the orders parsed from one detail sheet.
type SheetOrders struct {
	Sheet  string  `json:"sheet"`
	Orders []Order `json:"orders"`
}

// ImportResult tallies one import run.
type ImportResult struct {
	Imported int
	Skipped  int
	Failed   int
}
