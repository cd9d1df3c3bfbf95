// Package report renders the analyze/dry-run console report. The report is
// the program's product in those modes, so it goes to the writer directly
// rather than through the logger.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/traceworks/order-import/internal/types"
)

// maxItemLines bounds how many line items are printed per order; the rest
// collapse into an overflow note.
const maxItemLines = 5

// Render writes the full parse report for a workbook and returns the total
// number of valid orders.
func Render(w io.Writer, sheets []types.SheetOrders) int {
	fmt.Fprintf(w, "\nFound %d detail sheet(s)\n\n", len(sheets))

	total := 0
	// Category tallies, in first-seen order.
	counts := map[string]int{}
	var categories []string

	for _, sheet := range sheets {
		fmt.Fprintf(w, "=== %s ===\n", sheet.Sheet)
		fmt.Fprintf(w, "  %d order(s)\n", len(sheet.Orders))

		for _, order := range sheet.Orders {
			total++
			if counts[order.Category] == 0 {
				categories = append(categories, order.Category)
			}
			counts[order.Category]++
			renderOrder(w, total, &order)
		}

		if len(sheet.Orders) == 0 {
			fmt.Fprintln(w, "  No valid orders found")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Parsed %d valid order(s)\n", total)
	if total > 0 {
		fmt.Fprintln(w, "\nOrders per category:")
		for _, cat := range categories {
			fmt.Fprintf(w, "  %s: %d\n", cat, counts[cat])
		}
	}
	return total
}

func renderOrder(w io.Writer, seq int, order *types.Order) {
	fmt.Fprintf(w, "\n  [%d] Customer: %s\n", seq, order.CustomerName)
	fmt.Fprintf(w, "      Date:     %s\n", order.Date)
	fmt.Fprintf(w, "      Phone:    %s\n", order.Phone)
	fmt.Fprintf(w, "      Category: %s\n", order.Category)
	fmt.Fprintf(w, "      Items:    %d\n", len(order.Items))

	for i, item := range order.Items {
		if i >= maxItemLines {
			fmt.Fprintf(w, "        ... and %d more item(s)\n", len(order.Items)-maxItemLines)
			break
		}
		name := ""
		if item.Name != "" {
			name = fmt.Sprintf("[%s] ", item.Name)
		}
		fmt.Fprintf(w, "        %d. %s%gx%gx%g qty:%.2f%s unit:%g total:%.2f\n",
			i+1, name, item.Length, item.Width, item.Height,
			item.Quantity, item.Unit, item.UnitPrice, item.TotalPrice)
	}

	fmt.Fprintf(w, "      Total: %.2f\n", order.TotalAmount())
}
