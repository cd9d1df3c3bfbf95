package parser

import "strings"

// The workbook convention is recognized entirely through fixed label
// vocabularies. They are enumerated here, and only here, so the matching
// policy stays auditable.
const (
	// blockMarker opens a new order block when it appears in column 0.
	blockMarker = "销货清单"
	// detailSheetMarker selects which sheets of a workbook are parsed.
	detailSheetMarker = "详单"
	// totalsMarker in column 0 ends the item scan; that row and everything
	// after it belong to the hand-written grand-total footer.
	totalsMarker = "大写"
	// remarkLabel is matched as a substring; the other header labels match
	// exactly.
	remarkLabel = "备注："

	unitSmall = "平米"
	unitLarge = "块"
)

// headerField identifies which order field a header label feeds.
type headerField int

const (
	fieldDate headerField = iota
	fieldCustomer
	fieldPhone
	fieldAddress
	fieldRemark
)

// headerLabels maps exact cell text to the order field captured from the
// cell immediately to its right. 客户 and 客户名称 both feed the customer
// name; the woodwork sheets use the long form.
var headerLabels = map[string]headerField{
	"日期":   fieldDate,
	"客户":   fieldCustomer,
	"客户名称": fieldCustomer,
	"电话":   fieldPhone,
	"地址":   fieldAddress,
}

// itemHeaderName and itemHeaderDims identify the column-header row of the
// item table: a row mentioning the product-name column together with at
// least one dimension column.
var (
	itemHeaderName = "品名"
	itemHeaderDims = []string{"长", "宽"}
)

// categoryVocab lists the known product categories recognized as substrings
// of the sheet label, in match order.
var categoryVocab = []string{"榻榻米", "回弹棉"}

// categoryForLabel infers the order category from the sheet label: a known
// category substring wins, otherwise the detail-sheet suffix is stripped.
func categoryForLabel(label string) string {
	for _, cat := range categoryVocab {
		if strings.Contains(label, cat) {
			return cat
		}
	}
	return strings.ReplaceAll(label, detailSheetMarker, "")
}

// unitForQuantity maps a quantity to its display unit. Small fractional
// quantities on these sheets are square-meter counts, anything from ten up
// is counted in pieces. The threshold is a convention of the source
// workbooks, preserved as found.
func unitForQuantity(quantity float64) string {
	if quantity > 0 && quantity < 10 {
		return unitSmall
	}
	return unitLarge
}

// isItemHeaderRow reports whether the concatenated non-empty cells of a row
// look like the item table's column-header row.
func isItemHeaderRow(joined string) bool {
	if !strings.Contains(joined, itemHeaderName) {
		return false
	}
	for _, dim := range itemHeaderDims {
		if strings.Contains(joined, dim) {
			return true
		}
	}
	return false
}
