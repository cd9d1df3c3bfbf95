package parser

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSheetMultipleBlocks(t *testing.T) {
	sheet := &Sheet{
		Name: "榻榻米详单",
		Rows: [][]string{
			{"销货清单"},
			{"客户", "张三"},
			itemTableHeader,
			{"垫子", "200", "150", "", "", "2", "80", "160", ""},
			{},
			{"销货清单"},
			{"客户", "李四"},
			itemTableHeader,
			{"垫子", "180", "90", "", "", "1", "80", "80", ""},
			{},
			// Marker without a customer name: block is dropped.
			{"销货清单"},
			itemTableHeader,
			{"垫子", "100", "50", "", "", "1", "80", "80", ""},
		},
	}

	orders := ParseSheet(sheet, zerolog.Nop())
	require.Len(t, orders, 2)
	assert.Equal(t, "张三", orders[0].CustomerName)
	assert.Equal(t, "李四", orders[1].CustomerName)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 200.0, orders[0].Items[0].Length)
}

func TestParseSheetBlockBoundaries(t *testing.T) {
	// The 客户 label of the second block must not leak into the first:
	// each block ends where the next one starts.
	sheet := &Sheet{
		Name: "回弹棉详单",
		Rows: [][]string{
			{"销货清单"},
			{"客户", "甲"},
			{"销货清单"},
			{"客户", "乙"},
		},
	}

	orders := ParseSheet(sheet, zerolog.Nop())
	require.Len(t, orders, 2)
	assert.Equal(t, "甲", orders[0].CustomerName)
	assert.Equal(t, "乙", orders[1].CustomerName)
}

func TestParseSheetLegacyFallback(t *testing.T) {
	// No block markers: the whole sheet is one order.
	sheet := &Sheet{
		Name: "木制品详单",
		Rows: [][]string{
			{"客户名称", "王五"},
			itemTableHeader,
			{"柜门", "60", "40", "2", "", "4", "120", "480", ""},
		},
	}

	orders := ParseSheet(sheet, zerolog.Nop())
	require.Len(t, orders, 1)
	assert.Equal(t, "王五", orders[0].CustomerName)
	assert.Equal(t, "木制品", orders[0].Category)
	assert.Len(t, orders[0].Items, 1)
}

func TestParseSheetLegacyFallbackInvalid(t *testing.T) {
	sheet := &Sheet{
		Name: "详单",
		Rows: [][]string{
			{"随便", "什么"},
		},
	}
	assert.Empty(t, ParseSheet(sheet, zerolog.Nop()))
}
