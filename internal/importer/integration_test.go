package importer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/traceworks/order-import/internal/database"
	"github.com/traceworks/order-import/internal/types"
)

func setupTestDatabase(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(60*time.Second),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(1).
					WithStartupTimeout(60*time.Second),
			),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.Connect(ctx, connStr, 5, 1, 0, 0)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// setupTraceSchema creates the target tables; the optional columns are
// toggled so both insert shapes get exercised.
func setupTraceSchema(ctx context.Context, t *testing.T, pool *pgxpool.Pool, withAddress, withUnit bool) {
	t.Helper()

	addressCol := ""
	if withAddress {
		addressCol = "address TEXT NOT NULL DEFAULT '',"
	}
	unitCol := ""
	if withUnit {
		unitCol = "unit TEXT NOT NULL DEFAULT '',"
	}

	schema := fmt.Sprintf(`
		CREATE TABLE categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL
		);

		CREATE TABLE products (
			id BIGSERIAL PRIMARY KEY,
			category_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			code TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE orders (
			id BIGSERIAL PRIMARY KEY,
			customer_name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			%s
			amount DOUBLE PRECISION NOT NULL CHECK (amount >= 0),
			remark TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			order_no TEXT NOT NULL,
			qr_code TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE order_products (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id),
			product_id BIGINT NOT NULL REFERENCES products(id),
			length DOUBLE PRECISION NOT NULL DEFAULT 0,
			width DOUBLE PRECISION NOT NULL DEFAULT 0,
			height DOUBLE PRECISION NOT NULL DEFAULT 0,
			quantity INT NOT NULL DEFAULT 1,
			%s
			unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`, addressCol, unitCol)

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}

func TestImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := setupTestDatabase(ctx, t)
	setupTraceSchema(ctx, t, pool, true, true)

	_, err := pool.Exec(ctx, `INSERT INTO categories (name) VALUES ('榻榻米垫')`)
	require.NoError(t, err)

	im, err := New(ctx, pool, zerolog.Nop())
	require.NoError(t, err)

	sheets := []types.SheetOrders{
		{
			Sheet: "榻榻米详单",
			Orders: []types.Order{
				{
					Category:     "榻榻米",
					CustomerName: "张三",
					Phone:        "13800000000",
					Address:      "幸福路1号",
					Remark:       "加急",
					Items: []types.LineItem{
						{Name: "Panel", Length: 120, Width: 60, Height: 5, Quantity: 2.5, Unit: "平米", UnitPrice: 100, TotalPrice: 250},
						{Name: "边条", Length: 80, Width: 10, Quantity: 0.5, Unit: "平米", UnitPrice: 160, TotalPrice: 80},
					},
				},
				// Valid order with no items: skipped, not an error.
				{Category: "榻榻米", CustomerName: "李四"},
			},
		},
	}

	result := im.Run(ctx, sheets)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	var orderID int64
	var amount float64
	var status, orderNo, qrCode, address string
	err = pool.QueryRow(ctx, `
		SELECT id, amount, status, order_no, qr_code, address FROM orders
	`).Scan(&orderID, &amount, &status, &orderNo, &qrCode, &address)
	require.NoError(t, err)

	assert.Equal(t, 330.0, amount, "amount is the sum of item totals")
	assert.Equal(t, "待下料", status)
	assert.Regexp(t, `^ORD-\d{14}-\d{6}$`, orderNo)
	assert.Equal(t, fmt.Sprintf("ORDER-%d", orderID), qrCode)
	assert.Equal(t, "幸福路1号", address)

	var itemCount int
	err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM order_products WHERE order_id = $1`, orderID).Scan(&itemCount)
	require.NoError(t, err)
	assert.Equal(t, 2, itemCount)

	// Stored quantities are whole numbers floored at 1.
	var quantities []int
	rows, err := pool.Query(ctx, `SELECT quantity FROM order_products WHERE order_id = $1 ORDER BY id`, orderID)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var q int
		require.NoError(t, rows.Scan(&q))
		quantities = append(quantities, q)
	}
	assert.Equal(t, []int{2, 1}, quantities)

	// The product was auto-created under the seeded category.
	var productName, productCode string
	var categoryID int64
	err = pool.QueryRow(ctx, `SELECT name, code, category_id FROM products`).Scan(&productName, &productCode, &categoryID)
	require.NoError(t, err)
	assert.Equal(t, "榻榻米", productName)
	assert.Len(t, productCode, 6)
	assert.Equal(t, int64(1), categoryID, "resolved by substring match against 榻榻米垫")
}

func TestImportWithoutOptionalColumns(t *testing.T) {
	ctx := context.Background()
	pool := setupTestDatabase(ctx, t)
	setupTraceSchema(ctx, t, pool, false, false)

	im, err := New(ctx, pool, zerolog.Nop())
	require.NoError(t, err)

	sheets := []types.SheetOrders{
		{
			Sheet: "回弹棉详单",
			Orders: []types.Order{
				{
					Category:     "回弹棉",
					CustomerName: "王五",
					Address:      "会被忽略",
					Items: []types.LineItem{
						{Length: 100, Width: 50, Quantity: 2, Unit: "平米", TotalPrice: 90},
					},
				},
			},
		},
	}

	result := im.Run(ctx, sheets)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Failed)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestImportFailureRollsBackAndContinues(t *testing.T) {
	ctx := context.Background()
	pool := setupTestDatabase(ctx, t)
	setupTraceSchema(ctx, t, pool, true, true)

	im, err := New(ctx, pool, zerolog.Nop())
	require.NoError(t, err)

	sheets := []types.SheetOrders{
		{
			Sheet: "详单",
			Orders: []types.Order{
				// Negative amount violates the check constraint; the whole
				// order must roll back.
				{
					Category:     "垫",
					CustomerName: "坏订单",
					Items:        []types.LineItem{{Length: 10, Width: 10, TotalPrice: -5}},
				},
				{
					Category:     "垫",
					CustomerName: "好订单",
					Items:        []types.LineItem{{Length: 10, Width: 10, Quantity: 1, Unit: "平米", TotalPrice: 50}},
				},
			},
		},
	}

	result := im.Run(ctx, sheets)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)

	var orderCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orderCount))
	assert.Equal(t, 1, orderCount, "failed order leaves no rows behind")

	var customer string
	require.NoError(t, pool.QueryRow(ctx, `SELECT customer_name FROM orders`).Scan(&customer))
	assert.Equal(t, "好订单", customer)
}
