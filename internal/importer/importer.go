// Package importer persists parsed orders into the trace schema, one
// transaction per order.
package importer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/traceworks/order-import/internal/pkg/ordercode"
	"github.com/traceworks/order-import/internal/types"
)

// defaultCategoryID is the fallback when the fuzzy category lookup misses.
const defaultCategoryID = 1

// statusInitial is the status every imported order starts in.
const statusInitial = "待下料"

// Importer writes orders to the database. Construct one per run; the
// schema shape is probed once at construction.
type Importer struct {
	pool  *pgxpool.Pool
	log   zerolog.Logger
	shape schemaShape
}

// New creates an Importer and probes the target schema for its optional
// columns.
func New(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) (*Importer, error) {
	shape, err := detectSchema(ctx, pool)
	if err != nil {
		return nil, err
	}
	log.Info().
		Bool("address", shape.hasAddress).
		Bool("unit", shape.hasUnit).
		Msg("Detected schema shape")
	return &Importer{pool: pool, log: log, shape: shape}, nil
}

// Run imports every order from every sheet, in parse order. Orders without
// line items are skipped and reported; a failed order is rolled back,
// counted, and never aborts the batch.
func (im *Importer) Run(ctx context.Context, sheets []types.SheetOrders) types.ImportResult {
	var result types.ImportResult

	for _, sheet := range sheets {
		for i := range sheet.Orders {
			order := &sheet.Orders[i]

			if len(order.Items) == 0 {
				im.log.Warn().
					Str("customer", order.CustomerName).
					Str("sheet", sheet.Sheet).
					Msg("Order has no line items, skipped")
				result.Skipped++
				continue
			}

			if err := im.importOrder(ctx, order); err != nil {
				im.log.Error().
					Str("customer", order.CustomerName).
					Err(err).
					Msg("Order import failed")
				result.Failed++
				continue
			}

			result.Imported++
			im.log.Info().
				Str("customer", order.CustomerName).
				Float64("amount", order.TotalAmount()).
				Int("items", len(order.Items)).
				Msg("Order imported")
		}
	}
	return result
}

// importOrder persists one order header and its line items inside a single
// transaction.
func (im *Importer) importOrder(ctx context.Context, order *types.Order) error {
	tx, err := im.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	productID, err := im.resolveProduct(ctx, tx, order.Category)
	if err != nil {
		return err
	}

	orderID, err := im.insertOrder(ctx, tx, order)
	if err != nil {
		return err
	}

	// The QR value derives from the generated id, so it is filled in a
	// second step.
	if _, err := tx.Exec(ctx, `UPDATE orders SET qr_code = $1 WHERE id = $2`,
		ordercode.QRCode(orderID), orderID); err != nil {
		return fmt.Errorf("failed to update qr_code: %w", err)
	}

	for i := range order.Items {
		if err := im.insertItem(ctx, tx, orderID, productID, &order.Items[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// resolveProduct finds the product matching the order's category by exact
// name, or creates one: category resolved by substring lookup (falling back
// to the default category), code freshly generated.
func (im *Importer) resolveProduct(ctx context.Context, tx pgx.Tx, category string) (int64, error) {
	var productID int64
	err := tx.QueryRow(ctx, `SELECT id FROM products WHERE name = $1 LIMIT 1`, category).Scan(&productID)
	if err == nil {
		return productID, nil
	}
	if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("failed to look up product %q: %w", category, err)
	}

	categoryID := int64(defaultCategoryID)
	err = tx.QueryRow(ctx, `SELECT id FROM categories WHERE name LIKE '%' || $1 || '%' LIMIT 1`, category).Scan(&categoryID)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("failed to look up category %q: %w", category, err)
	}

	code := ordercode.ProductCode()
	err = tx.QueryRow(ctx, `
		INSERT INTO products (category_id, name, code, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id
	`, categoryID, category, code).Scan(&productID)
	if err != nil {
		return 0, fmt.Errorf("failed to create product %q: %w", category, err)
	}

	im.log.Info().Str("product", category).Str("code", code).Msg("Auto-created product")
	return productID, nil
}

// insertOrder inserts the order header and returns its generated id. The
// insert shape depends on whether the schema carries orders.address.
func (im *Importer) insertOrder(ctx context.Context, tx pgx.Tx, order *types.Order) (int64, error) {
	orderNo := ordercode.OrderNo()
	amount := order.TotalAmount()

	var orderID int64
	var err error
	if im.shape.hasAddress {
		err = tx.QueryRow(ctx, `
			INSERT INTO orders
				(customer_name, phone, address, amount, remark, status, order_no, qr_code, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, '', NOW(), NOW())
			RETURNING id
		`, order.CustomerName, order.Phone, order.Address, amount, order.Remark, statusInitial, orderNo).Scan(&orderID)
	} else {
		err = tx.QueryRow(ctx, `
			INSERT INTO orders
				(customer_name, phone, amount, remark, status, order_no, qr_code, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, '', NOW(), NOW())
			RETURNING id
		`, order.CustomerName, order.Phone, amount, order.Remark, statusInitial, orderNo).Scan(&orderID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	return orderID, nil
}

// insertItem inserts one order line. The parsed quantity keeps its
// fractional value for reporting; the stored quantity is whole, floored
// at 1.
func (im *Importer) insertItem(ctx context.Context, tx pgx.Tx, orderID, productID int64, item *types.LineItem) error {
	quantity := int(item.Quantity)
	if item.Quantity < 1 {
		quantity = 1
	}

	var err error
	if im.shape.hasUnit {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_products
				(order_id, product_id, length, width, height, quantity, unit, unit_price, total_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		`, orderID, productID, item.Length, item.Width, item.Height, quantity, item.Unit, item.UnitPrice, item.TotalPrice)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_products
				(order_id, product_id, length, width, height, quantity, unit_price, total_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		`, orderID, productID, item.Length, item.Width, item.Height, quantity, item.UnitPrice, item.TotalPrice)
	}
	if err != nil {
		return fmt.Errorf("failed to insert line item: %w", err)
	}
	return nil
}
