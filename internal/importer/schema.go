package importer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaShape records which optional columns the target schema carries.
// Older trace deployments predate the orders.address and
// order_products.unit columns, so both insert shapes must be supported.
type schemaShape struct {
	hasAddress bool
	hasUnit    bool
}

// detectSchema probes information_schema once per run for the optional
// columns.
func detectSchema(ctx context.Context, pool *pgxpool.Pool) (schemaShape, error) {
	var shape schemaShape
	var err error

	if shape.hasAddress, err = columnExists(ctx, pool, "orders", "address"); err != nil {
		return shape, err
	}
	if shape.hasUnit, err = columnExists(ctx, pool, "order_products", "unit"); err != nil {
		return shape, err
	}
	return shape, nil
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, table, column string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2
		)
	`, table, column).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe %s.%s: %w", table, column, err)
	}
	return exists, nil
}
