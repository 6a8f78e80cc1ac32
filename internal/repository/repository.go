// Package repository holds the SQL of every aggregate. Queries are plain
// pgx with named arguments; rows are scanned by column name into the model
// structs. Every tenant-scoped query filters on institution_id.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/edufinance/internal/database"
	"github.com/deppfellow/edufinance/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

// optional turns the zero value into SQL NULL so `@arg::type IS NULL`
// disables a filter.
func optional[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}

// one collects exactly one row, mapping pgx.ErrNoRows to a not-found
// error naming table.
func one[T any](rows pgx.Rows, err error, table string) (*T, error) {
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound(table)
	}
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", table, err)
	}
	return item, nil
}

// many collects every row; an empty result is an empty, non-nil slice.
func many[T any](rows pgx.Rows, err error, table string) ([]T, error) {
	if err != nil {
		return nil, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", table, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// execOne runs a statement and reports not-found when it touched no row.
func execOne(ctx context.Context, q database.DBTX, table, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound(table)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func notFound(table string) error {
	return sqlerr.NotFound(table)
}
