// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all site entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// psql builds statements with Postgres $1, $2 placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Sentinel errors returned by write operations.
var (
	// ErrInvalidParent is returned when a subcategory is attached to anything
	// other than an existing main category.
	ErrInvalidParent = errors.New("parent must be an existing main category")

	// ErrDuplicateStepNumber is returned when a work step number is taken.
	ErrDuplicateStepNumber = errors.New("work step with this step number already exists")
)

// Pagination defaults shared by the public and admin listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the requested page to sane bounds.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() uint64 {
	return uint64((p.Number - 1) * p.Size)
}

// selectAll runs a squirrel select and scans every row into T.
func selectAll[T any](ctx context.Context, db *sql.DB, q sq.SelectBuilder) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	items := []T{}
	if err := sqlscan.Select(ctx, db, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// selectOne runs a squirrel select expected to return at most one row.
// Returns nil when nothing matches.
func selectOne[T any](ctx context.Context, db *sql.DB, q sq.SelectBuilder) (*T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var item T
	if err := sqlscan.Get(ctx, db, &item, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// getReturning executes a write built by the caller and scans the RETURNING
// row. Returns nil when the statement touched no rows.
func getReturning[T any](ctx context.Context, db *sql.DB, b sq.Sqlizer) (*T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var item T
	if err := sqlscan.Get(ctx, db, &item, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// paginate counts the rows matched by base, then fetches one page of them.
// base must carry FROM and WHERE clauses but no columns.
func paginate[T any](ctx context.Context, db *sql.DB, base sq.SelectBuilder, columns []string, page Page, orderBy ...string) ([]T, int, error) {
	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rows: %w", err)
	}

	items, err := selectAll[T](ctx, db, base.Columns(columns...).
		OrderBy(orderBy...).
		Limit(uint64(page.Size)).
		Offset(page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation on
// the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

// searchPattern turns a user search term into an ILIKE pattern.
func searchPattern(term string) string {
	return "%" + escapeLike(term) + "%"
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// returning renders a RETURNING clause for the given columns.
func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}

// deleteByID removes one row from table and reports whether it existed.
func deleteByID(ctx context.Context, db *sql.DB, table string, id uuid.UUID) (bool, error) {
	query, args, err := psql.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s rows affected: %w", table, err)
	}
	return n > 0, nil
}
