// internal/store/postgres/table.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/storefront-backend/internal/errors"
	"github.com/unclebandit/storefront-backend/internal/store"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one row, in Table column order, into a T.
type ScanFunc[T any] func(Scanner) (T, error)

// Table is a store.Collection backed by one Postgres table.
type Table[T any] struct {
	db      *sql.DB
	name    string
	columns []string
	scan    ScanFunc[T]
	psql    sq.StatementBuilderType
}

var _ store.Collection[struct{}] = (*Table[struct{}])(nil)

func NewTable[T any](db *sql.DB, name string, columns []string, scan ScanFunc[T]) *Table[T] {
	return &Table[T]{
		db:      db,
		name:    name,
		columns: columns,
		scan:    scan,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (t *Table[T]) returning() string {
	return "RETURNING " + strings.Join(t.columns, ", ")
}

func (t *Table[T]) Find(ctx context.Context, where store.Filter) ([]T, error) {
	q := t.psql.Select(t.columns...).From(t.name).OrderBy("created_at", "id")
	if len(where) > 0 {
		q = q.Where(sq.Eq(where))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, appErrors.NewStore("build select "+t.name, err)
	}
	return t.queryRows(ctx, "select "+t.name, query, args)
}

func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	query, args, err := t.psql.Select(t.columns...).From(t.name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		var zero T
		return zero, appErrors.NewStore("build get "+t.name, err)
	}
	rec, err := t.scan(t.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return rec, t.translate("get "+t.name, err)
	}
	return rec, nil
}

func (t *Table[T]) Insert(ctx context.Context, values store.Values) (T, error) {
	query, args, err := t.psql.Insert(t.name).SetMap(values).Suffix(t.returning()).ToSql()
	if err != nil {
		var zero T
		return zero, appErrors.NewStore("build insert "+t.name, err)
	}
	rec, err := t.scan(t.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return rec, t.translate("insert "+t.name, err)
	}
	return rec, nil
}

func (t *Table[T]) Update(ctx context.Context, where store.Filter, values store.Values) (store.Mutation[T], error) {
	query, args, err := t.psql.Update(t.name).
		SetMap(values).
		Where(sq.Eq(where)).
		Suffix(t.returning()).
		ToSql()
	if err != nil {
		return store.Mutation[T]{}, appErrors.NewStore("build update "+t.name, err)
	}
	return t.mutate(ctx, "update "+t.name, query, args)
}

func (t *Table[T]) Delete(ctx context.Context, where store.Filter) (store.Mutation[T], error) {
	query, args, err := t.psql.Delete(t.name).
		Where(sq.Eq(where)).
		Suffix(t.returning()).
		ToSql()
	if err != nil {
		return store.Mutation[T]{}, appErrors.NewStore("build delete "+t.name, err)
	}
	return t.mutate(ctx, "delete "+t.name, query, args)
}

func (t *Table[T]) mutate(ctx context.Context, op, query string, args []any) (store.Mutation[T], error) {
	recs, err := t.queryRows(ctx, op, query, args)
	if err != nil {
		return store.Mutation[T]{}, err
	}
	return store.Mutation[T]{Affected: len(recs), Records: recs}, nil
}

func (t *Table[T]) queryRows(ctx context.Context, op, query string, args []any) ([]T, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.translate(op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, t.translate(op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, t.translate(op, err)
	}
	return out, nil
}

// translate maps driver failures onto the adapter error taxonomy.
func (t *Table[T]) translate(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NewNotFound(t.name)
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return appErrors.NewStore(op, err)
	}
	switch pqErr.Code.Name() {
	case "unique_violation":
		return appErrors.NewConflict(conflictField(t.name, pqErr), err)
	case "invalid_text_representation", "numeric_value_out_of_range",
		"not_null_violation", "check_violation", "string_data_right_truncation":
		field := pqErr.Column
		if field == "" {
			field = "value"
		}
		return &appErrors.Error{
			Kind:    appErrors.KindValidation,
			Message: "invalid " + field,
			Err:     err,
		}
	default:
		return appErrors.NewStore(op, err)
	}
}

// conflictField recovers the column name of a unique violation, first from
// the "Key (col)=(val) already exists." detail, then from the
// <table>_<col>_key constraint naming convention.
func conflictField(table string, e *pq.Error) string {
	if rest, ok := strings.CutPrefix(e.Detail, "Key ("); ok {
		if col, _, ok := strings.Cut(rest, ")"); ok && !strings.ContainsAny(col, ", ") {
			return col
		}
	}
	c := strings.TrimPrefix(e.Constraint, table+"_")
	if col, ok := strings.CutSuffix(c, "_key"); ok && col != "" {
		return col
	}
	return ""
}
