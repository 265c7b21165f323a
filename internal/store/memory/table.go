// internal/store/memory/table.go
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/storefront-backend/internal/errors"
	"github.com/unclebandit/storefront-backend/internal/store"
)

// Table is an in-process store.Collection. Rows are column maps decoded into
// T through T's json tags, so tags must match column names.
type Table[T any] struct {
	mu       sync.RWMutex
	name     string
	unique   []string
	defaults store.Values
	rows     []map[string]any

	NewID func() string
	Now   func() time.Time
}

var _ store.Collection[struct{}] = (*Table[struct{}])(nil)

type Option func(*options)

type options struct {
	unique   []string
	defaults store.Values
}

// Unique rejects writes that would duplicate a value in any of cols.
func Unique(cols ...string) Option {
	return func(o *options) { o.unique = append(o.unique, cols...) }
}

// Default fills col with v on insert when the caller omits it.
func Default(col string, v any) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = store.Values{}
		}
		o.defaults[col] = v
	}
}

func NewTable[T any](name string, opts ...Option) *Table[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Table[T]{
		name:     name,
		unique:   o.unique,
		defaults: o.defaults,
		NewID:    uuid.NewString,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (t *Table[T]) Find(ctx context.Context, where store.Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.NewStore("select "+t.name, err)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := []T{}
	for _, row := range t.rows {
		if !matches(row, where) {
			continue
		}
		rec, err := t.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	recs, err := t.Find(ctx, store.ByID(id))
	if err != nil {
		var zero T
		return zero, err
	}
	if len(recs) == 0 {
		var zero T
		return zero, appErrors.NewNotFound(t.name)
	}
	return recs[0], nil
}

func (t *Table[T]) Insert(ctx context.Context, values store.Values) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, appErrors.NewStore("insert "+t.name, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	row := map[string]any{}
	for k, v := range t.defaults {
		row[k] = v
	}
	for k, v := range values {
		row[k] = normalize(v)
	}
	row["id"] = t.NewID()
	row["created_at"] = t.Now()

	if err := t.checkUnique(row, -1); err != nil {
		return zero, err
	}
	rec, err := t.decode(row)
	if err != nil {
		return zero, err
	}
	t.rows = append(t.rows, row)
	return rec, nil
}

func (t *Table[T]) Update(ctx context.Context, where store.Filter, values store.Values) (store.Mutation[T], error) {
	if err := ctx.Err(); err != nil {
		return store.Mutation[T]{}, appErrors.NewStore("update "+t.name, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var hits []int
	next := make(map[int]map[string]any)
	for i, row := range t.rows {
		if !matches(row, where) {
			continue
		}
		updated := make(map[string]any, len(row))
		for k, v := range row {
			updated[k] = v
		}
		for k, v := range values {
			if k == "id" || k == "created_at" {
				continue
			}
			updated[k] = normalize(v)
		}
		if err := t.checkUnique(updated, i); err != nil {
			return store.Mutation[T]{}, err
		}
		hits = append(hits, i)
		next[i] = updated
	}

	m := store.Mutation[T]{Affected: len(hits), Records: []T{}}
	for _, i := range hits {
		rec, err := t.decode(next[i])
		if err != nil {
			return store.Mutation[T]{}, err
		}
		m.Records = append(m.Records, rec)
	}
	for _, i := range hits {
		t.rows[i] = next[i]
	}
	return m, nil
}

func (t *Table[T]) Delete(ctx context.Context, where store.Filter) (store.Mutation[T], error) {
	if err := ctx.Err(); err != nil {
		return store.Mutation[T]{}, appErrors.NewStore("delete "+t.name, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	m := store.Mutation[T]{Records: []T{}}
	kept := t.rows[:0:0]
	for _, row := range t.rows {
		if !matches(row, where) {
			kept = append(kept, row)
			continue
		}
		rec, err := t.decode(row)
		if err != nil {
			return store.Mutation[T]{}, err
		}
		m.Records = append(m.Records, rec)
	}
	m.Affected = len(m.Records)
	t.rows = kept
	return m, nil
}

// checkUnique must be called with the write lock held. skip is the index of
// the row being replaced, or -1 on insert.
func (t *Table[T]) checkUnique(row map[string]any, skip int) error {
	for _, col := range t.unique {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		for i, other := range t.rows {
			if i == skip {
				continue
			}
			if equal(other[col], v) {
				return appErrors.NewConflict(col, fmt.Errorf("%s.%s duplicate value", t.name, col))
			}
		}
	}
	return nil
}

func (t *Table[T]) decode(row map[string]any) (T, error) {
	var rec T
	b, err := json.Marshal(row)
	if err != nil {
		return rec, appErrors.NewStore("encode "+t.name+" row", err)
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, appErrors.NewStore("decode "+t.name+" row", err)
	}
	return rec, nil
}

func matches(row map[string]any, where store.Filter) bool {
	for col, want := range where {
		if !equal(row[col], normalize(want)) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// normalize dereferences pointers so stored rows hold plain values.
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
