// internal/service/resource.go
package service

import (
	"context"
	"log/slog"

	appErrors "github.com/unclebandit/storefront-backend/internal/errors"
	"github.com/unclebandit/storefront-backend/internal/queue"
	"github.com/unclebandit/storefront-backend/internal/store"
)

// resource is the list/get/create/update/delete contract every collection
// service shares. entity names a single record in client messages
// ("customer"); collection is the table and event topic prefix.
type resource[T any] struct {
	table      store.Collection[T]
	entity     string
	collection string
	events     queue.Publisher
}

func (r resource[T]) list(ctx context.Context, where store.Filter) ([]T, error) {
	recs, err := r.table.Find(ctx, where)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

func (r resource[T]) get(ctx context.Context, id string) (T, error) {
	rec, err := r.table.Get(ctx, id)
	if err != nil {
		return rec, r.canonical(err)
	}
	return rec, nil
}

func (r resource[T]) create(ctx context.Context, values store.Values) (T, error) {
	rec, err := r.table.Insert(ctx, values)
	if err != nil {
		return rec, r.canonical(err)
	}
	r.publish("created", rec)
	return rec, nil
}

func (r resource[T]) update(ctx context.Context, id string, values store.Values, action string) (T, error) {
	if len(values) == 0 {
		var zero T
		return zero, appErrors.NewValidation("no fields provided to update", nil)
	}
	m, err := r.table.Update(ctx, store.ByID(id), values)
	if err != nil {
		var zero T
		return zero, r.canonical(err)
	}
	rec, err := store.Single(m, r.entity)
	if err != nil {
		return rec, err
	}
	r.publish(action, rec)
	return rec, nil
}

func (r resource[T]) remove(ctx context.Context, id string) (T, error) {
	m, err := r.table.Delete(ctx, store.ByID(id))
	if err != nil {
		var zero T
		return zero, r.canonical(err)
	}
	rec, err := store.Single(m, r.entity)
	if err != nil {
		return rec, err
	}
	r.publish("deleted", rec)
	return rec, nil
}

// canonical folds every not-found shape into "<entity> not found".
func (r resource[T]) canonical(err error) error {
	if appErrors.IsNotFound(err) {
		return appErrors.NewNotFound(r.entity)
	}
	return err
}

// publish never fails the request; the mutation is already committed.
func (r resource[T]) publish(action string, rec T) {
	if r.events == nil {
		return
	}
	topic := queue.Topic(r.collection, action)
	if err := r.events.Publish(topic, queue.NewEvent(topic, rec)); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "err", err)
	}
}
