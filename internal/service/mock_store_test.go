package service

import (
	"context"
	"sync"

	"github.com/unclebandit/storefront-backend/internal/store"
	"github.com/unclebandit/storefront-backend/internal/store/memory"
)

// spyStore wraps an in-memory table, counts calls, and can be told to fail
// or to fake a mutation result.
type spyStore[T any] struct {
	inner store.Collection[T]

	mu          sync.Mutex
	findCalls   int
	getCalls    int
	insertCalls int
	updateCalls int
	deleteCalls int
	lastWhere   store.Filter
	lastValues  store.Values

	err      error
	mutation *store.Mutation[T]
}

func newSpyStore[T any](name string, opts ...memory.Option) *spyStore[T] {
	return &spyStore[T]{inner: memory.NewTable[T](name, opts...)}
}

func (s *spyStore[T]) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalls + s.getCalls + s.insertCalls + s.updateCalls + s.deleteCalls
}

func (s *spyStore[T]) Find(ctx context.Context, where store.Filter) ([]T, error) {
	s.mu.Lock()
	s.findCalls++
	s.lastWhere = where
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.Find(ctx, where)
}

func (s *spyStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.Lock()
	s.getCalls++
	s.mu.Unlock()
	if s.err != nil {
		var zero T
		return zero, s.err
	}
	return s.inner.Get(ctx, id)
}

func (s *spyStore[T]) Insert(ctx context.Context, values store.Values) (T, error) {
	s.mu.Lock()
	s.insertCalls++
	s.lastValues = values
	s.mu.Unlock()
	if s.err != nil {
		var zero T
		return zero, s.err
	}
	return s.inner.Insert(ctx, values)
}

func (s *spyStore[T]) Update(ctx context.Context, where store.Filter, values store.Values) (store.Mutation[T], error) {
	s.mu.Lock()
	s.updateCalls++
	s.lastWhere = where
	s.lastValues = values
	s.mu.Unlock()
	if s.err != nil {
		return store.Mutation[T]{}, s.err
	}
	if s.mutation != nil {
		return *s.mutation, nil
	}
	return s.inner.Update(ctx, where, values)
}

func (s *spyStore[T]) Delete(ctx context.Context, where store.Filter) (store.Mutation[T], error) {
	s.mu.Lock()
	s.deleteCalls++
	s.lastWhere = where
	s.mu.Unlock()
	if s.err != nil {
		return store.Mutation[T]{}, s.err
	}
	if s.mutation != nil {
		return *s.mutation, nil
	}
	return s.inner.Delete(ctx, where)
}

// recordingPublisher captures published topics.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return p.err
}
