// Package live provides continuously-updated query results.
//
// A Stream runs its query once, emits the result, and runs it again every
// time a Notifier signals a change on one of the observed topics. Streams stop
// when the context they were created with is cancelled.
//
//	stream := live.Watch(ctx, hub, func(ctx context.Context) ([]entities.Plant, error) {
//		return store.GetPlants(ctx)
//	}, "plants")
//
//	for plants := range stream.Values() {
//		render(plants)
//	}
package live

import (
	"context"
	"errors"
	"sync"
)

// ErrNoValue may be returned by a QueryFunc to skip emitting the current snapshot.
var ErrNoValue = errors.New("live: no value")

// ErrClosed is returned by First when the stream ended without a value.
var ErrClosed = errors.New("live: stream closed")

// QueryFunc produces one snapshot of a stream.
type QueryFunc[T any] func(ctx context.Context) (T, error)

// Stream is a sequence of query snapshots.
type Stream[T any] struct {
	values chan T

	mu  sync.Mutex
	err error
}

func newStream[T any]() *Stream[T] {
	return &Stream[T]{values: make(chan T)}
}

// Watch starts a stream that re-runs query whenever one of topics changes.
func Watch[T any](ctx context.Context, n Notifier, query QueryFunc[T], topics ...string) *Stream[T] {
	s := newStream[T]()

	// Subscribe before the first query so no change between the two is lost.
	changes, unsubscribe := n.Subscribe(topics...)

	go func() {
		defer close(s.values)
		defer unsubscribe()

		for {
			v, err := query(ctx)
			switch {
			case ctx.Err() != nil:
				return
			case errors.Is(err, ErrNoValue):
			case err != nil:
				s.fail(err)
				return
			default:
				if !s.send(ctx, v) {
					return
				}
			}

			select {
			case <-changes:
			case <-ctx.Done():
				return
			}
		}
	}()

	return s
}

// Map returns a stream emitting fn applied to every value of src.
func Map[T, U any](ctx context.Context, src *Stream[T], fn func(T) U) *Stream[U] {
	s := newStream[U]()

	go func() {
		defer close(s.values)

		for {
			select {
			case v, ok := <-src.values:
				if !ok {
					s.fail(src.Err())
					return
				}
				if !s.send(ctx, fn(v)) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return s
}

// Switch forwards the values of the stream returned by open. Each time one of
// topics changes the current inner stream is cancelled and open is called again,
// so values computed for stale parameters are never delivered.
func Switch[T any](ctx context.Context, n Notifier, open func(ctx context.Context) *Stream[T], topics ...string) *Stream[T] {
	s := newStream[T]()
	changes, unsubscribe := n.Subscribe(topics...)

	go func() {
		defer close(s.values)
		defer unsubscribe()

		for {
			innerCtx, cancel := context.WithCancel(ctx)
			switched, err := s.forward(ctx, open(innerCtx), changes)
			cancel()

			if err != nil {
				s.fail(err)
				return
			}
			if !switched {
				return
			}
		}
	}()

	return s
}

// forward copies inner into s until a switch is requested (true) or ctx ends (false).
func (s *Stream[T]) forward(ctx context.Context, inner *Stream[T], changes <-chan struct{}) (bool, error) {
	for {
		select {
		case v, ok := <-inner.values:
			if !ok {
				if err := inner.Err(); err != nil {
					return false, err
				}
				select {
				case <-changes:
					return true, nil
				case <-ctx.Done():
					return false, nil
				}
			}
			select {
			case s.values <- v:
			case <-changes:
				return true, nil
			case <-ctx.Done():
				return false, nil
			}
		case <-changes:
			return true, nil
		case <-ctx.Done():
			return false, nil
		}
	}
}

// Values returns the channel of snapshots. It is closed when the stream ends.
func (s *Stream[T]) Values() <-chan T {
	return s.values
}

// Err returns the error that ended the stream, if any. It is only meaningful
// after Values has been closed.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// First waits for the next snapshot.
func (s *Stream[T]) First(ctx context.Context) (T, error) {
	var zero T
	select {
	case v, ok := <-s.values:
		if !ok {
			if err := s.Err(); err != nil {
				return zero, err
			}
			return zero, ErrClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *Stream[T]) send(ctx context.Context, v T) bool {
	select {
	case s.values <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Stream[T]) fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
