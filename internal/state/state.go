// Package state holds lifecycle-bound caches of team data for the admin
// console and the public pages. Each container is created per consumer,
// loaded on Mount and torn down with Close; nothing here is process-wide.
package state

import (
	"context"
	"errors"
	"sync"

	"cafe-team.backend/pkg/logger"
	"go.uber.org/zap"
)

// ErrClosed is returned by containers used after Close.
var ErrClosed = errors.New("state container closed")

// Status is the consumer-visible phase of a container.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusReady   Status = "ready"
)

// query is a cached remote read with a loading flag and an error slot.
// Every load is tagged with a generation so an older response never
// overwrites a newer one, and responses after close are dropped.
type query[T any] struct {
	mu      sync.RWMutex
	data    T
	loading bool
	err     string
	gen     uint64
	closed  bool

	fetch   func(ctx context.Context) (T, error)
	failure string
}

func newQuery[T any](failure string, fetch func(ctx context.Context) (T, error)) *query[T] {
	return &query[T]{
		loading: true,
		fetch:   fetch,
		failure: failure,
	}
}

func (q *query[T]) load(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.gen++
	gen := q.gen
	q.loading = true
	q.err = ""
	q.mu.Unlock()

	data, err := q.fetch(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || gen != q.gen {
		return err
	}
	q.loading = false
	if err != nil {
		logger.Error(ctx, q.failure, zap.Error(err))
		q.err = q.failure
		return err
	}
	q.data = data
	return nil
}

func (q *query[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *query[T]) status() Status {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return statusOf(q.loading, q.err)
}

func (q *query[T]) errorMessage() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.err
}

func (q *query[T]) isLoading() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.loading
}

// read hands the cached value to f under the read lock.
func (q *query[T]) read(f func(T)) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	f(q.data)
}

func statusOf(loading bool, err string) Status {
	switch {
	case loading:
		return StatusLoading
	case err != "":
		return StatusError
	default:
		return StatusReady
	}
}
