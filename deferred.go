package keydex

import (
	"context"
	"sync"
)

// Deferred is a one-shot future: a not-yet-computed value resolved at most
// once by whatever scheduler first awaits it. Resolution is memoized, so every
// await observes the same result. There is no cancellation primitive at this
// layer; a caller abandoning Await via its context does not stop the
// computation for other awaiters.
type Deferred[T any] struct {
	run  func(context.Context) (T, error)
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewDeferred wraps a computation without starting it.
func NewDeferred[T any](run func(context.Context) (T, error)) *Deferred[T] {
	return &Deferred[T]{run: run, done: make(chan struct{})}
}

// Resolved returns an already-completed deferred. Eager representations use it
// so AsyncMaterialize never blocks.
func Resolved[T any](v T) *Deferred[T] {
	d := &Deferred[T]{done: make(chan struct{}), val: v}
	d.once.Do(func() {})
	close(d.done)
	return d
}

// Await starts the computation on first call and blocks until it completes or
// ctx is done. The computation runs with the first awaiter's context.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	d.once.Do(func() {
		go func() {
			d.val, d.err = d.run(ctx)
			close(d.done)
		}()
	})

	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the computation has completed.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}
