// Package deferred provides a lazily-started, sequenceable unit of work.
//
// An IO value describes a computation without performing it. Nothing runs
// until Run (or a direct call) supplies a context. Invoking the same IO twice
// runs the underlying work twice.
package deferred

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// IO is a deferred computation producing a T.
type IO[T any] func(ctx context.Context) (T, error)

// Run invokes the computation.
func (io IO[T]) Run(ctx context.Context) (T, error) {
	return io(ctx)
}

// Of returns an IO that resolves to v without doing any work.
func Of[T any](v T) IO[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}

// Fail returns an IO that always fails with err.
func Fail[T any](err error) IO[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

// Bind sequences io with next. On success the resolved value is handed to
// next and the resulting IO is awaited. On failure next is never called and
// the error is returned as is.
func Bind[T, U any](io IO[T], next func(T) IO[U]) IO[U] {
	return func(ctx context.Context) (U, error) {
		v, err := io(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return next(v)(ctx)
	}
}

// Lift adapts a plain transformation into a continuation usable with Bind.
func Lift[T, U any](fn func(ctx context.Context, v T) (U, error)) func(T) IO[U] {
	return func(v T) IO[U] {
		return func(ctx context.Context) (U, error) {
			return fn(ctx, v)
		}
	}
}

// Map applies a pure function to the resolved value of io.
func Map[T, U any](io IO[T], fn func(T) U) IO[U] {
	return Bind(io, func(v T) IO[U] { return Of(fn(v)) })
}

// All runs every IO concurrently and resolves to their values in request
// order, independent of completion order. limit bounds the number of
// computations in flight; zero or negative means unbounded.
//
// The first failure wins: it is returned unmodified as soon as it is
// observed, without waiting for the remaining computations. The shared
// context is cancelled for them and their results are dropped.
func All[T any](ios []IO[T], limit int) IO[[]T] {
	return func(ctx context.Context) ([]T, error) {
		out := make([]T, len(ios))
		if len(ios) == 0 {
			return out, nil
		}

		g, gctx := errgroup.WithContext(ctx)
		if limit > 0 {
			g.SetLimit(limit)
		}

		// Buffered so the first failing sibling never blocks on a caller
		// that already returned.
		failed := make(chan error, 1)
		var once sync.Once
		fail := func(err error) error {
			once.Do(func() { failed <- err })
			return err
		}
		done := make(chan struct{})

		// g.Go blocks once limit is reached, so launching happens off the
		// caller's goroutine.
		go func() {
			defer close(done)
			for i, io := range ios {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return fail(err)
					}
					v, err := io(gctx)
					if err != nil {
						return fail(err)
					}
					out[i] = v
					return nil
				})
			}
			_ = g.Wait()
		}()

		select {
		case err := <-failed:
			return nil, err
		case <-done:
		}

		// Every failure is sent before its goroutine returns, so once done
		// is closed the channel already holds it.
		select {
		case err := <-failed:
			return nil, err
		default:
			return out, nil
		}
	}
}
