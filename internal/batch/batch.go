// Package batch runs independently-pushed computations concurrently and
// collects every result. It never short-circuits: a pushed computation is
// expected to have absorbed its own failures into its result value.
package batch

import (
	"context"
	"sync"
)

type Batch[T any] struct {
	fns []func(context.Context) T
}

func New[T any]() *Batch[T] {
	return &Batch[T]{}
}

// Push queues fn for execution. Nothing runs until Run is called.
func (b *Batch[T]) Push(fn func(context.Context) T) {
	b.fns = append(b.fns, fn)
}

func (b *Batch[T]) Len() int {
	return len(b.fns)
}

// Run executes every queued computation in its own goroutine, waits for all
// of them to finish, and returns their results in push order. Run carries no
// timeout of its own; callers wanting bounded latency wrap their computations
// before pushing.
func (b *Batch[T]) Run(ctx context.Context) []T {
	results := make([]T, len(b.fns))
	var wg sync.WaitGroup
	for i, fn := range b.fns {
		i, fn := i, fn
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fn(ctx)
		}()
	}
	wg.Wait()
	return results
}
