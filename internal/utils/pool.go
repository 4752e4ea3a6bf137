package utils

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Sequential forces ParallelMap to run on the calling goroutine. Tests flip
// it to pin deterministic execution; the pipeline leaves it false.
var Sequential = false

// ParallelMap applies f to every element independently on a bounded pool and
// returns the results sorted by index. No work item blocks on another.
func ParallelMap[T, U any](items []Indexed[T], f func(Indexed[T]) Indexed[U]) []Indexed[U] {
	out := make([]Indexed[U], len(items))
	if Sequential {
		for i, item := range items {
			out[i] = f(item)
		}
		SortIndexed(out)
		return out
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, item := range items {
		g.Go(func() error {
			out[i] = f(item)
			return nil
		})
	}
	// workers never return errors; results travel inside Indexed values
	_ = g.Wait()
	SortIndexed(out)
	return out
}
