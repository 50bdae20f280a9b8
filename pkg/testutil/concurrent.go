package testutil

import (
	"sync"

	"golang.org/x/sync/errgroup"

	dErrors "creditboard/pkg/domain-errors"
)

// Outcomes tallies the results of concurrent calls by domain code.
type Outcomes struct {
	Succeeded int
	Failed    map[dErrors.Code]int
}

// Count returns how many calls failed with code.
func (o Outcomes) Count(code dErrors.Code) int {
	return o.Failed[code]
}

func (o Outcomes) Total() int {
	n := o.Succeeded
	for _, c := range o.Failed {
		n += c
	}
	return n
}

// RunConcurrent calls fn from n goroutines at once and waits for all of
// them. Uncoded errors are counted under CodeInternal.
func RunConcurrent(n int, fn func(i int) error) Outcomes {
	out := Outcomes{Failed: make(map[dErrors.Code]int)}
	var mu sync.Mutex
	start := make(chan struct{})

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			<-start
			err := fn(i)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				out.Succeeded++
			} else {
				out.Failed[dErrors.CodeOf(err)]++
			}
			return nil
		})
	}
	close(start)
	_ = g.Wait()
	return out
}
