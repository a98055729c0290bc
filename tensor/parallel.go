// Package tensor: per-sector parallel dispatch.
//
// Every blockwise operation touches exactly one coupled sector's disjoint
// arena range, so per-sector closures need no synchronization beyond the
// final gather. There is deliberately no context, cancellation or timeout:
// all work is synchronous and CPU-bound, and a failing closure simply wins
// the gather with its error.
package tensor

import (
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/symtensor/sector"
)

// eachSector runs fn once per sector, fanning out across at most o.workers
// goroutines. With one worker (or fewer than two sectors) it degenerates to
// a plain loop — no goroutines, no overhead, identical results.
//
// Determinism: fn instances write disjoint state by construction (I1), so
// scheduling order cannot influence any result.
func (o Options) eachSector(sectors []sector.Sector, fn func(c sector.Sector) error) error {
	if o.workers <= 1 || len(sectors) < 2 {
		for _, c := range sectors {
			if err := fn(c); err != nil {
				return err
			}
		}

		return nil
	}

	var g errgroup.Group
	g.SetLimit(o.workers)
	for _, c := range sectors {
		c := c
		g.Go(func() error { return fn(c) })
	}

	return g.Wait()
}

// eachIndex is eachSector over plain positions, for operations that stage
// per-sector results into pre-sized slices.
func (o Options) eachIndex(n int, fn func(i int) error) error {
	if o.workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}

		return nil
	}

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}

	return g.Wait()
}
