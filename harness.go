package tearcheck

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Default run shape: 10 workers, a million iterations each.
const (
	DefaultWorkers    = 10
	DefaultIterations = 1_000_000
)

// Shared location names, reported on failure.
const (
	locStatic   = "static"
	locInstance = "instance"
	locElement  = "element"
)

// staticCells are the process-wide locations, one per representation.
// Every harness of a given representation races on the same cell, the
// moral equivalent of a class-scoped field. Built once; never written
// after init.
var staticCells = map[Representation]Cell{
	Packed: new(PackedCell),
	Boxed:  new(BoxedCell),
	Seq:    new(SeqCell),
	Loose:  new(LooseCell),
}

// Config shapes a harness run. Zero fields fall back to the reference
// behavior.
type Config struct {
	// Workers is the number of racing goroutines.
	Workers int
	// Iterations is the number of read-advance-write rounds per worker.
	Iterations int
	// Repr selects the cell representation under test.
	Repr Representation
	// SkipInstance excludes the per-harness location from the run,
	// narrowing a failure down to the remaining two locations.
	SkipInstance bool
}

// Harness races Workers goroutines over three shared locations, each
// holding one Pair: a process-wide cell, a per-harness cell, and slot
// zero of a one-element cell array. Workers share all locations with
// no partitioning and no coordination; the absence of coordination is
// the point.
type Harness struct {
	cfg      Config
	static   Cell
	instance Cell
	element  [1]Cell
	handle   Pathway
	done     atomic.Int32
}

// New builds a harness, initializes every location to Make(0, 0) and
// resolves the indirect pathway handle once.
func New(cfg Config) (*Harness, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.Repr == "" {
		cfg.Repr = Packed
	}
	static, ok := staticCells[cfg.Repr]
	if !ok {
		return nil, fmt.Errorf("unknown representation %q", cfg.Repr)
	}
	instance, err := NewCell(cfg.Repr)
	if err != nil {
		return nil, err
	}
	element, err := NewCell(cfg.Repr)
	if err != nil {
		return nil, err
	}
	handle, err := Resolve("advance")
	if err != nil {
		return nil, err
	}

	h := &Harness{
		cfg:      cfg,
		static:   static,
		instance: instance,
		handle:   handle,
	}
	h.element[0] = element

	zero := Make(0, 0)
	h.static.Store(zero)
	h.instance.Store(zero)
	h.element[0].Store(zero)
	return h, nil
}

type location struct {
	name string
	cell Cell
}

func (h *Harness) locations() []location {
	locs := make([]location, 0, 3)
	locs = append(locs, location{locStatic, h.static})
	if !h.cfg.SkipInstance {
		locs = append(locs, location{locInstance, h.instance})
	}
	locs = append(locs, location{locElement, h.element[0]})
	return locs
}

// Run spawns the workers and joins all of them. Each worker performs
// Iterations rounds; per round, per location, it applies the direct,
// staged and handle pathways in turn, every one a blind
// read-advance-write on the shared cell.
//
// Run returns nil only when every worker finished every iteration
// without a violation. The first error cancels the remaining workers
// and is returned as-is.
func (h *Harness) Run(ctx context.Context) error {
	locs := h.locations()
	g, ctx := errgroup.WithContext(ctx)
	for range h.cfg.Workers {
		g.Go(func() error {
			for i := range h.cfg.Iterations {
				// Cancellation is only polled between rounds, and
				// rarely, to keep the hot loop free of extra loads.
				if i&1023 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				for _, loc := range locs {
					if err := h.step(loc); err != nil {
						return err
					}
				}
			}
			h.done.Add(1)
			return nil
		})
	}
	return g.Wait()
}

// step performs one read-advance-write cycle per pathway on loc.
func (h *Harness) step(loc location) error {
	v := loc.cell.Load()
	next, err := v.Advance()
	if err != nil {
		return annotate(err, loc.name)
	}
	loc.cell.Store(next)

	v = loc.cell.Load()
	next, err = v.AdvanceStaged()
	if err != nil {
		return annotate(err, loc.name)
	}
	loc.cell.Store(next)

	v = loc.cell.Load()
	next, err = h.handle(v)
	if err != nil {
		// Errors surfacing through the indirect call are wrapped so
		// the invocation path is identifiable in the failure.
		return annotate(&HandleError{Name: "advance", Err: err}, loc.name)
	}
	loc.cell.Store(next)
	return nil
}

// Completed reports how many workers finished all their iterations.
// Meaningful after Run returns; equals Config.Workers on success.
func (h *Harness) Completed() int {
	return int(h.done.Load())
}

// annotate stamps the shared location name onto a violation.
func annotate(err error, loc string) error {
	var iv *InvariantViolationError
	if errors.As(err, &iv) && iv.Location == "" {
		iv.Location = loc
	}
	return err
}
