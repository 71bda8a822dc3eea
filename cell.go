package tearcheck

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/kmordo/tearcheck/internal/arch"
)

// Representation selects how a shared cell lays out and publishes its
// Pair. The probe never locks around cell accesses: whatever tear-free
// guarantee exists must come from the representation itself.
type Representation string

const (
	// Packed flattens both fields into a single atomic machine word.
	Packed Representation = "packed"
	// Boxed stores the Pair behind a pointer indirection.
	Boxed Representation = "boxed"
	// Seq keeps the fields inline behind an odd/even sequence guard.
	Seq Representation = "seq"
	// Loose writes the fields separately with a scheduling gap and no
	// publication barrier. It tears by construction and exists only to
	// prove the oracle is sensitive enough to catch real tearing.
	Loose Representation = "loose"
)

// Cell is a single shared storage location holding one Pair. Load and
// Store are called concurrently by every worker with no external
// synchronization; whether the aggregate can tear is exactly the
// property under test.
type Cell interface {
	Load() Pair
	Store(Pair)
}

// NewCell returns a zero-initialized cell of the given representation.
func NewCell(r Representation) (Cell, error) {
	switch r {
	case Packed:
		return new(PackedCell), nil
	case Boxed:
		return new(BoxedCell), nil
	case Seq:
		return new(SeqCell), nil
	case Loose:
		return new(LooseCell), nil
	default:
		return nil, fmt.Errorf("unknown representation %q", r)
	}
}

// PackedCell packs both int32 fields into one uint64 and publishes
// with a single atomic access. Tear-free by atomic granularity: a
// reader sees either the old word or the new word, never a mix.
type PackedCell struct {
	_ noCopy
	v atomic.Uint64
	_ arch.CacheLinePad
}

// Load returns the current Pair.
func (c *PackedCell) Load() Pair {
	u := c.v.Load()
	return Pair{x: int32(uint32(u >> 32)), y: int32(uint32(u))}
}

// Store publishes p.
func (c *PackedCell) Store(p Pair) {
	c.v.Store(uint64(uint32(p.x))<<32 | uint64(uint32(p.y)))
}

// BoxedCell holds the Pair behind an atomic pointer. Publication is a
// single pointer swap; the pointee is never mutated once stored, so
// readers cannot observe a partial aggregate.
type BoxedCell struct {
	_ noCopy
	v atomic.Pointer[Pair]
	_ arch.CacheLinePad
}

// Load returns the current Pair. A cell that was never stored reads as
// the zero Pair.
func (c *BoxedCell) Load() Pair {
	if p := c.v.Load(); p != nil {
		return *p
	}
	return Pair{}
}

// Store publishes p behind a fresh pointer.
func (c *BoxedCell) Store(p Pair) {
	c.v.Store(&p)
}

// SeqCell keeps the fields inline, with no packing and no indirection,
// and guards publication with an odd/even sequence: writers CAS the
// sequence to odd, copy, then store seq+2; readers retry until the
// sequence is even and unchanged around their copy.
type SeqCell struct {
	_   noCopy
	seq atomic.Uint32
	val Pair // written only inside an odd window
	_   arch.CacheLinePad
}

// Load spins until it copies a stable snapshot.
func (c *SeqCell) Load() Pair {
	var spins int
	for {
		s1 := c.seq.Load()
		if s1&1 == 0 {
			v := c.readUnfenced()
			if c.seq.Load() == s1 {
				return v
			}
		}
		delay(&spins)
	}
}

// Store publishes p inside a writer window.
func (c *SeqCell) Store(p Pair) {
	var spins int
	for {
		s1 := c.seq.Load()
		if s1&1 == 0 && c.seq.CompareAndSwap(s1, s1|1) {
			c.writeUnfenced(p)
			c.seq.Store(s1 + 2)
			return
		}
		delay(&spins)
	}
}

// readUnfenced copies the inline buffer. Only valid inside a stable
// window; on weak memory models the copy uses per-field atomics.
func (c *SeqCell) readUnfenced() Pair {
	if arch.IsTSO {
		return c.val
	}
	return Pair{
		x: atomic.LoadInt32(&c.val.x),
		y: atomic.LoadInt32(&c.val.y),
	}
}

// writeUnfenced writes the inline buffer. Only valid inside an odd
// window.
func (c *SeqCell) writeUnfenced(p Pair) {
	if arch.IsTSO {
		c.val = p
		return
	}
	atomic.StoreInt32(&c.val.x, p.x)
	atomic.StoreInt32(&c.val.y, p.y)
}

// LooseCell stores the two fields in separate steps with a scheduling
// point in between and no publication barrier over the aggregate. The
// individual fields use atomic access so only aggregate-level tearing
// is exercised. Never use it to hold real data.
type LooseCell struct {
	_    noCopy
	x, y int32
	_    arch.CacheLinePad
}

// Load reads the fields separately, widening the torn window.
func (c *LooseCell) Load() Pair {
	x := atomic.LoadInt32(&c.x)
	runtime.Gosched()
	y := atomic.LoadInt32(&c.y)
	return Pair{x: x, y: y}
}

// Store writes x, yields, then writes y.
func (c *LooseCell) Store(p Pair) {
	atomic.StoreInt32(&c.x, p.x)
	runtime.Gosched()
	atomic.StoreInt32(&c.y, p.y)
}
