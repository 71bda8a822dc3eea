package tearcheck

import (
	"sync"
	"unsafe"
)

// Raw field offsets, resolved once at startup.
var (
	offX = unsafe.Offsetof(Pair{}.x)
	offY = unsafe.Offsetof(Pair{}.y)
)

// draft is a private, exclusively owned staging copy of a Pair. It is
// mutable until sealed; other goroutines never see it. A sealed draft
// must not be written again.
type draft struct {
	p Pair
}

var draftPool = sync.Pool{
	New: func() any { return new(draft) },
}

// stage acquires a draft seeded from p. The caller owns it exclusively
// until seal.
func stage(p Pair) *draft {
	d := draftPool.Get().(*draft)
	d.p = p
	return d
}

// putInt32 writes v into the staged Pair at the given raw field
// offset. Each call is a separate, unsynchronized store.
func (d *draft) putInt32(off uintptr, v int32) {
	*(*int32)(unsafe.Add(unsafe.Pointer(&d.p), off)) = v
}

// seal publishes the staged value as an immutable Pair and recycles
// the draft.
func (d *draft) seal() Pair {
	p := d.p
	draftPool.Put(d)
	return p
}

// AdvanceStaged is Advance implemented through the explicit staging
// protocol: acquire a private draft, write each incremented field
// individually by raw offset, then seal the result. The two field
// stores are deliberately separate steps; exclusivity of the draft is
// what keeps them invisible until seal.
func (p Pair) AdvanceStaged() (Pair, error) {
	if p.x != p.y {
		return Pair{}, &InvariantViolationError{X: p.x, Y: p.y}
	}
	d := stage(p)
	d.putInt32(offX, p.x+1)
	d.putInt32(offY, p.y+1)
	return d.seal(), nil
}
