package tearcheck

import (
	"runtime"
	"time"
)

// noCopy triggers go vet's copylocks check when a cell is copied by
// value.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// delay backs off a contended spin loop: a few Gosched rounds first,
// then a short sleep so sustained writer storms do not starve readers.
func delay(spins *int) {
	if *spins < 8 {
		*spins++
		runtime.Gosched()
		return
	}
	*spins = 0
	time.Sleep(500 * time.Microsecond)
}
