// Package arch exposes the few memory-model and layout facts the cell
// implementations depend on.
package arch

import "golang.org/x/sys/cpu"

// CacheLinePad pads shared cells so neighbouring locations do not
// false-share a line and contention stays per-location.
type CacheLinePad = cpu.CacheLinePad
