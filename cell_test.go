package tearcheck

import (
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewCellRoundTrip(t *testing.T) {
	for _, r := range []Representation{Packed, Boxed, Seq, Loose} {
		c, err := NewCell(r)
		if err != nil {
			t.Fatalf("NewCell(%s): %v", r, err)
		}
		if v := c.Load(); v != Make(0, 0) {
			t.Errorf("%s: zero cell = %v", r, v)
		}
		c.Store(Make(-3, -3))
		if v := c.Load(); v != Make(-3, -3) {
			t.Errorf("%s: round trip = %v, want (-3,-3)", r, v)
		}
	}
}

func TestNewCellUnknown(t *testing.T) {
	if _, err := NewCell("mystery"); err == nil {
		t.Fatal("NewCell accepted an unknown representation")
	}
}

// stressCell hammers a cell with consistent pairs from several writers
// while readers count observations of unequal fields.
func stressCell(t *testing.T, c Cell, d time.Duration) int64 {
	t.Helper()

	c.Store(Make(0, 0))

	var torn atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	writers := 6
	readers := 6

	wg.Add(writers)
	for w := range writers {
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					x := rand.Int32() ^ int32(uint32(id)*0x9e3779b9)
					c.Store(Make(x, x))
					runtime.Gosched()
				}
			}
		}(w)
	}

	wg.Add(readers)
	for range readers {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					if v := c.Load(); v.X() != v.Y() {
						torn.Add(1)
					}
					runtime.Gosched()
				}
			}
		}()
	}

	time.Sleep(d)
	close(stop)
	wg.Wait()
	return torn.Load()
}

func TestCellNoTornRead(t *testing.T) {
	d := 600 * time.Millisecond
	if testing.Short() {
		d = 100 * time.Millisecond
	}
	for _, r := range []Representation{Packed, Boxed, Seq} {
		c, err := NewCell(r)
		if err != nil {
			t.Fatalf("NewCell(%s): %v", r, err)
		}
		if n := stressCell(t, c, d); n != 0 {
			t.Errorf("%s: torn reads: %d", r, n)
		}
	}
}

func TestLooseCellTears(t *testing.T) {
	d := 800 * time.Millisecond
	if testing.Short() {
		d = 200 * time.Millisecond
	}
	if n := stressCell(t, new(LooseCell), d); n == 0 {
		t.Fatal("no torn reads observed on the loose representation")
	}
}

func BenchmarkCellLoadStore(b *testing.B) {
	for _, r := range []Representation{Packed, Boxed, Seq} {
		c, err := NewCell(r)
		if err != nil {
			b.Fatalf("NewCell(%s): %v", r, err)
		}
		c.Store(Make(0, 0))
		b.Run(string(r), func(b *testing.B) {
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					v := c.Load()
					c.Store(Make(v.X(), v.X()))
				}
			})
		})
	}
}
