package tearcheck

import (
	"errors"
	"testing"
)

func TestAdvanceSingle(t *testing.T) {
	p, err := Make(0, 0).Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if p != Make(1, 1) {
		t.Errorf("Advance = %v, want (1,1)", p)
	}
}

func TestPathwayEquivalence(t *testing.T) {
	handle, err := Resolve("advance")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	for n := int32(0); n < 1000; n++ {
		p := Make(n, n)
		want := Make(n+1, n+1)

		a, err := p.Advance()
		if err != nil || a != want {
			t.Fatalf("Advance(%d,%d) = %v, %v, want %v", n, n, a, err, want)
		}
		b, err := p.AdvanceStaged()
		if err != nil || b != want {
			t.Fatalf("AdvanceStaged(%d,%d) = %v, %v, want %v", n, n, b, err, want)
		}
		c, err := handle(p)
		if err != nil || c != want {
			t.Fatalf("handle(%d,%d) = %v, %v, want %v", n, n, c, err, want)
		}
	}
}

func TestAdvanceInconsistent(t *testing.T) {
	_, err := Make(1, 2).Advance()
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("Advance error = %v, want *InvariantViolationError", err)
	}
	if iv.X != 1 || iv.Y != 2 {
		t.Errorf("violation fields = (%d,%d), want (1,2)", iv.X, iv.Y)
	}

	_, err = Make(3, 4).AdvanceStaged()
	if !errors.As(err, &iv) {
		t.Fatalf("AdvanceStaged error = %v, want *InvariantViolationError", err)
	}
	if iv.X != 3 || iv.Y != 4 {
		t.Errorf("violation fields = (%d,%d), want (3,4)", iv.X, iv.Y)
	}
}

func TestRepeatedApplication(t *testing.T) {
	k := int32(100_000)
	if testing.Short() {
		k = 1000
	}

	handle, err := Resolve("advance")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	for name, fn := range map[string]Pathway{
		"advance":        Pair.Advance,
		"advance-staged": Pair.AdvanceStaged,
		"handle":         handle,
	} {
		p := Make(0, 0)
		for range k {
			next, err := fn(p)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			p = next
		}
		if p != Make(k, k) {
			t.Errorf("%s applied %d times = %v, want (%d,%d)", name, k, p, k, k)
		}
	}
}

func TestStagedSequentialMillion(t *testing.T) {
	if testing.Short() {
		t.Skip("a million sequential staged updates")
	}
	p := Make(0, 0)
	for range 1_000_000 {
		next, err := p.AdvanceStaged()
		if err != nil {
			t.Fatalf("AdvanceStaged at %v: %v", p, err)
		}
		p = next
	}
	if p != Make(1_000_000, 1_000_000) {
		t.Errorf("final pair = %v, want (1000000,1000000)", p)
	}
}
