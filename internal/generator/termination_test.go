package generator

import (
	"slices"
	"testing"
)

func TestTerminationIsSticky(t *testing.T) {
	t.Parallel()
	const eos = 1
	m := newTermination(3, eos)

	x := []int{eos, 4, 2}
	m.force(x)
	if m.record(x) {
		t.Fatal("reported done with two open rows")
	}

	// Row 0 tries to reopen; force must pin it back to EOS.
	x = []int{3, eos, 2}
	m.force(x)
	if !slices.Equal(x, []int{eos, eos, 2}) {
		t.Fatalf("force = %v", x)
	}
	if m.record(x) {
		t.Fatal("reported done with one open row")
	}

	x = []int{0, 0, eos}
	m.force(x)
	if !m.record(x) {
		t.Fatal("expected every row to be done")
	}
	if m.open != 0 {
		t.Fatalf("open = %d", m.open)
	}
}

func TestTerminationCountsRowsOnce(t *testing.T) {
	t.Parallel()
	m := newTermination(2, 7)
	for range 3 {
		x := []int{7, 0}
		m.force(x)
		m.record(x)
	}
	if m.open != 1 {
		t.Fatalf("open = %d, want 1", m.open)
	}
}
