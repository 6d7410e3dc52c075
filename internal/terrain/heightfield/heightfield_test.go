package heightfield

import (
	"errors"
	"math/rand"
	"testing"
)

func TestEdgeExtractionOrientation(t *testing.T) {
	n := 3
	h := New(n)
	// h[i][j] = 10*i + j
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			h.Set(i, j, float64(10*i+j))
		}
	}
	check := func(name string, got, want []float64) {
		t.Helper()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s[%d] = %v, want %v", name, i, got[i], want[i])
			}
		}
	}
	check("bottom", h.Bottom(), []float64{0, 1, 2})
	check("top", h.Top(), []float64{20, 21, 22})
	check("left", h.Left(), []float64{0, 10, 20})
	check("right", h.Right(), []float64{2, 12, 22})
}

func TestEdgeCopiesDoNotAlias(t *testing.T) {
	h := New(3)
	h.Set(2, 1, 7)
	top := h.Top()
	top[1] = -1
	if h.At(2, 1) != 7 {
		t.Fatalf("grid mutated through extracted edge: %v", h.At(2, 1))
	}
}

func TestCellsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	h, err := Generate(3, 1.0, Constraints{}, rng)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	back, err := FromCells(h.Side(), h.Cells())
	if err != nil {
		t.Fatalf("from cells: %v", err)
	}
	for i := 0; i < h.Side(); i++ {
		for j := 0; j < h.Side(); j++ {
			if back.At(i, j) != h.At(i, j) {
				t.Fatalf("cell (%d,%d) differs", i, j)
			}
		}
	}
}

func TestFromCellsRejectsBadShapes(t *testing.T) {
	if _, err := FromCells(4, make([]float64, 16)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("side 4: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := FromCells(5, make([]float64, 24)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("short cells: err = %v, want ErrInvalidArgument", err)
	}
}
