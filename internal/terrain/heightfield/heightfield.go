// Package heightfield synthesizes square fractal height maps by midpoint
// displacement (diamond-square), optionally constrained on any subset of
// the four edges so adjacent maps tile without seams.
package heightfield

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for malformed generation parameters.
// Callers should treat it as a programming error, not a transient fault.
var ErrInvalidArgument = errors.New("invalid argument")

// Heightfield is a square grid of elevation values, side N = 2^detail + 1.
// Cell (i, j) has j increasing with world x and i increasing with world y.
// An elevation of 0 is ground level; values are unbounded and may be
// negative.
type Heightfield struct {
	n     int
	cells []float64 // row-major, len n*n
}

// SideForDetail returns the grid side length for a detail level.
func SideForDetail(detail int) int {
	return 1<<uint(detail) + 1
}

// New returns a zero-filled heightfield of side n. n must be 2^k+1 for
// some k >= 1; New panics otherwise since it is only reachable through
// validated paths.
func New(n int) *Heightfield {
	if n < 3 || (n-1)&(n-2) != 0 {
		panic(fmt.Sprintf("heightfield: bad side %d", n))
	}
	return &Heightfield{n: n, cells: make([]float64, n*n)}
}

// Side returns the grid side length N.
func (h *Heightfield) Side() int { return h.n }

// At returns the elevation at row i, column j.
func (h *Heightfield) At(i, j int) float64 {
	return h.cells[i*h.n+j]
}

// Set assigns the elevation at row i, column j.
func (h *Heightfield) Set(i, j int, v float64) {
	h.cells[i*h.n+j] = v
}

// Cells returns the row-major backing values. The slice is a copy; the
// caller may retain or mutate it freely.
func (h *Heightfield) Cells() []float64 {
	out := make([]float64, len(h.cells))
	copy(out, h.cells)
	return out
}

// FromCells rebuilds a heightfield from a row-major dump of side n.
func FromCells(n int, cells []float64) (*Heightfield, error) {
	if n < 3 || (n-1)&(n-2) != 0 {
		return nil, fmt.Errorf("%w: side %d is not 2^k+1", ErrInvalidArgument, n)
	}
	if len(cells) != n*n {
		return nil, fmt.Errorf("%w: %d cells for side %d", ErrInvalidArgument, len(cells), n)
	}
	h := &Heightfield{n: n, cells: make([]float64, n*n)}
	copy(h.cells, cells)
	return h, nil
}

// Stats returns the minimum, maximum, and mean elevation.
func (h *Heightfield) Stats() (min, max, mean float64) {
	min, max = h.cells[0], h.cells[0]
	var sum float64
	for _, v := range h.cells {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(len(h.cells))
}

// Edge extraction. Each method returns a fresh copy of length N ordered by
// the in-chunk coordinate along that edge; the copy never aliases the grid.
//
// Orientation: Top is the row i = N-1 and adjoins the chunk at (x, y+1);
// Bottom is row 0 and adjoins (x, y-1); Right is column j = N-1 and adjoins
// (x+1, y); Left is column 0 and adjoins (x-1, y). Under this convention
// chunk(x,y).Top == chunk(x,y+1).Bottom and chunk(x,y).Right ==
// chunk(x+1,y).Left once the later chunk is generated with the earlier
// chunk's edge as its constraint.

// Top returns a copy of the row adjoining the (x, y+1) neighbor.
func (h *Heightfield) Top() []float64 { return h.row(h.n - 1) }

// Bottom returns a copy of the row adjoining the (x, y-1) neighbor.
func (h *Heightfield) Bottom() []float64 { return h.row(0) }

// Right returns a copy of the column adjoining the (x+1, y) neighbor.
func (h *Heightfield) Right() []float64 { return h.col(h.n - 1) }

// Left returns a copy of the column adjoining the (x-1, y) neighbor.
func (h *Heightfield) Left() []float64 { return h.col(0) }

func (h *Heightfield) row(i int) []float64 {
	out := make([]float64, h.n)
	copy(out, h.cells[i*h.n:(i+1)*h.n])
	return out
}

func (h *Heightfield) col(j int) []float64 {
	out := make([]float64, h.n)
	for i := 0; i < h.n; i++ {
		out[i] = h.cells[i*h.n+j]
	}
	return out
}
