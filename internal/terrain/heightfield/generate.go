package heightfield

import (
	"fmt"
	"math/rand"
)

// Constraints fixes any subset of the four edges of a generated
// heightfield. A nil edge is generated freely; a non-nil edge must have
// length exactly 2^detail + 1 and is reproduced verbatim in the result.
type Constraints struct {
	Top    []float64
	Bottom []float64
	Left   []float64
	Right  []float64
}

// Mask reports which edges are constrained, for logging.
func (c Constraints) Mask() string {
	b := []byte("----")
	if c.Top != nil {
		b[0] = 'T'
	}
	if c.Right != nil {
		b[1] = 'R'
	}
	if c.Bottom != nil {
		b[2] = 'B'
	}
	if c.Left != nil {
		b[3] = 'L'
	}
	return string(b)
}

// Generate synthesizes one heightfield of side 2^detail + 1 by diamond-
// square displacement. roughness scales the random offset amplitude at
// every subdivision level. Constrained edges are returned bit-exact to the
// input vectors; unconstrained cells vary run to run with rng.
func Generate(detail int, roughness float64, c Constraints, rng *rand.Rand) (*Heightfield, error) {
	if detail < 1 {
		return nil, fmt.Errorf("%w: detail %d, want >= 1", ErrInvalidArgument, detail)
	}
	if roughness <= 0 {
		return nil, fmt.Errorf("%w: roughness %v, want > 0", ErrInvalidArgument, roughness)
	}
	n := SideForDetail(detail)
	for _, e := range []struct {
		name string
		v    []float64
	}{{"top", c.Top}, {"bottom", c.Bottom}, {"left", c.Left}, {"right", c.Right}} {
		if e.v != nil && len(e.v) != n {
			return nil, fmt.Errorf("%w: %s constraint has length %d, want %d", ErrInvalidArgument, e.name, len(e.v), n)
		}
	}

	g := &generator{h: New(n), n: n, roughness: roughness, c: c, rng: rng}
	g.seedCorners()
	for sz := n - 1; sz > 1; sz /= 2 {
		g.pass(sz)
	}
	g.h = medianFilter(g.h)
	g.reimposeConstraints()
	return g.h, nil
}

type generator struct {
	h         *Heightfield
	n         int
	roughness float64
	c         Constraints
	rng       *rand.Rand
}

// seedCorners assigns the four corners. A corner shared with a constrained
// edge takes the edge's value; when two constrained edges meet at a corner,
// top wins over right, and both win over bottom and left. Free corners draw
// uniformly from [-scale, scale] with scale = roughness * N / 2.
func (g *generator) seedCorners() {
	last := g.n - 1
	scale := g.roughness * float64(g.n) / 2

	pick := func(edges ...edgeRef) float64 {
		for _, e := range edges {
			if e.v != nil {
				return e.v[e.idx]
			}
		}
		return (g.rng.Float64()*2 - 1) * scale
	}

	// Precedence order within each corner: top, right, bottom, left.
	g.h.Set(last, 0, pick(edgeRef{g.c.Top, 0}, edgeRef{g.c.Left, last}))         // top-left
	g.h.Set(last, last, pick(edgeRef{g.c.Top, last}, edgeRef{g.c.Right, last})) // top-right
	g.h.Set(0, last, pick(edgeRef{g.c.Right, 0}, edgeRef{g.c.Bottom, last}))    // bottom-right
	g.h.Set(0, 0, pick(edgeRef{g.c.Bottom, 0}, edgeRef{g.c.Left, 0}))           // bottom-left
}

type edgeRef struct {
	v   []float64
	idx int
}

// pass runs one subdivision level: the square step over every sz-cell
// sub-square center, then the diamond step over the remaining midpoints.
func (g *generator) pass(sz int) {
	half := sz / 2

	for i := half; i < g.n; i += sz {
		for j := half; j < g.n; j += sz {
			g.square(i, j, half, g.offset(sz))
		}
	}
	for i := 0; i < g.n; i += half {
		for j := (i + half) % sz; j < g.n; j += sz {
			g.diamond(i, j, half, g.offset(sz))
		}
	}
}

func (g *generator) offset(sz int) float64 {
	return (g.rng.Float64()*2 - 1) * g.roughness * float64(sz)
}

// square sets the center of a sub-square to the average of its reachable
// diagonal corners plus the offset.
func (g *generator) square(i, j, half int, offset float64) {
	var sum float64
	var cnt int
	for _, d := range [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
		ii, jj := i+d[0]*half, j+d[1]*half
		if ii < 0 || ii >= g.n || jj < 0 || jj >= g.n {
			continue
		}
		sum += g.h.At(ii, jj)
		cnt++
	}
	g.h.Set(i, j, sum/float64(cnt)+offset)
}

// diamond sets an edge midpoint to the average of its reachable axis
// neighbors plus the offset, unless the cell lies on a constrained
// boundary, in which case the constraint value is copied verbatim.
func (g *generator) diamond(i, j, half int, offset float64) {
	last := g.n - 1
	switch {
	case i == last && g.c.Top != nil:
		g.h.Set(i, j, g.c.Top[j])
		return
	case i == 0 && g.c.Bottom != nil:
		g.h.Set(i, j, g.c.Bottom[j])
		return
	case j == 0 && g.c.Left != nil:
		g.h.Set(i, j, g.c.Left[i])
		return
	case j == last && g.c.Right != nil:
		g.h.Set(i, j, g.c.Right[i])
		return
	}

	var sum float64
	var cnt int
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		ii, jj := i+d[0]*half, j+d[1]*half
		if ii < 0 || ii >= g.n || jj < 0 || jj >= g.n {
			continue
		}
		sum += g.h.At(ii, jj)
		cnt++
	}
	g.h.Set(i, j, sum/float64(cnt)+offset)
}

// reimposeConstraints overwrites constrained edges with the input vectors,
// undoing median-filter drift. Application order left, bottom, right, top
// makes the corner precedence of seedCorners hold on the final grid.
func (g *generator) reimposeConstraints() {
	last := g.n - 1
	if g.c.Left != nil {
		for i := 0; i < g.n; i++ {
			g.h.Set(i, 0, g.c.Left[i])
		}
	}
	if g.c.Bottom != nil {
		for j := 0; j < g.n; j++ {
			g.h.Set(0, j, g.c.Bottom[j])
		}
	}
	if g.c.Right != nil {
		for i := 0; i < g.n; i++ {
			g.h.Set(i, last, g.c.Right[i])
		}
	}
	if g.c.Top != nil {
		for j := 0; j < g.n; j++ {
			g.h.Set(last, j, g.c.Top[j])
		}
	}
}
