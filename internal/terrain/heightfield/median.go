package heightfield

import "sort"

// medianFilter returns a smoothed copy of h: every cell becomes the median
// of its 3x3 neighborhood clipped to the grid, so interior cells use 9
// values, non-corner edge cells 6, and corners 4. Single pass, not
// iterative.
func medianFilter(h *Heightfield) *Heightfield {
	n := h.Side()
	out := New(n)
	var window [9]float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			w := window[:0]
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					ii, jj := i+di, j+dj
					if ii < 0 || ii >= n || jj < 0 || jj >= n {
						continue
					}
					w = append(w, h.At(ii, jj))
				}
			}
			out.Set(i, j, median(w))
		}
	}
	return out
}

// median sorts v in place. Even-length windows take the mean of the two
// middle values.
func median(v []float64) float64 {
	sort.Float64s(v)
	m := len(v) / 2
	if len(v)%2 == 1 {
		return v[m]
	}
	return (v[m-1] + v[m]) / 2
}
