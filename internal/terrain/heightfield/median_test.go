package heightfield

import "testing"

func TestMedianFilterWindows(t *testing.T) {
	h := New(3)
	// Rows bottom to top: {1,2,3}, {4,5,6}, {7,8,9}.
	v := 1.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h.Set(i, j, v)
			v++
		}
	}
	out := medianFilter(h)

	cases := []struct {
		i, j int
		want float64
	}{
		{1, 1, 5},   // 9-value interior window
		{0, 0, 3},   // 4-value corner window {1,2,4,5}
		{0, 1, 3.5}, // 6-value edge window {1..6}
		{2, 2, 7},   // 4-value corner window {5,6,8,9}
	}
	for _, tc := range cases {
		if got := out.At(tc.i, tc.j); got != tc.want {
			t.Errorf("median at (%d,%d) = %v, want %v", tc.i, tc.j, got, tc.want)
		}
	}
}

func TestMedianOddAndEven(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("odd median = %v, want 2", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("even median = %v, want 2.5", got)
	}
}
