// Package shade assigns each chunk a tint scalar from a world-space
// simplex noise field. The renderer uses it as a vegetation/moisture hint
// when coloring terrain. The field is continuous in world space and
// independent of chunk generation order, so it can never introduce seams.
package shade

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field is an octave-summed normalized simplex noise field.
type Field struct {
	octaves    int
	amplitudes []float64
	frequency  float64
	os         opensimplex.Noise
}

// New returns a field seeded with seed. persistence weights successive
// octaves; frequency is the sampling rate per chunk (small values give
// broad climate bands).
func New(seed int64, octaves int, persistence, frequency float64) *Field {
	if octaves < 1 {
		octaves = 1
	}
	if frequency <= 0 {
		frequency = 0.05
	}
	f := &Field{
		octaves:    octaves,
		amplitudes: make([]float64, octaves),
		frequency:  frequency,
		os:         opensimplex.NewNormalized(seed),
	}
	for i := range f.amplitudes {
		f.amplitudes[i] = math.Pow(persistence, float64(i))
	}
	return f
}

// At returns the field value in [0, 1] at a continuous position.
func (f *Field) At(x, y float64) float64 {
	var sum, sumOfAmplitudes float64
	for octave := 0; octave < f.octaves; octave++ {
		freq := float64(int(1) << uint(octave))
		sum += f.amplitudes[octave] * f.os.Eval2(x*freq, y*freq)
		sumOfAmplitudes += f.amplitudes[octave]
	}
	return sum / sumOfAmplitudes
}

// ChunkTint samples the field at the center of chunk (cx, cy).
func (f *Field) ChunkTint(cx, cy int) float64 {
	return f.At((float64(cx)+0.5)*f.frequency, (float64(cy)+0.5)*f.frequency)
}
