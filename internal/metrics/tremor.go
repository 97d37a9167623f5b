package metrics

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Tremor finds the dominant oscillation in a uniformly sampled signal, such
// as the fingertip x coordinate of a recorded session. The mean is removed
// and a Hann window applied before the transform. It returns the peak
// frequency in Hz and its share of the total spectral magnitude.
func Tremor(signal []float64, rate float64) (freq, share float64) {
	n := len(signal)
	if n < 4 || rate <= 0 {
		return 0, 0
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range signal {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)

	total, peak, peakBin := 0.0, 0.0, 0
	for i := 1; i <= n/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		total += mag
		if mag > peak {
			peak, peakBin = mag, i
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(peakBin) * rate / float64(n), peak / total
}
