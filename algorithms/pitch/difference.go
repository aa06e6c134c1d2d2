package pitch

import (
	"github.com/RyanBlaney/sonido-swara/algorithms/common"
)

// differenceFunction computes the YIN squared-difference function
//
//	d(tau) = sum_{i=0}^{half-1} (x[i] - x[i+tau])^2,  tau in [0, maxLag]
//
// with half = len(frame)/2, along with the total signal power (used by the
// caller as a silence guard).
//
// The direct form costs O(half * maxLag). Expanding the square gives
//
//	d(tau) = P0 + P(tau) - 2*R(tau)
//
// where P0 and P(tau) are window energies available from one prefix-sum
// pass and R(tau) = sum_{i<half} x[i]*x[i+tau] is a cross-correlation,
// computed here with a single FFT/IFFT pair over the zero-padded frame.
// Padding the head window with zeros beyond half samples keeps the circular
// correlation free of wraparound for every tau <= half.
func (d *Detector) differenceFunction(frame []float64, maxLag int) ([]float64, float64) {
	half := len(frame) / 2

	// Prefix sums of squared samples: prefix[i] = sum_{j<i} x[j]^2.
	prefix := make([]float64, len(frame)+1)
	for i, s := range frame {
		prefix[i+1] = prefix[i] + s*s
	}
	totalPower := prefix[len(frame)]
	if totalPower == 0 {
		return nil, 0
	}

	n := common.NextPowerOfTwo(len(frame))

	padded := make([]float64, n)
	copy(padded, frame)

	head := make([]float64, n)
	copy(head, frame[:half])

	frameSpec := d.fft.Compute(padded)
	headSpec := d.fft.Compute(head)

	cross := make([]complex128, len(frameSpec))
	for k := range cross {
		cross[k] = complex(real(headSpec[k]), -imag(headSpec[k])) * frameSpec[k]
	}

	// r[tau] = sum_i head[i] * frame[i+tau]; go-dsp's IFFT carries the 1/N.
	r := d.fft.ComputeInverseReal(cross)

	powerHead := prefix[half]
	diff := make([]float64, maxLag+1)
	for tau := 0; tau <= maxLag; tau++ {
		lagPower := prefix[half+tau] - prefix[tau]
		v := powerHead + lagPower - 2*r[tau]
		if v < 0 {
			// FFT rounding can leave a tiny negative where d is zero.
			v = 0
		}
		diff[tau] = v
	}

	return diff, totalPower
}
