package bench

import (
	"math"

	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/params"
)

// EPSILON is the largest relative error of zeta that still verifies.
const EPSILON = 1.0e-10

// Verify compares zeta against the class reference value. A zero
// reference means the class has none, and nothing verifies.
func Verify(zeta, ref float64) (verified bool, relerr float64) {
	if ref == 0 {
		return false, 0
	}
	relerr = math.Abs(zeta-ref) / ref
	return relerr <= EPSILON, relerr
}

// Mops is the NPB operation count of a class divided by the benchmark
// time, in millions per second. A zero time gives zero.
func Mops(c params.Class, seconds float64) float64 {
	if seconds == 0 {
		return 0
	}
	nnz := float64(c.NONZER * (c.NONZER + 1))
	return float64(2*c.NITER*c.NA) *
		(3.0 + nnz + 25.0*(5.0+nnz) + 3.0) /
		seconds / 1000000.0
}
