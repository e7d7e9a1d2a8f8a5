package common

// Constants of the NPB linear congruential generator.
const (
	// Tran is the seed shared by every NPB benchmark.
	Tran = 314159265.0
	// Amult is the LCG multiplier, 5^13.
	Amult = 1220703125.0

	r23 = 1.0 / (1 << 23)
	r46 = r23 * r23
	t23 = float64(1 << 23)
	t46 = t23 * t23
)

/*
 * Randlc returns a uniform pseudorandom double in (0, 1) from the
 * linear congruential generator
 *
 *   x_{k+1} = a x_k  (mod 2^46)
 *
 * where 0 < x_k < 2^46 and 0 < a < 2^46. x must hold an odd integer in
 * (1, 2^46) and is replaced by x_{k+1}; the result is 2^(-46) * x_{k+1}.
 *
 * Both factors are split in 23-bit halves so that every partial product
 * fits in the 53-bit mantissa, which keeps the 46-bit state exact.
 */
func Randlc(x *float64, a float64) float64 {
	var t1, t2, t3, t4, a1, a2, x1, x2, z float64

	t1 = r23 * a
	a1 = float64(int64(t1))
	a2 = a - t23*a1

	t1 = r23 * (*x)
	x1 = float64(int64(t1))
	x2 = *x - t23*x1

	t1 = a1*x2 + a2*x1
	t2 = float64(int64(r23 * t1))
	z = t1 - t23*t2
	t3 = t23*z + a2*x2
	t4 = float64(int64(r46 * t3))
	*x = t3 - t46*t4

	return r46 * (*x)
}

// Vranlc writes n consecutive Randlc values into y[:n] and advances the
// seed exactly n times. n == 0 leaves seed and y untouched.
func Vranlc(n int, xSeed *float64, a float64, y []float64) {
	var t1, t2, t3, t4, x1, x2, z float64
	x := *xSeed

	t1 = r23 * a
	a1 := float64(int64(t1))
	a2 := a - t23*a1

	for i := 0; i < n; i++ {
		t1 = r23 * x
		x1 = float64(int64(t1))
		x2 = x - t23*x1

		t1 = a1*x2 + a2*x1
		t2 = float64(int64(r23 * t1))
		z = t1 - t23*t2
		t3 = t23*z + a2*x2
		t4 = float64(int64(r46 * t3))
		x = t3 - t46*t4
		y[i] = r46 * x
	}

	*xSeed = x
}

// SkipAhead returns the seed reached after k draws from seed, i.e.
// seed * a^k mod 2^46, in O(log k) multiplications. It is the same
// binary jump EP uses to find the starting seed of a batch.
func SkipAhead(seed, a float64, k int64) float64 {
	x := seed
	an := a
	for k > 0 {
		if k&1 == 1 {
			Randlc(&x, an)
		}
		k >>= 1
		if k > 0 {
			Randlc(&an, an)
		}
	}
	return x
}

// Stream is a resumable view of the generator: one seed and one
// multiplier. It is not safe for concurrent use; parallel callers clone
// it with At.
type Stream struct {
	Seed float64
	Mult float64
}

// NewStream returns a stream positioned at seed.
func NewStream(seed, mult float64) *Stream {
	return &Stream{Seed: seed, Mult: mult}
}

// Next draws one value.
func (s *Stream) Next() float64 {
	return Randlc(&s.Seed, s.Mult)
}

// Fill draws len(y) values into y.
func (s *Stream) Fill(y []float64) {
	Vranlc(len(y), &s.Seed, s.Mult, y)
}

// At returns an independent stream positioned k draws ahead of s.
func (s *Stream) At(k int64) *Stream {
	return &Stream{Seed: SkipAhead(s.Seed, s.Mult, k), Mult: s.Mult}
}

// Skip advances s by k draws without generating them.
func (s *Stream) Skip(k int64) {
	s.Seed = SkipAhead(s.Seed, s.Mult, k)
}
