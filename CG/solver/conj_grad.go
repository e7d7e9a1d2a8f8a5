// Package solver runs the fixed-length conjugate gradient iteration of
// the CG benchmark.
package solver

import (
	"math"

	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/matrix"
	"github.com/iyisakuma/NPB-GO/NPB-CG/common"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

const (
	// CGITMAX is the number of inner iterations per solve.
	CGITMAX = 25
	// Tiny is the smallest magnitude accepted as a denominator.
	Tiny = 1e-30
)

// SafeDenominator clamps values within Tiny of zero to Tiny.
func SafeDenominator(v float64) float64 {
	if math.Abs(v) < Tiny {
		return Tiny
	}
	return v
}

// Vectors are the dense work vectors of the benchmark. Each has room for
// n+2 entries; only the first n carry data.
type Vectors struct {
	X, Z, P, Q, R []float64
}

// NewVectors allocates zeroed vectors for an n×n system.
func NewVectors(n int) *Vectors {
	return &Vectors{
		X: make([]float64, n+2),
		Z: make([]float64, n+2),
		P: make([]float64, n+2),
		Q: make([]float64, n+2),
		R: make([]float64, n+2),
	}
}

// Solver owns the fan-out of one matrix. The matrix is only read.
type Solver struct {
	m      *matrix.CSR
	pool   *common.Pool
	log    logrus.FieldLogger
	clamps int
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger reports clamped denominators at debug level.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Solver) {
		s.log = log
	}
}

// New returns a solver for m running on pool.
func New(m *matrix.CSR, pool *common.Pool, opts ...Option) *Solver {
	s := &Solver{m: m, pool: pool, log: common.DiscardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clamps returns how many denominators were clamped so far.
func (s *Solver) Clamps() int {
	return s.clamps
}

func (s *Solver) guard(name string, v float64) float64 {
	g := SafeDenominator(v)
	if g != v {
		s.clamps++
		s.log.WithFields(logrus.Fields{"field": name, "value": v}).Debug("clamped denominator")
	}
	return g
}

// ConjGrad runs CGITMAX iterations of unpreconditioned CG on A.z = x,
// starting from z = 0, and returns ||x - A.z||. On return v.Z holds the
// solution and v.R holds A.z. v.X is not modified.
func (s *Solver) ConjGrad(v *Vectors) float64 {
	pool := s.pool
	naa := s.m.Rows
	ncols := s.m.LastCol - s.m.FirstCol + 1
	x, z, p, q, r := v.X, v.Z, v.P, v.Q, v.R

	pool.For(naa+1, func(start, end int) {
		for j := start; j < end; j++ {
			q[j] = 0.0
			z[j] = 0.0
			r[j] = x[j]
			p[j] = r[j]
		}
	})

	// rho = r.r
	rho := pool.Sum(ncols, func(start, end int) float64 {
		return floats.Dot(r[start:end], r[start:end])
	})

	for cgit := 1; cgit <= CGITMAX; cgit++ {
		// q = A.p
		s.m.MulVec(pool, q, p)

		// d = p.q
		d := pool.Sum(ncols, func(start, end int) float64 {
			return floats.Dot(p[start:end], q[start:end])
		})
		alpha := rho / s.guard("d", d)
		rho0 := rho

		// z = z + alpha*p, r = r - alpha*q, rho = r.r
		rho = pool.Sum(ncols, func(start, end int) float64 {
			floats.AddScaled(z[start:end], alpha, p[start:end])
			floats.AddScaled(r[start:end], -alpha, q[start:end])
			return floats.Dot(r[start:end], r[start:end])
		})
		beta := rho / s.guard("rho0", rho0)

		// p = r + beta*p
		pool.For(ncols, func(start, end int) {
			floats.AddScaledTo(p[start:end], r[start:end], beta, p[start:end])
		})
	}

	// ||x - A.z||
	s.m.MulVec(pool, r, z)
	sum := pool.Sum(ncols, func(start, end int) float64 {
		local := 0.0
		for j := start; j < end; j++ {
			d := x[j] - r[j]
			local += d * d
		}
		return local
	})
	if sum < 0 {
		sum = 0
	}
	return math.Sqrt(sum)
}
