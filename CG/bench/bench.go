// Package bench drives one run of the CG benchmark: build the matrix,
// warm up, iterate the inverse power method, verify and report.
package bench

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/matrix"
	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/params"
	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/solver"
	"github.com/iyisakuma/NPB-GO/NPB-CG/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// NPBVERSION is the suite version printed in the report.
const NPBVERSION = "4.1"

// Benchmark is a single CG run. It is not reusable; build a new one per
// run.
type Benchmark struct {
	class   params.Class
	pool    *common.Pool
	timers  *common.Timers
	log     logrus.FieldLogger
	out     io.Writer
	metrics *common.Metrics
	runID   string
	state   State
	onState func(State)

	m    *matrix.CSR
	vec  *solver.Vectors
	cg   *solver.Solver
	zeta float64

	history []common.Iteration
}

// Option configures a Benchmark.
type Option func(*Benchmark)

// WithLogger sets the diagnostics logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Benchmark) {
		b.log = log
	}
}

// WithOutput sets where the report is printed. Default is stdout.
func WithOutput(w io.Writer) Option {
	return func(b *Benchmark) {
		b.out = w
	}
}

// WithTimers turns the section breakdown on.
func WithTimers(enabled bool) Option {
	return func(b *Benchmark) {
		b.timers = common.NewTimers(enabled)
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(b *Benchmark) {
		b.runID = id
	}
}

// WithStateHook calls fn on every state change.
func WithStateHook(fn func(State)) Option {
	return func(b *Benchmark) {
		b.onState = fn
	}
}

// New prepares a run of class c on threads workers. threads <= 0 uses
// every CPU.
func New(c params.Class, threads int, opts ...Option) *Benchmark {
	b := &Benchmark{
		class:  c,
		pool:   common.NewPool(threads),
		timers: common.NewTimers(false),
		log:    common.DiscardLogger(),
		out:    os.Stdout,
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithFields(logrus.Fields{
		"run_id":  b.runID,
		"class":   c.CLASS,
		"threads": b.pool.Workers(),
	})
	b.metrics = common.NewMetrics("CG", c.CLASS, b.runID)
	return b
}

// State returns the phase the run is in.
func (b *Benchmark) State() State {
	return b.state
}

// RunID returns the id stamped on logs, report and metrics.
func (b *Benchmark) RunID() string {
	return b.runID
}

// Metrics returns the gauges fed by the run.
func (b *Benchmark) Metrics() *common.Metrics {
	return b.metrics
}

// History returns (it, rnorm, zeta) of every timed iteration so far.
func (b *Benchmark) History() []common.Iteration {
	return b.history
}

func (b *Benchmark) enter(s State) {
	b.state = s
	b.log.WithField("state", s).Debug("state change")
	if b.onState != nil {
		b.onState(s)
	}
}

// Run executes the benchmark and prints the NPB report. A failed
// verification is reported in the result, not as an error; errors are
// only returned when the matrix cannot be built.
func (b *Benchmark) Run() (common.Report, error) {
	started := time.Now()
	b.enter(StateInit)
	b.printHeader()

	for i := 0; i < common.NumTimers; i++ {
		b.timers.Clear(i)
	}
	b.timers.Start(common.TimerInit)
	if err := b.setup(); err != nil {
		return common.Report{}, err
	}

	b.enter(StateWarmupSolve)
	b.warmup()
	b.timers.Stop(common.TimerInit)
	fmt.Fprintf(b.out, " Initialization time = %15.3f seconds\n", b.timers.Read(common.TimerInit))

	b.enter(StateMainLoop)
	b.timers.Start(common.TimerBench)
	for it := 1; it <= b.class.NITER; it++ {
		b.iterate(it)
	}
	b.timers.Stop(common.TimerBench)
	t := b.timers.Read(common.TimerBench)

	b.enter(StateVerify)
	fmt.Fprintln(b.out, " Benchmark completed")
	verified, relerr := b.verify()

	b.enter(StateDone)
	rep := common.Report{
		RunID:      b.runID,
		Name:       "CG",
		Class:      b.class.CLASS,
		N1:         b.class.NA,
		Iterations: b.class.NITER,
		Seconds:    t,
		Mops:       Mops(b.class, t),
		OpType:     "conjugate gradient",
		Verified:   verified,
		Threads:    b.pool.Workers(),
		Version:    NPBVERSION,
		GoVersion:  runtime.Version(),
		Started:    started,
		Zeta:       b.zeta,
		ZetaRef:    b.class.ZETA_VERIFY_VALUE,
		RelErr:     relerr,
		Sections:   b.sections(t),
		History:    b.history,
	}
	b.metrics.ObserveReport(rep)

	common.PrintResults(b.out, rep)
	if b.timers.Enabled() {
		common.PrintSections(b.out, t, rep.Sections)
	}
	b.log.WithFields(logrus.Fields{
		"verified": verified,
		"zeta":     b.zeta,
		"seconds":  t,
		"mops":     rep.Mops,
	}).Info("benchmark done")
	return rep, nil
}

func (b *Benchmark) printHeader() {
	fmt.Fprintf(b.out, "\n\n NAS Parallel Benchmarks %s Parallel Go version - CG Benchmark\n\n", NPBVERSION)
	fmt.Fprintf(b.out, " Size: %11d\n", b.class.NA)
	fmt.Fprintf(b.out, " Iterations: %5d\n", b.class.NITER)
	fmt.Fprintf(b.out, " Class: %s\n", b.class.CLASS)
	fmt.Fprintf(b.out, " Number of threads: %d\n", b.pool.Workers())
}

// setup seeds the stream, builds the matrix and allocates the vectors.
func (b *Benchmark) setup() error {
	c := b.class
	t0 := time.Now()
	stream := common.NewStream(common.Tran, common.Amult)
	stream.Next()

	mp := matrix.Params{NA: c.NA, NONZER: c.NONZER, NZ: c.NZ(), RCOND: c.RCOND, SHIFT: c.SHIFT}
	m, err := matrix.Makea(mp, stream, b.pool)
	if err != nil {
		b.log.WithError(err).Error("matrix construction failed")
		return errors.Wrapf(err, "class %s", c.CLASS)
	}
	b.m = m
	b.vec = solver.NewVectors(c.NA)
	b.cg = solver.New(m, b.pool, solver.WithLogger(b.log))

	b.log.WithFields(logrus.Fields{
		"nnz":     m.NNZ(),
		"seconds": time.Since(t0).Seconds(),
	}).Info("matrix built")
	return nil
}

// resetX sets the starting vector to all ones.
func (b *Benchmark) resetX() {
	x := b.vec.X
	b.pool.For(b.class.NA+1, func(start, end int) {
		for i := start; i < end; i++ {
			x[i] = 1.0
		}
	})
	b.zeta = 0.0
}

// warmup runs one untimed solve to touch every page of the data, then
// starts over from x = 1.
func (b *Benchmark) warmup() {
	b.resetX()
	b.cg.ConjGrad(b.vec)
	b.normalize()
	b.resetX()
	b.log.Info("warmup done")
}

// normalize computes x.z, then sets x = z/||z||. It returns x.z.
func (b *Benchmark) normalize() float64 {
	x, z := b.vec.X, b.vec.Z
	ncols := b.m.LastCol - b.m.FirstCol + 1

	normTemp1, normTemp2 := b.pool.Sum2(ncols, func(start, end int) (float64, float64) {
		return floats.Dot(x[start:end], z[start:end]), floats.Dot(z[start:end], z[start:end])
	})
	normTemp1 = b.guard("norm_temp1", normTemp1)
	normTemp2 = 1.0 / math.Sqrt(b.guard("norm_temp2", normTemp2))

	b.pool.For(ncols, func(start, end int) {
		floats.ScaleTo(x[start:end], normTemp2, z[start:end])
	})
	return normTemp1
}

func (b *Benchmark) guard(name string, v float64) float64 {
	g := solver.SafeDenominator(v)
	if g != v {
		b.log.WithFields(logrus.Fields{"field": name, "value": v}).Debug("clamped denominator")
	}
	return g
}

// iterate is one timed outer iteration.
func (b *Benchmark) iterate(it int) {
	var rnorm float64
	b.timers.Time(common.TimerConjGrad, func() {
		rnorm = b.cg.ConjGrad(b.vec)
	})
	normTemp1 := b.normalize()
	b.zeta = b.class.SHIFT + 1.0/normTemp1

	if it == 1 {
		fmt.Fprintf(b.out, "\n   iteration           ||r||                 zeta\n")
	}
	fmt.Fprintf(b.out, "    %5d       %20.14e%20.13e\n", it, rnorm, b.zeta)

	b.history = append(b.history, common.Iteration{It: it, RNorm: rnorm, Zeta: b.zeta})
	b.metrics.ObserveIteration(rnorm, b.zeta)
}

func (b *Benchmark) verify() (bool, float64) {
	ref := b.class.ZETA_VERIFY_VALUE
	if ref == 0 {
		fmt.Fprintln(b.out, " Problem size unknown")
		fmt.Fprintln(b.out, " NO VERIFICATION PERFORMED")
		b.log.Warn("no reference zeta, verification skipped")
		return false, 0
	}

	verified, relerr := Verify(b.zeta, ref)
	if verified {
		fmt.Fprintln(b.out, " VERIFICATION SUCCESSFUL")
		fmt.Fprintf(b.out, " Zeta is    %20.13e\n", b.zeta)
		fmt.Fprintf(b.out, " Error is   %20.13e\n", relerr)
		b.log.WithField("relerr", relerr).Info("verification successful")
	} else {
		fmt.Fprintln(b.out, " VERIFICATION FAILED")
		fmt.Fprintf(b.out, " Zeta                %20.13e\n", b.zeta)
		fmt.Fprintf(b.out, " The correct zeta is %20.13e\n", ref)
		b.log.WithField("relerr", relerr).Warn("verification failed")
	}
	return verified, relerr
}

// sections splits the benchmark time t into conj_grad and the rest.
func (b *Benchmark) sections(t float64) []common.Section {
	cg := b.timers.Read(common.TimerConjGrad)
	rest := t - cg
	if rest < 0 {
		rest = 0
	}
	return []common.Section{
		{Name: "init", Seconds: b.timers.Read(common.TimerInit)},
		{Name: "benchmark", Seconds: t},
		{Name: "conj_grad", Seconds: cg},
		{Name: "rest", Seconds: rest},
	}
}
