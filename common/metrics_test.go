package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics("CG", "S", "run-1")
	m.ObserveIteration(1e-13, 8.1)
	m.ObserveIteration(2e-13, 8.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.iterations))
	assert.Equal(t, 2e-13, testutil.ToFloat64(m.rnorm))
	assert.Equal(t, 8.5, testutil.ToFloat64(m.zeta))

	rep := sampleReport()
	m.ObserveReport(rep)
	assert.Equal(t, rep.Zeta, testutil.ToFloat64(m.zeta))
	assert.Equal(t, rep.Mops, testutil.ToFloat64(m.mops))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verified))
	assert.Equal(t, 0.1, testutil.ToFloat64(m.sections.WithLabelValues("init")))

	rep.Verified = false
	m.ObserveReport(rep)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.verified))
}

func TestMetricsPrivateRegistry(t *testing.T) {
	a := NewMetrics("CG", "S", "a")
	b := NewMetrics("CG", "S", "b")
	a.ObserveIteration(1, 1)

	n, err := testutil.GatherAndCount(b.Registry(), "npb_cg_iterations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.iterations))
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics("CG", "W", "run-2")
	m.ObserveIteration(3e-12, 10.36)

	path := filepath.Join(t.TempDir(), "cg.prom")
	require.NoError(t, m.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, "# TYPE npb_cg_zeta gauge")
	assert.Contains(t, out, `npb_cg_zeta{class="W",run_id="run-2"} 10.36`)
	assert.Contains(t, out, `npb_cg_iterations_total{class="W",run_id="run-2"} 1`)
}
