package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, env := range []string{"CLASS", "GO_NUM_THREADS", "NPB_TIMERS", "NPB_LOG_LEVEL", "NPB_REPORT_FILE", "NPB_METRICS_FILE"} {
		t.Setenv(env, "")
	}
	chdirT(t, t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestUnknownClass(t *testing.T) {
	stdout, _, err := execute(t, "Q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, params.ErrUnknownClass))
	assert.Empty(t, stdout, "nothing is benchmarked")
}

func TestBadThreadsArgument(t *testing.T) {
	_, _, err := execute(t, "S", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `threads "many"`)
}

func TestTooManyArguments(t *testing.T) {
	_, _, err := execute(t, "S", "2", "extra")
	require.Error(t, err)
}

func TestBadLogLevel(t *testing.T) {
	_, _, err := execute(t, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestRunClassSWithOutputs(t *testing.T) {
	if testing.Short() {
		t.Skip("class S end-to-end run")
	}
	dir := t.TempDir()
	report := filepath.Join(dir, "cg.yaml")
	metrics := filepath.Join(dir, "cg.prom")

	stdout, stderr, err := execute(t, "S", "2", "--timers", "--report", report, "--metrics-file", metrics)
	require.NoError(t, err)

	assert.Contains(t, stdout, " CG Benchmark Completed\n")
	assert.Contains(t, stdout, " Verification    =               SUCCESSFUL\n")
	assert.Contains(t, stdout, "  SECTION   Time (secs)\n")
	assert.NotContains(t, stdout, "level=", "logs stay off the report stream")
	assert.Contains(t, stderr, "matrix built")
	assert.Contains(t, stderr, "report written")

	raw, err := os.ReadFile(report)
	require.NoError(t, err)
	var got struct {
		Class    string `yaml:"class"`
		Threads  int    `yaml:"threads"`
		Verified bool   `yaml:"verified"`
		History  []any  `yaml:"history"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, "S", got.Class)
	assert.Equal(t, 2, got.Threads)
	assert.True(t, got.Verified)
	assert.Len(t, got.History, 15)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "npb_cg_verified{")
	assert.Contains(t, string(prom), `class="S"`)
}

// chdirT changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdirT(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
