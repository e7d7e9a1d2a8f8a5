package common

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Report is the final record of a benchmark run.
type Report struct {
	RunID      string      `yaml:"run_id"`
	Name       string      `yaml:"name"`
	Class      string      `yaml:"class"`
	N1         int         `yaml:"size"`
	N2         int         `yaml:"n2,omitempty"`
	N3         int         `yaml:"n3,omitempty"`
	Iterations int         `yaml:"iterations"`
	Seconds    float64     `yaml:"seconds"`
	Mops       float64     `yaml:"mops"`
	OpType     string      `yaml:"operation_type"`
	Verified   bool        `yaml:"verified"`
	Threads    int         `yaml:"threads"`
	Version    string      `yaml:"version"`
	GoVersion  string      `yaml:"go_version"`
	Started    time.Time   `yaml:"started"`
	Zeta       float64     `yaml:"zeta"`
	ZetaRef    float64     `yaml:"zeta_reference"`
	RelErr     float64     `yaml:"relative_error"`
	Sections   []Section   `yaml:"sections,omitempty"`
	History    []Iteration `yaml:"history,omitempty"`
}

// Section is one row of the timer breakdown.
type Section struct {
	Name    string  `yaml:"name"`
	Seconds float64 `yaml:"seconds"`
}

// Iteration is one outer iteration of an iterative benchmark.
type Iteration struct {
	It    int     `yaml:"it"`
	RNorm float64 `yaml:"rnorm"`
	Zeta  float64 `yaml:"zeta"`
}

// PrintResults writes rep in the NPB fixed-width layout.
func PrintResults(w io.Writer, rep Report) {
	fmt.Fprintf(w, "\n\n %s Benchmark Completed\n", rep.Name)
	fmt.Fprintf(w, " class_npb       =                        %s\n", rep.Class)

	if rep.N2 == 0 && rep.N3 == 0 {
		fmt.Fprintf(w, " Size            =             %12d\n", rep.N1)
	} else {
		fmt.Fprintf(w, " Size            =           %4dx%4dx%4d\n", rep.N1, rep.N2, rep.N3)
	}

	fmt.Fprintf(w, " Iterations      =             %12d\n", rep.Iterations)
	fmt.Fprintf(w, " Time in seconds =             %12.2f\n", rep.Seconds)
	fmt.Fprintf(w, " Threads         =             %12d\n", rep.Threads)
	fmt.Fprintf(w, " Mop/s total     =             %12.2f\n", rep.Mops)
	fmt.Fprintf(w, " Operation type  = %24s\n", rep.OpType)

	if rep.Verified {
		fmt.Fprintln(w, " Verification    =               SUCCESSFUL")
	} else {
		fmt.Fprintln(w, " Verification    =             UNSUCCESSFUL")
	}

	fmt.Fprintf(w, " Version         =             %12s\n", rep.Version)
	fmt.Fprintf(w, " Compiler ver    =             %12s\n", rep.GoVersion)
	fmt.Fprintf(w, " Run id          = %s\n", rep.RunID)
	fmt.Fprintln(w, "\n\n----------------------------------------------------------------------")
	fmt.Fprintln(w, "    NPB-GO is developed by: ")
	fmt.Fprintln(w, "        Igor Yuji Ishihara Sakuma")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "----------------------------------------------------------------------")
	fmt.Fprintln(w)
}

// PrintSections writes the timer breakdown. Percentages are relative to
// total, which is clamped to 1 when zero.
func PrintSections(w io.Writer, total float64, sections []Section) {
	if total == 0 {
		total = 1
	}
	fmt.Fprintln(w, "  SECTION   Time (secs)")
	for _, s := range sections {
		fmt.Fprintf(w, "  %-10s%9.3f  (%6.2f%%)\n", s.Name+":", s.Seconds, s.Seconds*100/total)
	}
}

// WriteReportFile stores rep as YAML at path.
func WriteReportFile(path string, rep Report) error {
	out, err := yaml.Marshal(rep)
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", path)
	}
	return nil
}
