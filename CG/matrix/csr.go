// Package matrix builds the random sparse matrix of the CG benchmark and
// stores it in compressed-row form.
package matrix

import (
	"github.com/iyisakuma/NPB-GO/NPB-CG/common"
	"github.com/pkg/errors"
)

// Errors returned by matrix construction and validation.
var (
	// ErrSpaceExceeded means the predicted number of nonzeros does not fit
	// the reserved capacity. The class parameters are inconsistent.
	ErrSpaceExceeded = errors.New("matrix: space for matrix elements exceeded")

	// ErrInternalInsert means sparse found no free slot for an element,
	// which only happens when row sizing is wrong.
	ErrInternalInsert = errors.New("matrix: internal error in sparse")

	// ErrBadParams rejects an order or row budget that cannot be generated.
	ErrBadParams = errors.New("matrix: bad matrix parameters")

	// ErrInvalidCSR is returned by Validate and NewCSR.
	ErrInvalidCSR = errors.New("matrix: invalid CSR structure")
)

// CSR is a sparse matrix in compressed-row storage. Row j occupies
// A[RowStr[j]:RowStr[j+1]] with columns in ColIdx at the same offsets.
// It is never mutated after construction.
type CSR struct {
	Rows int
	Cols int

	FirstRow int
	LastRow  int
	FirstCol int
	LastCol  int

	A      []float64
	ColIdx []int
	RowStr []int
}

// NewCSR wraps existing arrays and checks them with Validate.
func NewCSR(rows, cols int, rowstr, colidx []int, a []float64) (*CSR, error) {
	m := &CSR{
		Rows:     rows,
		Cols:     cols,
		FirstRow: 0,
		LastRow:  rows - 1,
		FirstCol: 0,
		LastCol:  cols - 1,
		A:        a,
		ColIdx:   colidx,
		RowStr:   rowstr,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NNZ returns the number of stored elements.
func (m *CSR) NNZ() int {
	return m.RowStr[m.Rows]
}

// At returns element (i, j), zero when it is not stored.
func (m *CSR) At(i, j int) float64 {
	for k := m.RowStr[i]; k < m.RowStr[i+1]; k++ {
		if m.ColIdx[k] == j {
			return m.A[k]
		}
	}
	return 0
}

// Validate checks the CSR invariants: RowStr starts at zero, never
// decreases and ends at len(A) == len(ColIdx); every column is in range
// (so no -1 sentinel survives) and no column repeats within a row.
func (m *CSR) Validate() error {
	if len(m.RowStr) != m.Rows+1 {
		return errors.Wrapf(ErrInvalidCSR, "len(rowstr) = %d, want %d", len(m.RowStr), m.Rows+1)
	}
	if m.RowStr[0] != 0 {
		return errors.Wrapf(ErrInvalidCSR, "rowstr[0] = %d", m.RowStr[0])
	}
	for j := 0; j < m.Rows; j++ {
		if m.RowStr[j+1] < m.RowStr[j] {
			return errors.Wrapf(ErrInvalidCSR, "rowstr[%d] = %d < rowstr[%d] = %d", j+1, m.RowStr[j+1], j, m.RowStr[j])
		}
	}
	nnz := m.RowStr[m.Rows]
	if len(m.A) != nnz || len(m.ColIdx) != nnz {
		return errors.Wrapf(ErrInvalidCSR, "nnz = %d, len(a) = %d, len(colidx) = %d", nnz, len(m.A), len(m.ColIdx))
	}

	seen := make(map[int]struct{})
	for j := 0; j < m.Rows; j++ {
		clear(seen)
		for k := m.RowStr[j]; k < m.RowStr[j+1]; k++ {
			c := m.ColIdx[k]
			if c < 0 || c >= m.Cols {
				return errors.Wrapf(ErrInvalidCSR, "row %d: colidx[%d] = %d out of [0, %d)", j, k, c, m.Cols)
			}
			if _, dup := seen[c]; dup {
				return errors.Wrapf(ErrInvalidCSR, "row %d: column %d stored twice", j, c)
			}
			seen[c] = struct{}{}
		}
	}
	return nil
}

// MulVec computes dst = A.src over all rows, fanned out across pool.
// Each row is written by exactly one worker.
func (m *CSR) MulVec(pool *common.Pool, dst, src []float64) {
	a, colidx, rowstr := m.A, m.ColIdx, m.RowStr
	pool.For(m.LastRow-m.FirstRow+1, func(start, end int) {
		for j := start; j < end; j++ {
			suml := 0.0
			for k := rowstr[j]; k < rowstr[j+1]; k++ {
				suml += a[k] * src[colidx[k]]
			}
			dst[j] = suml
		}
	})
}
