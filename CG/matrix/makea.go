package matrix

import (
	"math"

	"github.com/iyisakuma/NPB-GO/NPB-CG/common"
	"github.com/pkg/errors"
)

// Params describes the matrix to synthesize.
type Params struct {
	NA     int     // order
	NONZER int     // random nonzeros per generated row
	NZ     int     // capacity for matrix elements
	RCOND  float64 // condition-number decay ratio
	SHIFT  float64 // diagonal shift
}

const (
	diagValue    = 0.5
	minDrawBlock = 1 << 12
	maxDrawBlock = 1 << 20
)

// drawer yields successive values of one random stream.
type drawer interface {
	Next() float64
}

// drawSource serves a single logical stream from blocks generated in
// parallel. Worker ranges of a block are filled from a clone of the block
// start jumped ahead with SkipAhead, so the values are exactly those of
// sequential Randlc calls whatever the pool size.
type drawSource struct {
	pool  *common.Pool
	start common.Stream // position of buf[0]
	buf   []float64
	pos   int
}

func newDrawSource(s *common.Stream, pool *common.Pool, block int) *drawSource {
	block = max(minDrawBlock, min(block, maxDrawBlock))
	d := &drawSource{
		pool:  pool,
		start: *s,
		buf:   make([]float64, block),
	}
	d.fill()
	return d
}

func (d *drawSource) fill() {
	base := d.start
	d.pool.For(len(d.buf), func(start, end int) {
		base.At(int64(start)).Fill(d.buf[start:end])
	})
	d.pos = 0
}

func (d *drawSource) Next() float64 {
	if d.pos == len(d.buf) {
		d.start.Skip(int64(len(d.buf)))
		d.fill()
	}
	v := d.buf[d.pos]
	d.pos++
	return v
}

// Tell returns the stream positioned right after the last value served.
func (d *drawSource) Tell() common.Stream {
	return *d.start.At(int64(d.pos))
}

// rowCandidates stages the generated rows before assembly. Row i keeps
// arow[i] (column, value) pairs at acol/aelt[i*stride:].
type rowCandidates struct {
	stride int
	arow   []int
	acol   []int
	aelt   []float64
}

func newRowCandidates(n, nonzer int) *rowCandidates {
	stride := nonzer + 1
	return &rowCandidates{
		stride: stride,
		arow:   make([]int, n),
		acol:   make([]int, n*stride),
		aelt:   make([]float64, n*stride),
	}
}

// slots returns the full fixed-size buffers of row i.
func (rc *rowCandidates) slots(i int) ([]int, []float64) {
	off := i * rc.stride
	return rc.acol[off : off+rc.stride], rc.aelt[off : off+rc.stride]
}

// row returns the filled part of row i.
func (rc *rowCandidates) row(i int) ([]int, []float64) {
	iv, v := rc.slots(i)
	return iv[:rc.arow[i]], v[:rc.arow[i]]
}

// icnvrt scales x in (0,1) by a power of two and chops it.
func icnvrt(x float64, ipwr2 int) int {
	return int(float64(ipwr2) * x)
}

// sprnvc generates a sparse n-vector (v, iv) with nz distinct 1-based
// positions. Each element costs two draws, value then location; locations
// beyond n and repeats are rejected.
func sprnvc(n, nz, nn1 int, v []float64, iv []int, src drawer) {
	nzv := 0
	for nzv < nz {
		vecelt := src.Next()
		vecloc := src.Next()
		i := icnvrt(vecloc, nn1) + 1
		if i > n {
			continue
		}

		wasGen := false
		for ii := 0; ii < nzv; ii++ {
			if iv[ii] == i {
				wasGen = true
				break
			}
		}
		if wasGen {
			continue
		}
		v[nzv] = vecelt
		iv[nzv] = i
		nzv++
	}
}

// vecset sets element i of the sparse vector (v, iv) with nzv nonzeros
// to val, appending it when absent.
func vecset(v []float64, iv []int, nzv *int, i int, val float64) {
	set := false
	for k := 0; k < *nzv; k++ {
		if iv[k] == i {
			v[k] = val
			set = true
		}
	}
	if !set {
		v[*nzv] = val
		iv[*nzv] = i
		*nzv++
	}
}

// Makea generates the benchmark matrix from stream. On return stream is
// positioned after the last draw consumed, as if every draw had been
// taken sequentially.
func Makea(mp Params, stream *common.Stream, pool *common.Pool) (*CSR, error) {
	n := mp.NA
	if n <= 0 || mp.NONZER <= 0 || mp.NONZER > n {
		return nil, errors.Wrapf(ErrBadParams, "na = %d, nonzer = %d", n, mp.NONZER)
	}

	// nn1 is the smallest power of two not less than n
	nn1 := 1
	for nn1 < n {
		nn1 *= 2
	}

	rc := newRowCandidates(n, mp.NONZER)

	// Row boundaries in the stream depend on rejected draws, so the
	// acceptance scan runs in row order over a parallel-filled stream.
	src := newDrawSource(stream, pool, 2*mp.NONZER*nn1)
	for iouter := 0; iouter < n; iouter++ {
		iv, v := rc.slots(iouter)
		sprnvc(n, mp.NONZER, nn1, v, iv, src)
		rc.arow[iouter] = mp.NONZER
	}
	*stream = src.Tell()

	pool.For(n, func(start, end int) {
		for iouter := start; iouter < end; iouter++ {
			iv, v := rc.slots(iouter)
			nzv := rc.arow[iouter]
			vecset(v, iv, &nzv, iouter+1, diagValue)
			rc.arow[iouter] = nzv
			for k := 0; k < nzv; k++ {
				iv[k]--
			}
		}
	})

	m := &CSR{
		Rows:     n,
		Cols:     n,
		FirstRow: 0,
		LastRow:  n - 1,
		FirstCol: 0,
		LastCol:  n - 1,
		A:        make([]float64, mp.NZ),
		ColIdx:   make([]int, mp.NZ),
		RowStr:   make([]int, n+1),
	}
	if err := sparse(m, rc, mp.RCOND, mp.SHIFT, pool); err != nil {
		return nil, err
	}

	firstcol := m.FirstCol
	pool.For(m.LastRow-m.FirstRow+1, func(start, end int) {
		for j := start; j < end; j++ {
			for k := m.RowStr[j]; k < m.RowStr[j+1]; k++ {
				m.ColIdx[k] -= firstcol
			}
		}
	})
	return m, nil
}

// sparse assembles the CSR matrix from the staged rows. Row i scatters
// the outer product of its candidates into the rows named by its own
// columns, which makes the result symmetric. Duplicated cells are summed
// and the reserved space they leave is squeezed out at the end.
func sparse(m *CSR, rc *rowCandidates, rcond, shift float64, pool *common.Pool) error {
	n := m.Rows
	nrows := m.LastRow - m.FirstRow + 1
	a, colidx, rowstr := m.A, m.ColIdx, m.RowStr
	nz := len(a)

	// Count the number of triples in each row
	for j := 0; j < nrows+1; j++ {
		rowstr[j] = 0
	}
	for i := 0; i < n; i++ {
		cols, _ := rc.row(i)
		for _, c := range cols {
			rowstr[c+1] += len(cols)
		}
	}
	rowstr[0] = 0
	for j := 1; j < nrows+1; j++ {
		rowstr[j] += rowstr[j-1]
	}
	if nza := rowstr[nrows]; nza > nz {
		return errors.Wrapf(ErrSpaceExceeded, "rows = %d, nza = %d, nzmax = %d", nrows, nza, nz)
	}

	// nzloc[j] counts the duplicates merged into row j
	nzloc := make([]int, nrows)
	pool.For(nrows, func(start, end int) {
		for j := start; j < end; j++ {
			for k := rowstr[j]; k < rowstr[j+1]; k++ {
				a[k] = 0.0
				colidx[k] = -1
			}
			nzloc[j] = 0
		}
	})

	size := 1.0
	ratio := math.Pow(rcond, 1.0/float64(n))
	for i := 0; i < n; i++ {
		cols, vals := rc.row(i)
		for nza, j := range cols {
			scale := size * vals[nza]
			for nzrow, jcol := range cols {
				va := vals[nzrow] * scale

				// Add the identity * rcond to the generated matrix
				if jcol == j && j == i {
					va = va + rcond - shift
				}

				k, dup, ok := insertSorted(a, colidx, rowstr[j], rowstr[j+1], jcol)
				if !ok {
					return errors.Wrapf(ErrInternalInsert, "i = %d, row = %d, col = %d", i, j, jcol)
				}
				if dup {
					nzloc[j]++
				}
				a[k] += va
			}
		}
		size *= ratio
	}

	// Remove empty entries and generate final results
	for j := 1; j < nrows; j++ {
		nzloc[j] += nzloc[j-1]
	}
	for j := 0; j < nrows; j++ {
		j1 := 0
		if j > 0 {
			j1 = rowstr[j] - nzloc[j-1]
		}
		j2 := rowstr[j+1] - nzloc[j]
		nza := rowstr[j]
		for k := j1; k < j2; k++ {
			a[k] = a[nza]
			colidx[k] = colidx[nza]
			nza++
		}
	}
	for j := 1; j < nrows+1; j++ {
		rowstr[j] -= nzloc[j-1]
	}

	nnz := rowstr[nrows]
	m.A = a[:nnz:nnz]
	m.ColIdx = colidx[:nnz:nnz]
	return nil
}

// insertSorted finds the slot for column jcol in the row segment
// [lo, hi). Filled slots form an ascending prefix followed by -1 slots.
// A larger column shifts the rest of the prefix one place right; an empty
// slot is taken as is; an equal column is reported as a duplicate. ok is
// false when the segment is full.
func insertSorted(a []float64, colidx []int, lo, hi, jcol int) (k int, dup, ok bool) {
	for k = lo; k < hi; k++ {
		switch {
		case colidx[k] > jcol:
			for kk := hi - 2; kk >= k; kk-- {
				if colidx[kk] > -1 {
					a[kk+1] = a[kk]
					colidx[kk+1] = colidx[kk]
				}
			}
			colidx[k] = jcol
			a[k] = 0.0
			return k, false, true
		case colidx[k] == -1:
			colidx[k] = jcol
			return k, false, true
		case colidx[k] == jcol:
			return k, true, true
		}
	}
	return hi, false, false
}
