package common

import (
	"math/rand"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolFallback(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), NewPool(0).Workers())
	assert.Equal(t, runtime.NumCPU(), NewPool(-3).Workers())
	assert.Equal(t, 5, NewPool(5).Workers())
}

func TestChunkCoversRange(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 7, 16} {
		for _, n := range []int{0, 1, 5, 16, 1401} {
			p := NewPool(workers)
			next := 0
			for id := 0; id < workers; id++ {
				start, end := p.Chunk(id, n)
				require.Equal(t, next, start, "workers = %d, n = %d, id = %d", workers, n, id)
				require.LessOrEqual(t, start, end)
				next = end
			}
			assert.Equal(t, n, next, "workers = %d, n = %d", workers, n)
		}
	}
}

func TestForTouchesEveryIndexOnce(t *testing.T) {
	const n = 1000
	for _, workers := range []int{1, 2, 4, 9, 2000} {
		hits := make([]int32, n)
		NewPool(workers).For(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.Equal(t, int32(1), h, "index %d, workers = %d", i, workers)
		}
	}
}

func TestGo(t *testing.T) {
	var seen int32
	err := NewPool(4).Go(func(id int) error {
		atomic.AddInt32(&seen, 1<<id)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0b1111), seen)

	boom := errors.New("boom")
	err = NewPool(3).Go(func(id int) error {
		if id == 2 {
			return boom
		}
		return nil
	})
	assert.True(t, errors.Is(err, boom))
}

// Sum must agree with a sequential sum up to rounding, whatever the split.
func TestSumMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(5000)
		x := make([]float64, n)
		want := 0.0
		for i := range x {
			x[i] = rng.Float64()*2 - 1
			want += x[i] * x[i]
		}

		workers := 1 + rng.Intn(12)
		got := NewPool(workers).Sum(n, func(start, end int) float64 {
			local := 0.0
			for i := start; i < end; i++ {
				local += x[i] * x[i]
			}
			return local
		})
		require.InDelta(t, want, got, 1e-9, "n = %d, workers = %d", n, workers)
	}
}

func TestSumIsReproducible(t *testing.T) {
	const n = 4097
	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(i+1)
	}
	body := func(start, end int) float64 {
		local := 0.0
		for i := start; i < end; i++ {
			local += x[i]
		}
		return local
	}
	p := NewPool(6)
	first := p.Sum(n, body)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, p.Sum(n, body))
	}
}

func TestSum2(t *testing.T) {
	const n = 300
	a, b := NewPool(4).Sum2(n, func(start, end int) (float64, float64) {
		var s, c float64
		for i := start; i < end; i++ {
			s += float64(i)
			c++
		}
		return s, c
	})
	assert.Equal(t, float64(n*(n-1)/2), a)
	assert.Equal(t, float64(n), b)

	a, b = NewPool(8).Sum2(0, func(start, end int) (float64, float64) {
		return float64(end - start), 0
	})
	assert.Zero(t, a)
	assert.Zero(t, b)
}
