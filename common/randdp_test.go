package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mask46 = 1<<46 - 1

// lcg is the integer form of the generator. Products wrap mod 2^64, which
// is a multiple of 2^46, so the low 46 bits are exact.
func lcg(x, a uint64) uint64 {
	return (x * a) & mask46
}

func TestRandlcMatchesIntegerLCG(t *testing.T) {
	x := Tran
	xi := uint64(Tran)
	for i := 0; i < 10000; i++ {
		got := Randlc(&x, Amult)
		xi = lcg(xi, uint64(Amult))
		require.Equal(t, float64(xi), x, "draw %d", i)
		require.Equal(t, float64(xi)/(1<<46), got, "draw %d", i)
		require.Greater(t, got, 0.0)
		require.Less(t, got, 1.0)
	}
}

func TestRandlcIsPure(t *testing.T) {
	a, b := 271828183.0, 271828183.0
	for i := 0; i < 100; i++ {
		assert.Equal(t, Randlc(&a, Amult), Randlc(&b, Amult))
	}
}

func TestVranlcMatchesRandlc(t *testing.T) {
	const n = 513
	x := Tran
	want := make([]float64, n)
	for i := range want {
		want[i] = Randlc(&x, Amult)
	}

	seed := Tran
	got := make([]float64, n)
	Vranlc(n, &seed, Amult, got)
	assert.Equal(t, want, got)
	assert.Equal(t, x, seed)

	// n == 0 only initializes
	before := seed
	Vranlc(0, &seed, Amult, nil)
	assert.Equal(t, before, seed)
}

func TestSkipAhead(t *testing.T) {
	tests := []struct {
		name string
		k    int64
	}{
		{"zero", 0},
		{"one", 1},
		{"power of two", 1024},
		{"odd", 12345},
		{"large", 1_000_003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := Tran
			for i := int64(0); i < tt.k; i++ {
				Randlc(&x, Amult)
			}
			assert.Equal(t, x, SkipAhead(Tran, Amult, tt.k))
		})
	}
}

func TestSkipAheadLongJump(t *testing.T) {
	// a = 5 mod 8, so the period for odd seeds is 2^44
	assert.Equal(t, Tran, SkipAhead(Tran, Amult, 1<<44))

	for _, k := range []int64{1<<40 + 77, 1<<43 - 1, 987654321987} {
		xi := uint64(Tran)
		ai := uint64(Amult)
		for e := k; e > 0; e >>= 1 {
			if e&1 == 1 {
				xi = lcg(xi, ai)
			}
			ai = lcg(ai, ai)
		}
		assert.Equal(t, float64(xi), SkipAhead(Tran, Amult, k), "k = %d", k)
	}
}

func TestStream(t *testing.T) {
	s := NewStream(Tran, Amult)
	first := s.Next()

	ahead := NewStream(Tran, Amult).At(1)
	assert.Equal(t, s.Seed, ahead.Seed)

	buf := make([]float64, 10)
	clone := *s
	s.Fill(buf)
	for i := range buf {
		assert.Equal(t, clone.Next(), buf[i])
	}
	assert.Equal(t, clone.Seed, s.Seed)

	s.Skip(5)
	clone.Skip(2)
	clone.Skip(3)
	assert.Equal(t, clone.Seed, s.Seed)
	assert.NotEqual(t, first, s.Next())
}
