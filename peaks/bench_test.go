package peaks_test

import (
	"math/rand"
	"testing"

	"github.com/threedi/leakdetector/peaks"
)

// BenchmarkFindMaxima_Noisy measures peak finding on a long profile of
// uniform noise, which produces many short runs.
func BenchmarkFindMaxima_Noisy(b *testing.B) {
	const N = 4096
	rng := rand.New(rand.NewSource(1))
	p := make([]float64, N)
	for i := range p {
		p[i] = rng.Float64()
	}
	opts := peaks.Options{MinProminence: 0.25}

	b.ReportAllocs()
	b.SetBytes(int64(N * 8))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = peaks.FindMaxima(p, opts)
	}
}

// BenchmarkFindMaxima_Plateaus measures a profile of wide flat steps.
func BenchmarkFindMaxima_Plateaus(b *testing.B) {
	const N, width = 4096, 32
	p := make([]float64, N)
	for i := range p {
		if (i/width)%2 == 1 {
			p[i] = 3
		}
	}
	opts := peaks.DefaultOptions()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = peaks.FindMaxima(p, opts)
	}
}
