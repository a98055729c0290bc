package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
	"github.com/katalvlaran/symtensor/tensor"
)

// benchU1Endo builds a random U1 endomorphism with `sectors` charges of
// multiplicity `mult` each.
func benchU1Endo(b *testing.B, sectors, mult int, seed int64) *tensor.TensorMap {
	b.Helper()
	grades := make([]space.Grade, sectors)
	for i := range grades {
		grades[i] = space.Grade{Sector: sector.U1{Charge: i - sectors/2}, Dim: mult}
	}
	v, err := space.New(grades...)
	if err != nil {
		b.Fatal(err)
	}
	p, err := space.Prod(v)
	if err != nil {
		b.Fatal(err)
	}
	t, err := tensor.Random(p, p, rand.New(rand.NewSource(seed)))
	if err != nil {
		b.Fatal(err)
	}

	return t
}

// BenchmarkCompose_Sequential measures blockwise dense multiplication on
// one goroutine.
func BenchmarkCompose_Sequential(b *testing.B) {
	x := benchU1Endo(b, 8, 32, 1)
	y := benchU1Endo(b, 8, 32, 2)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tensor.Compose(x, y, tensor.WithSequential())
	}
}

// BenchmarkCompose_Parallel fans the same multiplications over the pool.
func BenchmarkCompose_Parallel(b *testing.B) {
	x := benchU1Endo(b, 8, 32, 1)
	y := benchU1Endo(b, 8, 32, 2)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tensor.Compose(x, y, tensor.WithWorkers(4))
	}
}

// BenchmarkPermute_Trivial measures the ungraded transpose fast path.
func BenchmarkPermute_Trivial(b *testing.B) {
	v, err := space.NewTrivial(64)
	if err != nil {
		b.Fatal(err)
	}
	p, err := space.Prod(v, v)
	if err != nil {
		b.Fatal(err)
	}
	d, err := space.Prod(v)
	if err != nil {
		b.Fatal(err)
	}
	t, err := tensor.Random(p, d, rand.New(rand.NewSource(3)))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tensor.Permute(t, []int{2, 0}, []int{1})
	}
}

// BenchmarkPermute_Graded measures the strided accumulation engine on a
// ℤ₂-graded three-leg tensor.
func BenchmarkPermute_Graded(b *testing.B) {
	v, err := space.New(
		space.Grade{Sector: sector.Z2(false), Dim: 24},
		space.Grade{Sector: sector.Z2(true), Dim: 24},
	)
	if err != nil {
		b.Fatal(err)
	}
	cod, err := space.Prod(v, v)
	if err != nil {
		b.Fatal(err)
	}
	dom, err := space.Prod(v)
	if err != nil {
		b.Fatal(err)
	}
	t, err := tensor.Random(cod, dom, rand.New(rand.NewSource(4)))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tensor.Permute(t, []int{2, 0}, []int{1})
	}
}

// BenchmarkTSVD measures the full per-sector SVD plus the global plan.
func BenchmarkTSVD(b *testing.B) {
	t := benchU1Endo(b, 6, 48, 5)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tensor.TSVD(t, tensor.WithTruncation(tensor.TruncDim(128)))
	}
}

// BenchmarkLeftOrth measures the QR path.
func BenchmarkLeftOrth(b *testing.B) {
	t := benchU1Endo(b, 6, 48, 6)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = tensor.LeftOrth(t)
	}
}

// BenchmarkNorm measures the qdim-weighted arena reduction.
func BenchmarkNorm(b *testing.B) {
	t := benchU1Endo(b, 8, 64, 7)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tensor.Norm(t)
	}
}
