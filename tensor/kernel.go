// Package tensor: in-house dense kernels.
//
// Two per-block kernels backstop gonum where its drivers do not reach:
//   - householderQR — full QR of an ARBITRARY m×n block. gonum's QR wants
//     m ≥ n and its LQ wants m ≤ n; the orthogonalization and null-space
//     routines need the complementary shapes too.
//   - jacobiSVD — one-sided Jacobi SVD, a genuinely different algorithm
//     from the default driver, selectable via WithSVDAlg(SVDJacobi) as the
//     caller-chosen remediation for a non-converging block.
//
// Both kernels are pure: inputs are copied, never mutated.
package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// jacobiMaxSweeps caps the one-sided Jacobi iteration; exceeding it is a
// numerical failure surfaced to the caller, never retried internally.
const jacobiMaxSweeps = 64

// jacobiTol is the relative off-diagonality threshold deciding convergence
// of a column pair.
const jacobiTol = 1e-14

// householderQR computes the full decomposition a = Q·R for any m×n block:
// Q is m×m orthogonal, R is m×n upper trapezoidal.
//
// Implementation:
//   - Stage 1: copy a into the working R; initialize Q to the identity.
//   - Stage 2: for each of the min(m,n) reflectors, build the Householder
//     vector of the trailing column, apply it to R from the left and
//     accumulate it into Q from the right.
//   - Stage 3: return the accumulated Q and the triangularized R.
//
// Complexity: O(m·n·min(m,n)) time, O(m²+m·n) memory.
func householderQR(a *mat.Dense) (q, r *mat.Dense) {
	m, n := a.Dims()
	r = mat.DenseCopyOf(a)
	q = mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		q.Set(i, i, 1)
	}

	v := make([]float64, m)
	steps := minInt(m, n)
	for k := 0; k < steps; k++ {
		// Householder vector of R[k:m, k].
		var norm float64
		for i := k; i < m; i++ {
			v[i] = r.At(i, k)
			norm = math.Hypot(norm, v[i])
		}
		if norm == 0 {
			continue // column already zero below the diagonal
		}
		alpha := -math.Copysign(norm, v[k])
		v[k] -= alpha
		var beta float64
		for i := k; i < m; i++ {
			beta += v[i] * v[i]
		}
		if beta == 0 {
			continue
		}
		tau := 2 / beta

		// R ← (I − τ·v·vᵀ)·R on the trailing columns.
		for j := k; j < n; j++ {
			var dot float64
			for i := k; i < m; i++ {
				dot += v[i] * r.At(i, j)
			}
			dot *= tau
			for i := k; i < m; i++ {
				r.Set(i, j, r.At(i, j)-dot*v[i])
			}
		}
		// Q ← Q·(I − τ·v·vᵀ), accumulating the product of reflectors.
		for i := 0; i < m; i++ {
			var dot float64
			for j := k; j < m; j++ {
				dot += q.At(i, j) * v[j]
			}
			dot *= tau
			for j := k; j < m; j++ {
				q.Set(i, j, q.At(i, j)-dot*v[j])
			}
		}
	}

	// Clean the strictly-lower part of R: the reflections leave numerical
	// dust there, and downstream rank checks read exact zeros.
	for i := 1; i < m; i++ {
		for j := 0; j < minInt(i, n); j++ {
			r.Set(i, j, 0)
		}
	}

	return q, r
}

// jacobiSVD computes the thin SVD a = U·diag(s)·Vᵀ by one-sided Jacobi
// rotations. U is m×k, s has k = min(m,n) descending entries, V is n×k.
// Wide blocks (m < n) are handled by factorizing the transpose and swapping
// the roles of U and V.
//
// Returns ErrNumericalFailure (untagged; callers add the sector) when the
// sweep cap is exhausted before all column pairs decouple.
//
// Complexity: O(sweeps·n²·m) time, O(m·n + n²) memory.
func jacobiSVD(a *mat.Dense) (u *mat.Dense, s []float64, v *mat.Dense, err error) {
	m, n := a.Dims()
	if m < n {
		// One-sided Jacobi orthogonalizes columns; run on aᵀ and swap back.
		var ut *mat.Dense
		v, s, ut, err = jacobiSVD(mat.DenseCopyOf(a.T()))

		return ut, s, v, err
	}

	// Stage 1: working copy B (columns to orthogonalize) and V = I.
	b := mat.DenseCopyOf(a)
	v = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		v.Set(i, i, 1)
	}

	// Stage 2: sweep column pairs until every pair is orthogonal within
	// tolerance. Constants follow the classical one-sided Jacobi scheme.
	converged := false
	for sweep := 0; sweep < jacobiMaxSweeps && !converged; sweep++ {
		converged = true
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				var app, aqq, apq float64
				for i := 0; i < m; i++ {
					bp, bq := b.At(i, p), b.At(i, q)
					app += bp * bp
					aqq += bq * bq
					apq += bp * bq
				}
				if math.Abs(apq) <= jacobiTol*math.Sqrt(app*aqq) {
					continue
				}
				converged = false

				zeta := (aqq - app) / (2 * apq)
				t := math.Copysign(1, zeta) / (math.Abs(zeta) + math.Sqrt(1+zeta*zeta))
				c := 1 / math.Sqrt(1+t*t)
				sn := c * t

				for i := 0; i < m; i++ {
					bp, bq := b.At(i, p), b.At(i, q)
					b.Set(i, p, c*bp-sn*bq)
					b.Set(i, q, sn*bp+c*bq)
				}
				for i := 0; i < n; i++ {
					vp, vq := v.At(i, p), v.At(i, q)
					v.Set(i, p, c*vp-sn*vq)
					v.Set(i, q, sn*vp+c*vq)
				}
			}
		}
	}
	if !converged {
		return nil, nil, nil, ErrNumericalFailure
	}

	// Stage 3: singular values are the column norms; sort descending and
	// carry the V columns along.
	s = make([]float64, n)
	order := make([]int, n)
	for j := 0; j < n; j++ {
		s[j] = colNorm(b, j)
		order[j] = j
	}
	for i := 1; i < n; i++ { // insertion sort, stable, short
		for k := i; k > 0 && s[order[k]] > s[order[k-1]]; k-- {
			order[k], order[k-1] = order[k-1], order[k]
		}
	}

	sorted := make([]float64, n)
	u = mat.NewDense(m, n, nil)
	vOut := mat.NewDense(n, n, nil)
	for jNew, jOld := range order {
		sorted[jNew] = s[jOld]
		for i := 0; i < n; i++ {
			vOut.Set(i, jNew, v.At(i, jOld))
		}
		if s[jOld] > 0 {
			inv := 1 / s[jOld]
			for i := 0; i < m; i++ {
				u.Set(i, jNew, b.At(i, jOld)*inv)
			}
		}
	}

	// Stage 4: a zero singular value leaves its U column empty; complete it
	// to an orthonormal set so thin isometry still holds.
	completeOrthonormal(u, sorted)

	return u, sorted, vOut, nil
}

// completeOrthonormal fills the U columns of zero singular values with unit
// vectors orthogonal to every populated column (modified Gram–Schmidt over
// coordinate candidates).
func completeOrthonormal(u *mat.Dense, s []float64) {
	m, k := u.Dims()
	for j := 0; j < k; j++ {
		if s[j] > 0 {
			continue
		}
		for cand := 0; cand < m; cand++ {
			w := make([]float64, m)
			w[cand] = 1
			for l := 0; l < k; l++ {
				if l == j || (l > j && s[l] == 0) {
					continue
				}
				var dot float64
				for i := 0; i < m; i++ {
					dot += w[i] * u.At(i, l)
				}
				for i := 0; i < m; i++ {
					w[i] -= dot * u.At(i, l)
				}
			}
			if norm := floats.Norm(w, 2); norm > 0.5 {
				for i := 0; i < m; i++ {
					u.Set(i, j, w[i]/norm)
				}

				break
			}
		}
	}
}

// colNorm returns the Euclidean norm of column j.
func colNorm(a *mat.Dense, j int) float64 {
	m, _ := a.Dims()
	var sum float64
	for i := 0; i < m; i++ {
		sum = math.Hypot(sum, a.At(i, j))
	}

	return sum
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
