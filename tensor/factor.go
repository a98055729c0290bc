// Package tensor: the factorization engine — TSVD, LeftOrth/RightOrth and
// the null-space routines.
//
// All routines are pure, stateless functions over the current
// codomain/domain partition: per-sector dense solves (fanned out across the
// worker pool), one global plan where truncation is involved, then
// assembly. No partial commit — outputs are assembled only after every
// per-sector solve succeeded, and inputs are never mutated.
//
// Shape regimes: gonum's QR wants m ≥ n and its LQ wants m ≤ n; the
// complementary shapes route through the in-house Householder kernel
// (wide blocks directly, tall LQ via the transpose).
package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
)

// SVDResult bundles the outcome of TSVD: t ≈ U·S·Vh with U an isometry
// into the internal space, S its diagonal endomorphism and Vh an isometry
// out of it. Eps is the aggregated truncation error (0 under TruncNone).
type SVDResult struct {
	U   *TensorMap
	S   *TensorMap
	Vh  *TensorMap
	Eps float64

	// Mid is the internal space: one grade per sector with surviving rank.
	Mid space.Space
}

// TSVD computes the truncated singular value decomposition of t.
//
// Per coupled sector the dense block factorizes as U_c·Σ_c·V_cᵀ (driver per
// WithSVDAlg); then ONE global truncation step selects the surviving
// singular values across all sectors per the scheme from WithTruncation,
// and the three factors are assembled over the internal space graded by the
// kept ranks (rank-0 sectors are dropped).
//
// Errors: ErrNotInnerProduct on Generic legs; ErrNumericalFailure wrapped
// in a *SectorError for a non-converging block (remediation: WithSVDAlg);
// ErrSpaceMismatch for an incompatible TruncSpace target or a truncation
// that discards everything.
//
// Complexity: Σ_c O(m_c·n_c·min(m_c,n_c)) plus O(V log V) planning.
func TSVD(t *TensorMap, opts ...Option) (*SVDResult, error) {
	if t == nil {
		return nil, fmt.Errorf("TSVD: %w", ErrNilTensor)
	}
	if !euclideanProduct(t.cod) || !euclideanProduct(t.dom) {
		return nil, fmt.Errorf("TSVD: %w", ErrNotInnerProduct)
	}
	o := gatherOptions(opts...)

	// Stage 1: per-sector solves, staged into position-indexed slices.
	sectors := t.store.sectors
	us := make([]*mat.Dense, len(sectors))
	ss := make([][]float64, len(sectors))
	vs := make([]*mat.Dense, len(sectors))
	err := o.eachIndex(len(sectors), func(i int) error {
		blk, _ := t.store.view(sectors[i])
		u, s, v, kerr := kernelSVD(blk, o.svdAlg, false)
		if kerr != nil {
			return sectorErrorf("TSVD", sectors[i], kerr)
		}
		us[i], ss[i], vs[i] = u, s, v

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 2: the global truncation plan.
	keep, eps, err := o.trunc.plan(sectors, ss)
	if err != nil {
		return nil, fmt.Errorf("TSVD: %w", err)
	}

	// Stage 3: internal space from the surviving ranks.
	mid, midP, err := rankSpace("TSVD", sectors, keep)
	if err != nil {
		return nil, err
	}

	// Stage 4: assembly.
	uT, err := New(t.cod, midP)
	if err != nil {
		return nil, fmt.Errorf("TSVD: %w", err)
	}
	sT, err := New(midP, midP)
	if err != nil {
		return nil, fmt.Errorf("TSVD: %w", err)
	}
	vhT, err := New(midP, t.dom)
	if err != nil {
		return nil, fmt.Errorf("TSVD: %w", err)
	}
	for i, c := range sectors {
		k := keep[i]
		if k == 0 {
			continue
		}
		m, _ := us[i].Dims()
		n, _ := vs[i].Dims()

		ublk, _ := uT.store.view(c)
		ublk.Copy(us[i].Slice(0, m, 0, k))

		sblk, _ := sT.store.view(c)
		for j := 0; j < k; j++ {
			sblk.Set(j, j, ss[i][j])
		}

		vhblk, _ := vhT.store.view(c)
		vhblk.Copy(vs[i].Slice(0, n, 0, k).T())
	}

	return &SVDResult{U: uT, S: sT, Vh: vhT, Eps: eps, Mid: mid}, nil
}

// LeftOrth factorizes t = Q·R with Q an isometry (Qᴴ·Q = id on the
// internal space).
//
// The default OrthQRPos runs a per-sector QR with the diagonal of R forced
// non-negative (uniqueness) and demands full rank per sector: a diagonal
// entry below max(atol, rtol·‖t‖) fails with ErrRankDeficient wrapped in a
// *SectorError — switch to WithOrthAlg(OrthSVD), which keeps the singular
// vectors above that same threshold instead.
func LeftOrth(t *TensorMap, opts ...Option) (q, r *TensorMap, err error) {
	if t == nil {
		return nil, nil, fmt.Errorf("LeftOrth: %w", ErrNilTensor)
	}
	if !euclideanProduct(t.cod) || !euclideanProduct(t.dom) {
		return nil, nil, fmt.Errorf("LeftOrth: %w", ErrNotInnerProduct)
	}
	o := gatherOptions(opts...)
	theta, err := rankThreshold(t, o)
	if err != nil {
		return nil, nil, fmt.Errorf("LeftOrth: %w", err)
	}

	sectors := t.store.sectors
	qs := make([]*mat.Dense, len(sectors))
	rs := make([]*mat.Dense, len(sectors))
	ranks := make([]int, len(sectors))

	solve := func(i int) error {
		blk, _ := t.store.view(sectors[i])
		m, n := blk.Dims()
		k := minInt(m, n)

		if o.orthAlg == OrthSVD {
			u, s, v, kerr := kernelSVD(blk, o.svdAlg, false)
			if kerr != nil {
				return sectorErrorf("LeftOrth", sectors[i], kerr)
			}
			rank := countAbove(s, theta)
			if rank == 0 {
				return nil
			}
			qs[i] = mat.DenseCopyOf(u.Slice(0, m, 0, rank))
			// R = Σ·Vᵀ on the kept rows.
			rblk := mat.NewDense(rank, n, nil)
			for row := 0; row < rank; row++ {
				for col := 0; col < n; col++ {
					rblk.Set(row, col, s[row]*v.At(col, row))
				}
			}
			rs[i], ranks[i] = rblk, rank

			return nil
		}

		qf, rf := qrFull(blk)
		qThin := mat.DenseCopyOf(qf.Slice(0, m, 0, k))
		rThin := mat.DenseCopyOf(rf.Slice(0, k, 0, n))
		fixQRSigns(qThin, rThin)
		for j := 0; j < k; j++ {
			if math.Abs(rThin.At(j, j)) <= theta {
				return sectorErrorf("LeftOrth", sectors[i], ErrRankDeficient)
			}
		}
		qs[i], rs[i], ranks[i] = qThin, rThin, k

		return nil
	}
	if err = o.eachIndex(len(sectors), solve); err != nil {
		return nil, nil, err
	}

	_, midP, err := rankSpace("LeftOrth", sectors, ranks)
	if err != nil {
		return nil, nil, err
	}

	if q, err = New(t.cod, midP); err != nil {
		return nil, nil, fmt.Errorf("LeftOrth: %w", err)
	}
	if r, err = New(midP, t.dom); err != nil {
		return nil, nil, fmt.Errorf("LeftOrth: %w", err)
	}
	for i, c := range sectors {
		if ranks[i] == 0 {
			continue
		}
		qblk, _ := q.store.view(c)
		qblk.Copy(qs[i])
		rblk, _ := r.store.view(c)
		rblk.Copy(rs[i])
	}

	return q, r, nil
}

// RightOrth factorizes t = L·Q with Q a co-isometry (Q·Qᴴ = id on the
// internal space). Default: per-sector LQ with the diagonal of L forced
// non-negative; rank handling mirrors LeftOrth.
func RightOrth(t *TensorMap, opts ...Option) (l, q *TensorMap, err error) {
	if t == nil {
		return nil, nil, fmt.Errorf("RightOrth: %w", ErrNilTensor)
	}
	if !euclideanProduct(t.cod) || !euclideanProduct(t.dom) {
		return nil, nil, fmt.Errorf("RightOrth: %w", ErrNotInnerProduct)
	}
	o := gatherOptions(opts...)
	theta, err := rankThreshold(t, o)
	if err != nil {
		return nil, nil, fmt.Errorf("RightOrth: %w", err)
	}

	sectors := t.store.sectors
	ls := make([]*mat.Dense, len(sectors))
	qs := make([]*mat.Dense, len(sectors))
	ranks := make([]int, len(sectors))

	solve := func(i int) error {
		blk, _ := t.store.view(sectors[i])
		m, n := blk.Dims()
		k := minInt(m, n)

		if o.orthAlg == OrthSVD {
			u, s, v, kerr := kernelSVD(blk, o.svdAlg, false)
			if kerr != nil {
				return sectorErrorf("RightOrth", sectors[i], kerr)
			}
			rank := countAbove(s, theta)
			if rank == 0 {
				return nil
			}
			// L = U·Σ on the kept columns.
			lblk := mat.NewDense(m, rank, nil)
			for row := 0; row < m; row++ {
				for col := 0; col < rank; col++ {
					lblk.Set(row, col, u.At(row, col)*s[col])
				}
			}
			qs[i] = mat.DenseCopyOf(v.Slice(0, n, 0, rank).T())
			ls[i], ranks[i] = lblk, rank

			return nil
		}

		lf, qf := lqFull(blk)
		lThin := mat.DenseCopyOf(lf.Slice(0, m, 0, k))
		qThin := mat.DenseCopyOf(qf.Slice(0, k, 0, n))
		fixLQSigns(lThin, qThin)
		for j := 0; j < k; j++ {
			if math.Abs(lThin.At(j, j)) <= theta {
				return sectorErrorf("RightOrth", sectors[i], ErrRankDeficient)
			}
		}
		ls[i], qs[i], ranks[i] = lThin, qThin, k

		return nil
	}
	if err = o.eachIndex(len(sectors), solve); err != nil {
		return nil, nil, err
	}

	_, midP, err := rankSpace("RightOrth", sectors, ranks)
	if err != nil {
		return nil, nil, err
	}

	if l, err = New(t.cod, midP); err != nil {
		return nil, nil, fmt.Errorf("RightOrth: %w", err)
	}
	if q, err = New(midP, t.dom); err != nil {
		return nil, nil, fmt.Errorf("RightOrth: %w", err)
	}
	for i, c := range sectors {
		if ranks[i] == 0 {
			continue
		}
		lblk, _ := l.store.view(c)
		lblk.Copy(ls[i])
		qblk, _ := q.store.view(c)
		qblk.Copy(qs[i])
	}

	return l, q, nil
}

// LeftNull returns an isometry N whose columns span the orthogonal
// complement of range(t) in the codomain: Nᴴ·N = id and Nᴴ·t = 0.
//
// Sectors range over the WHOLE codomain: a coupled sector the tensor never
// reaches is entirely null and contributes an identity block. The default
// path is a full QR per sector (fast, demands full rank — ErrRankDeficient
// otherwise); OrthSVD takes the left singular vectors at or below the rank
// threshold. A trivial (zero-dimensional) null space is ErrSpaceMismatch.
func LeftNull(t *TensorMap, opts ...Option) (*TensorMap, error) {
	if t == nil {
		return nil, fmt.Errorf("LeftNull: %w", ErrNilTensor)
	}
	if !euclideanProduct(t.cod) || !euclideanProduct(t.dom) {
		return nil, fmt.Errorf("LeftNull: %w", ErrNotInnerProduct)
	}
	o := gatherOptions(opts...)
	theta, err := rankThreshold(t, o)
	if err != nil {
		return nil, fmt.Errorf("LeftNull: %w", err)
	}

	// The codomain's own sector census, independent of I1 intersection.
	rowSecs := t.cod.BlockSectors()
	if t.cod.Len() == 0 {
		if unit, ok := t.dom.Unit(); ok {
			rowSecs = []sector.Sector{unit}
		}
	}

	nulls := make([]*mat.Dense, len(rowSecs))
	dims := make([]int, len(rowSecs))
	solve := func(i int) error {
		c := rowSecs[i]
		m := t.cod.BlockDim(c)
		if m == 0 && t.cod.Len() == 0 {
			m = 1
		}

		blk, ok := t.store.view(c)
		if !ok {
			nulls[i], dims[i] = identityDense(m), m

			return nil
		}
		_, n := blk.Dims()

		if o.orthAlg == OrthSVD {
			u, s, _, kerr := kernelSVD(blk, o.svdAlg, true)
			if kerr != nil {
				return sectorErrorf("LeftNull", c, kerr)
			}
			rank := countAbove(s, theta)
			if rank == m {
				return nil
			}
			nulls[i] = mat.DenseCopyOf(u.Slice(0, m, rank, m))
			dims[i] = m - rank

			return nil
		}

		qf, rf := qrFull(blk)
		k := minInt(m, n)
		for j := 0; j < k; j++ {
			if math.Abs(rf.At(j, j)) <= theta {
				return sectorErrorf("LeftNull", c, ErrRankDeficient)
			}
		}
		if k == m {
			return nil // full row rank: nothing orthogonal left
		}
		nulls[i] = mat.DenseCopyOf(qf.Slice(0, m, k, m))
		dims[i] = m - k

		return nil
	}
	if err = o.eachIndex(len(rowSecs), solve); err != nil {
		return nil, err
	}

	_, midP, err := rankSpace("LeftNull", rowSecs, dims)
	if err != nil {
		return nil, err
	}
	out, err := New(t.cod, midP)
	if err != nil {
		return nil, fmt.Errorf("LeftNull: %w", err)
	}
	for i, c := range rowSecs {
		if dims[i] == 0 {
			continue
		}
		dst, _ := out.store.view(c)
		dst.Copy(nulls[i])
	}

	return out, nil
}

// RightNull returns a co-isometry N whose rows span the orthogonal
// complement of the row space of t in the domain: N·Nᴴ = id and t·Nᴴ = 0.
// Mirrors LeftNull over the domain's sector census (identity blocks for
// sectors t never reaches; LQ fast path; OrthSVD general path).
func RightNull(t *TensorMap, opts ...Option) (*TensorMap, error) {
	if t == nil {
		return nil, fmt.Errorf("RightNull: %w", ErrNilTensor)
	}
	if !euclideanProduct(t.cod) || !euclideanProduct(t.dom) {
		return nil, fmt.Errorf("RightNull: %w", ErrNotInnerProduct)
	}
	o := gatherOptions(opts...)
	theta, err := rankThreshold(t, o)
	if err != nil {
		return nil, fmt.Errorf("RightNull: %w", err)
	}

	colSecs := t.dom.BlockSectors()
	if t.dom.Len() == 0 {
		if unit, ok := t.cod.Unit(); ok {
			colSecs = []sector.Sector{unit}
		}
	}

	nulls := make([]*mat.Dense, len(colSecs))
	dims := make([]int, len(colSecs))
	solve := func(i int) error {
		c := colSecs[i]
		n := t.dom.BlockDim(c)
		if n == 0 && t.dom.Len() == 0 {
			n = 1
		}

		blk, ok := t.store.view(c)
		if !ok {
			nulls[i], dims[i] = identityDense(n), n

			return nil
		}
		m, _ := blk.Dims()

		if o.orthAlg == OrthSVD {
			_, s, v, kerr := kernelSVD(blk, o.svdAlg, true)
			if kerr != nil {
				return sectorErrorf("RightNull", c, kerr)
			}
			rank := countAbove(s, theta)
			if rank == n {
				return nil
			}
			nulls[i] = mat.DenseCopyOf(v.Slice(0, n, rank, n).T())
			dims[i] = n - rank

			return nil
		}

		lf, qf := lqFull(blk)
		k := minInt(m, n)
		for j := 0; j < k; j++ {
			if math.Abs(lf.At(j, j)) <= theta {
				return sectorErrorf("RightNull", c, ErrRankDeficient)
			}
		}
		if k == n {
			return nil
		}
		nulls[i] = mat.DenseCopyOf(qf.Slice(k, n, 0, n))
		dims[i] = n - k

		return nil
	}
	if err = o.eachIndex(len(colSecs), solve); err != nil {
		return nil, err
	}

	_, midP, err := rankSpace("RightNull", colSecs, dims)
	if err != nil {
		return nil, err
	}
	out, err := New(midP, t.dom)
	if err != nil {
		return nil, fmt.Errorf("RightNull: %w", err)
	}
	for i, c := range colSecs {
		if dims[i] == 0 {
			continue
		}
		dst, _ := out.store.view(c)
		dst.Copy(nulls[i])
	}

	return out, nil
}

// ---------------------------------------------------------------------------
// shared helpers
// ---------------------------------------------------------------------------

// kernelSVD dispatches one block to the selected singular-value solver.
// full requests complete U (m×m) and V (n×n); the Jacobi path extends its
// thin factors by orthonormal completion.
func kernelSVD(blk *mat.Dense, alg SVDAlg, full bool) (u *mat.Dense, s []float64, v *mat.Dense, err error) {
	if alg == SVDJacobi {
		u, s, v, err = jacobiSVD(blk)
		if err != nil {
			return nil, nil, nil, err
		}
		if full {
			m, n := blk.Dims()
			u = extendOrthonormal(u, m)
			v = extendOrthonormal(v, n)
		}

		return u, s, v, nil
	}

	kind := mat.SVDThin
	if full {
		kind = mat.SVDFull
	}
	var svd mat.SVD
	if ok := svd.Factorize(blk, kind); !ok {
		return nil, nil, nil, ErrNumericalFailure
	}
	u, v = &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)

	return u, svd.Values(nil), v, nil
}

// extendOrthonormal widens x (d×k, orthonormal columns) to a full d×d
// orthogonal matrix by Gram–Schmidt completion. x itself is returned when
// it is already square.
func extendOrthonormal(x *mat.Dense, d int) *mat.Dense {
	_, k := x.Dims()
	if k == d {
		return x
	}
	out := mat.NewDense(d, d, nil)
	out.Slice(0, d, 0, k).(*mat.Dense).Copy(x)

	marks := make([]float64, d) // zero marks the columns to complete
	for j := 0; j < k; j++ {
		marks[j] = 1
	}
	completeOrthonormal(out, marks)

	return out
}

// qrFull computes the full QR of any m×n block: gonum for the tall/square
// regime, the in-house Householder kernel for wide blocks.
func qrFull(blk *mat.Dense) (q, r *mat.Dense) {
	m, n := blk.Dims()
	if m >= n {
		var qr mat.QR
		qr.Factorize(blk)
		q, r = &mat.Dense{}, &mat.Dense{}
		qr.QTo(q)
		qr.RTo(r)

		return q, r
	}

	return householderQR(blk)
}

// lqFull computes the full LQ of any m×n block: gonum for the wide/square
// regime; tall blocks route through the Householder QR of the transpose
// (aᵀ = Q̃·R̃ ⇒ a = R̃ᵀ·Q̃ᵀ).
func lqFull(blk *mat.Dense) (l, q *mat.Dense) {
	m, n := blk.Dims()
	if m <= n {
		var lq mat.LQ
		lq.Factorize(blk)
		l, q = &mat.Dense{}, &mat.Dense{}
		lq.LTo(l)
		lq.QTo(q)

		return l, q
	}

	qt, rt := householderQR(mat.DenseCopyOf(blk.T()))
	l = mat.DenseCopyOf(rt.T())
	q = mat.DenseCopyOf(qt.T())

	return l, q
}

// fixQRSigns forces the diagonal of R non-negative for uniqueness,
// negating the matching Q columns.
func fixQRSigns(q, r *mat.Dense) {
	m, _ := q.Dims()
	k, _ := r.Dims()
	for j := 0; j < k; j++ {
		if r.At(j, j) >= 0 {
			continue
		}
		_, n := r.Dims()
		for col := 0; col < n; col++ {
			r.Set(j, col, -r.At(j, col))
		}
		for row := 0; row < m; row++ {
			q.Set(row, j, -q.At(row, j))
		}
	}
}

// fixLQSigns forces the diagonal of L non-negative, negating the matching
// Q rows.
func fixLQSigns(l, q *mat.Dense) {
	m, k := l.Dims()
	_, n := q.Dims()
	if k < m {
		m = k // diagonal length
	}
	for j := 0; j < m; j++ {
		if l.At(j, j) >= 0 {
			continue
		}
		rows, _ := l.Dims()
		for row := 0; row < rows; row++ {
			l.Set(row, j, -l.At(row, j))
		}
		for col := 0; col < n; col++ {
			q.Set(j, col, -q.At(j, col))
		}
	}
}

// rankThreshold computes max(atol, rtol·‖t‖) — the full-rank / kept-vector
// cutoff shared by the orthogonalization and null-space routines.
func rankThreshold(t *TensorMap, o Options) (float64, error) {
	nrm, err := Norm(t)
	if err != nil {
		return 0, err
	}

	return math.Max(o.atol, o.rtol*nrm), nil
}

// rankSpace grades the internal space by per-sector ranks, dropping zeros.
// An all-zero census means the factor has nothing to carry — surfaced as
// ErrSpaceMismatch with the operation's name.
func rankSpace(op string, sectors []sector.Sector, ranks []int) (space.Space, space.Product, error) {
	var grades []space.Grade
	for i, c := range sectors {
		if ranks[i] > 0 {
			grades = append(grades, space.Grade{Sector: c, Dim: ranks[i]})
		}
	}
	if len(grades) == 0 {
		return space.Space{}, space.Product{}, fmt.Errorf("%s: internal space is zero-dimensional: %w", op, ErrSpaceMismatch)
	}
	mid, err := space.New(grades...)
	if err != nil {
		return space.Space{}, space.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	midP, err := space.Prod(mid)
	if err != nil {
		return space.Space{}, space.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	return mid, midP, nil
}

// countAbove counts the leading values strictly above theta (values arrive
// descending from every solver).
func countAbove(s []float64, theta float64) int {
	n := 0
	for _, v := range s {
		if v > theta {
			n++
		} else {
			break
		}
	}

	return n
}

// identityDense returns the n×n identity.
func identityDense(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}

	return out
}
