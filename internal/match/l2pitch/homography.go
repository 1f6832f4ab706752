package l2pitch

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/match.report/internal/match"
)

// Internal numerical stability constants, not user-tunable.
const (
	// minConditionRatio is the smallest accepted ratio between the 8th and
	// the 1st singular value of the DLT system. Below it the point set does
	// not pin down a unique transform (collinear or repeated points).
	minConditionRatio = 1e-9
	// minHomogeneousW rejects points mapped to (or through) infinity.
	minHomogeneousW = 1e-12
)

// Homography is a 3x3 projective transform, row-major, normalised so that
// the last element is 1.
type Homography [9]float64

// EstimateHomography solves for the transform mapping src[i] onto dst[i]
// using the normalised direct linear transform. At least four pairs are
// required.
func EstimateHomography(src, dst []match.Point) (Homography, error) {
	if len(src) != len(dst) {
		return Homography{}, fmt.Errorf("homography: %d source points, %d target points", len(src), len(dst))
	}
	if len(src) < 4 {
		return Homography{}, fmt.Errorf("homography: %d pairs: %w", len(src), match.ErrInsufficientCorrespondence)
	}

	srcN, srcT, ok := normalise(src)
	if !ok {
		return Homography{}, match.ErrDegenerateHomography
	}
	dstN, dstT, ok := normalise(dst)
	if !ok {
		return Homography{}, match.ErrDegenerateHomography
	}

	// Two rows per pair; pad to at least 9 rows so the full V is always 9x9.
	rows := 2 * len(src)
	if rows < 9 {
		rows = 9
	}
	a := mat.NewDense(rows, 9, nil)
	for i := range srcN {
		x, y := srcN[i].X, srcN[i].Y
		u, v := dstN[i].X, dstN[i].Y
		a.SetRow(2*i, []float64{0, 0, 0, -x, -y, -1, v * x, v * y, v})
		a.SetRow(2*i+1, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y, -u})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFullV); !ok {
		return Homography{}, fmt.Errorf("homography: SVD did not converge: %w", match.ErrDegenerateHomography)
	}
	values := svd.Values(nil)
	if values[0] == 0 || values[7]/values[0] < minConditionRatio {
		return Homography{}, match.ErrDegenerateHomography
	}

	var v mat.Dense
	svd.VTo(&v)
	hn := mat.NewDense(3, 3, mat.Col(nil, 8, &v))

	// H = inv(T_dst) * Hn * T_src
	var dstInv mat.Dense
	if err := dstInv.Inverse(dstT); err != nil {
		return Homography{}, fmt.Errorf("homography: %v: %w", err, match.ErrDegenerateHomography)
	}
	var h mat.Dense
	h.Product(&dstInv, hn, srcT)

	scale := h.At(2, 2)
	if math.Abs(scale) < minHomogeneousW {
		return Homography{}, match.ErrDegenerateHomography
	}
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[3*r+c] = h.At(r, c) / scale
		}
	}
	if math.Abs(mat.Det(mat.NewDense(3, 3, out[:]))) < minHomogeneousW {
		return Homography{}, match.ErrDegenerateHomography
	}
	return out, nil
}

// Apply maps p through the transform with a perspective divide. ok is false
// when p maps to infinity.
func (h Homography) Apply(p match.Point) (q match.Point, ok bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < minHomogeneousW {
		return match.Point{}, false
	}
	return match.Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// normalise translates pts to their centroid and scales them so the mean
// distance from the origin is sqrt(2). It returns the normalised points and
// the similarity transform that produced them.
func normalise(pts []match.Point) ([]match.Point, *mat.Dense, bool) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	n := float64(len(pts))
	cx, cy := floats.Sum(xs)/n, floats.Sum(ys)/n

	var meanDist float64
	for i := range pts {
		meanDist += math.Hypot(xs[i]-cx, ys[i]-cy)
	}
	meanDist /= n
	if meanDist < minHomogeneousW {
		return nil, nil, false
	}
	s := math.Sqrt2 / meanDist

	out := make([]match.Point, len(pts))
	for i := range pts {
		out[i] = match.Point{X: s * (xs[i] - cx), Y: s * (ys[i] - cy)}
	}
	t := mat.NewDense(3, 3, []float64{
		s, 0, -s * cx,
		0, s, -s * cy,
		0, 0, 1,
	})
	return out, t, true
}
