package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	//ErrTooFewPoints is returned when fewer than 4 correspondences are given
	ErrTooFewPoints = errors.New("at least 4 correspondences are needed")
	//ErrLengthMismatch marks parallel sequences of different lengths
	ErrLengthMismatch = errors.New("mismatched sequence lengths")
	//ErrDegenerate is returned for coincident, collinear or otherwise ill-conditioned fits
	ErrDegenerate = errors.New("degenerate correspondences")
)

const (
	//MaxConditionNumber bounds the ratio between the largest and the 8th singular
	//value of the normalized DLT system. Above it the null space is not unique enough.
	MaxConditionNumber = 1e7

	//MaxRelativeResidual is the largest accepted RMS reprojection error, relative
	//to the mean distance of the destination points from their centroid.
	MaxRelativeResidual = 0.25

	minHomogeneous = 1e-9
	minDeterminant = 1e-9
)

//FitHomography fits the projective transform mapping src[i] to dst[i] with the
//normalized direct linear transform. Four points give the exact solution, more
//give the algebraic least squares one. The fit is rejected when the points are
//coincident or collinear, when the transform is singular, when it sends any of
//the source points to (or across) infinity, or when the reprojection residual is too large.
func FitHomography(src, dst []Point) (Matrix, error) {
	if len(src) != len(dst) {
		return Matrix{}, fmt.Errorf("FitHomography: %w: %d source points, %d destination points", ErrLengthMismatch, len(src), len(dst))
	}
	if len(src) < 4 {
		return Matrix{}, fmt.Errorf("FitHomography: %w, got %d", ErrTooFewPoints, len(src))
	}

	srcNorm, err := normalization(src)
	if err != nil {
		return Matrix{}, err
	}
	dstNorm, err := normalization(dst)
	if err != nil {
		return Matrix{}, err
	}

	n := len(src)
	a := mat.NewDense(2*n, 9, nil)
	for i := range src {
		s := srcNorm.Project(src[i])
		d := dstNorm.Project(dst[i])
		a.SetRow(2*i, []float64{-s.X, -s.Y, -1, 0, 0, 0, d.X * s.X, d.X * s.Y, d.X})
		a.SetRow(2*i+1, []float64{0, 0, 0, -s.X, -s.Y, -1, d.Y * s.X, d.Y * s.Y, d.Y})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return Matrix{}, fmt.Errorf("FitHomography: %w: SVD did not converge", ErrDegenerate)
	}

	values := svd.Values(nil)
	if values[7] == 0 || values[0]/values[7] > MaxConditionNumber {
		return Matrix{}, fmt.Errorf("FitHomography: %w: ill-conditioned system", ErrDegenerate)
	}

	var v mat.Dense
	svd.VTo(&v)
	h := mat.Col(nil, 8, &v)
	hn := Matrix{
		{h[0], h[1], h[2]},
		{h[3], h[4], h[5]},
		{h[6], h[7], h[8]},
	}

	//h is a unit vector, so the determinant is scale free here
	if math.Abs(determinant(hn)) < minDeterminant {
		return Matrix{}, fmt.Errorf("FitHomography: %w: singular transform", ErrDegenerate)
	}

	m := denormalization(dstNorm).Mul(hn).Mul(srcNorm)
	if math.Abs(m[2][2]) < minHomogeneous {
		return Matrix{}, fmt.Errorf("FitHomography: %w: vanishing h33", ErrDegenerate)
	}
	for i := range m {
		for j := range m[i] {
			m[i][j] /= m[2][2]
		}
	}

	if err := validateFit(m, src, dst); err != nil {
		return Matrix{}, err
	}

	return m, nil
}

//ReprojectionRMS returns the RMS distance between m applied to src and dst
func ReprojectionRMS(m Matrix, src, dst []Point) float64 {
	if len(src) == 0 || len(src) != len(dst) {
		return math.Inf(1)
	}

	var sum float64
	for i := range src {
		d := m.Project(src[i]).Distance(dst[i])
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(src)))
}

func validateFit(m Matrix, src, dst []Point) error {
	sign := 0.0
	for _, p := range src {
		_, w := m.ProjectW(p)
		if math.Abs(w) < minHomogeneous {
			return fmt.Errorf("FitHomography: %w: point (%.1f, %.1f) maps to infinity", ErrDegenerate, p.X, p.Y)
		}
		if sign == 0 {
			sign = math.Copysign(1, w)
		} else if math.Copysign(1, w) != sign {
			return fmt.Errorf("FitHomography: %w: correspondences straddle the horizon", ErrDegenerate)
		}
	}

	spread := meanSpread(dst)
	if rms := ReprojectionRMS(m, src, dst); rms > MaxRelativeResidual*spread {
		return fmt.Errorf("FitHomography: %w: reprojection RMS %.3f exceeds %.3f", ErrDegenerate, rms, MaxRelativeResidual*spread)
	}

	return nil
}

//normalization returns the similarity moving the centroid of pts to the origin
//with a mean distance of sqrt(2) (Hartley normalization)
func normalization(pts []Point) (Matrix, error) {
	c := centroid(pts)
	spread := meanSpread(pts)
	if spread < 1e-12 {
		return Matrix{}, fmt.Errorf("FitHomography: %w: coincident points", ErrDegenerate)
	}

	s := math.Sqrt2 / spread
	return Matrix{
		{s, 0, -s * c.X},
		{0, s, -s * c.Y},
		{0, 0, 1},
	}, nil
}

//denormalization inverts a matrix built by normalization
func denormalization(t Matrix) Matrix {
	s := t[0][0]
	return Matrix{
		{1 / s, 0, -t[0][2] / s},
		{0, 1 / s, -t[1][2] / s},
		{0, 0, 1},
	}
}

func centroid(pts []Point) Point {
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(pts))
	c.Y /= float64(len(pts))
	return c
}

func meanSpread(pts []Point) float64 {
	c := centroid(pts)
	var sum float64
	for _, p := range pts {
		sum += p.Distance(c)
	}
	return sum / float64(len(pts))
}

func determinant(m Matrix) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
