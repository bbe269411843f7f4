//Package geometry maps camera-frame coordinates onto the tactical map plane.
package geometry

import (
	"image"
	"math"
)

//Point is a 2D coordinate, either in frame pixels or in tactical map units
type Point struct {
	X float64
	Y float64
}

//Pt is shorthand for Point{x, y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

//FromImagePoint converts an integer pixel coordinate
func FromImagePoint(p image.Point) Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

//ImagePoint truncates both coordinates toward zero
func (p Point) ImagePoint() image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

//Distance returns the Euclidean distance between p and o
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

//Matrix is a 3x3 projective transform, row major
type Matrix [3][3]float64

//Identity returns the identity transform
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

//Project maps p through m: append w=1, multiply, divide by the third component.
//
//Precondition: m was accepted by FitHomography, which rejects transforms whose
//homogeneous component vanishes over the fitted correspondences. Points far
//outside that region (e.g. beyond the image horizon) can still produce w ~ 0;
//callers that need to detect this should use ProjectW.
func (m Matrix) Project(p Point) Point {
	q, _ := m.ProjectW(p)
	return q
}

//ProjectW is Project that also returns the homogeneous component before the divide
func (m Matrix) ProjectW(p Point) (Point, float64) {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]
	w := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]
	return Point{X: x / w, Y: y / w}, w
}

//ProjectAll projects every point, preserving order
func (m Matrix) ProjectAll(pts []Point) []Point {
	res := make([]Point, len(pts))
	for i, p := range pts {
		res[i] = m.Project(p)
	}
	return res
}

//Mul returns m*o
func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}
