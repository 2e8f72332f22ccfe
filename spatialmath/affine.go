package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Frame2D is a planar frame: a translation plus a rotation in radians. Its matrix maps points
// expressed in the frame to world coordinates.
type Frame2D struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`
}

// Affine returns the homogeneous matrix [[c, s, x], [-s, c, y], [0, 0, 1]] of the frame.
func (f Frame2D) Affine() *Affine2D {
	c, s := math.Cos(f.Yaw), math.Sin(f.Yaw)
	return &Affine2D{m: mat.NewDense(3, 3, []float64{
		c, s, f.X,
		-s, c, f.Y,
		0, 0, 1,
	})}
}

// Affine2D is a 3x3 homogeneous transform of the plane.
type Affine2D struct {
	m *mat.Dense
}

// NewIdentityAffine2D returns the transform that leaves every point in place.
func NewIdentityAffine2D() *Affine2D {
	return &Affine2D{m: mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})}
}

// At returns the element at row i, column j.
func (a *Affine2D) At(i, j int) float64 {
	return a.m.At(i, j)
}

// Compose returns a * b, the transform that applies b first and then a.
func (a *Affine2D) Compose(b *Affine2D) *Affine2D {
	var out mat.Dense
	out.Mul(a.m, b.m)
	return &Affine2D{m: &out}
}

// Inverse returns the inverse transform.
func (a *Affine2D) Inverse() (*Affine2D, error) {
	var out mat.Dense
	if err := out.Inverse(a.m); err != nil {
		return nil, errors.Wrap(err, "affine transform is not invertible")
	}
	return &Affine2D{m: &out}, nil
}

// Apply maps a planar point through the transform.
func (a *Affine2D) Apply(p r2.Point) r2.Point {
	var out mat.VecDense
	out.MulVec(a.m, mat.NewVecDense(3, []float64{p.X, p.Y, 1}))
	return r2.Point{X: out.AtVec(0), Y: out.AtVec(1)}
}

// TransformPointsBetweenFrames re-expresses points recorded in frame from into frame to. Only x and y
// take part in the homogeneous step; z is carried through unchanged.
func TransformPointsBetweenFrames(points []r3.Vector, from, to Frame2D) ([]r3.Vector, error) {
	worldToTo, err := to.Affine().Inverse()
	if err != nil {
		return nil, err
	}
	fromToTo := worldToTo.Compose(from.Affine())

	out := make([]r3.Vector, 0, len(points))
	for _, pt := range points {
		local := fromToTo.Apply(r2.Point{X: pt.X, Y: pt.Y})
		out = append(out, r3.Vector{X: local.X, Y: local.Y, Z: pt.Z})
	}
	return out, nil
}
