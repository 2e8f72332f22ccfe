// Package spatialmath defines the frame conventions shared by training-target preparation and
// vehicle control: the 2D agent frame, 3D Euler rotations and homogeneous frame-to-frame transforms.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	EulerAngles() *EulerAngles
	RotationMatrix() *RotationMatrix
	Quaternion() quat.Number
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return NewEulerAngles()
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// OrientationBetween returns the rotation matrix that takes o1 onto o2.
func OrientationBetween(o1, o2 Orientation) *RotationMatrix {
	return o2.RotationMatrix().Mul(o1.RotationMatrix().Transpose())
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. q and -q
// describe the same rotation and compare equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	near := func(x, y quat.Number) bool {
		return math.Abs(x.Real-y.Real) < tol &&
			math.Abs(x.Imag-y.Imag) < tol &&
			math.Abs(x.Jmag-y.Jmag) < tol &&
			math.Abs(x.Kmag-y.Kmag) < tol
	}
	return near(a, b) || near(a, quat.Scale(-1, b))
}
