package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// gimbalLockTolerance is how close |sin(pitch)| may get to 1 before roll is pinned to zero.
const gimbalLockTolerance = 1e-9

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a row-major slice of 9 floats.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input slice has %d elements, need exactly 9", len(m))
	}
	rm := &RotationMatrix{}
	copy(rm.mat[:], m)
	return rm, nil
}

// NewRotationMatrixFromEulerDegrees builds Yaw * Pitch * Roll from angles given in degrees.
func NewRotationMatrixFromEulerDegrees(roll, pitch, yaw float64) *RotationMatrix {
	return NewEulerAnglesFromDegrees(roll, pitch, yaw).RotationMatrix()
}

// At returns the float corresponding to the element at the specified location.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[row*3+col]
}

// Row returns the a 3 element vector corresponding to the specified row.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[row*3], Y: rm.mat[row*3+1], Z: rm.mat[row*3+2]}
}

// Col returns the a 3 element vector corresponding to the specified column.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[col+3], Z: rm.mat[col+6]}
}

// Mul returns rm * other.
func (rm *RotationMatrix) Mul(other *RotationMatrix) *RotationMatrix {
	out := &RotationMatrix{}
	for r := 0; r < 3; r++ {
		row := rm.Row(r)
		for c := 0; c < 3; c++ {
			out.mat[r*3+c] = row.Dot(other.Col(c))
		}
	}
	return out
}

// Transpose returns the transpose, which for a rotation is its inverse.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	out := &RotationMatrix{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.mat[c*3+r] = rm.mat[r*3+c]
		}
	}
	return out
}

// MulVec returns rm * v.
func (rm *RotationMatrix) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{X: rm.Row(0).Dot(v), Y: rm.Row(1).Dot(v), Z: rm.Row(2).Dot(v)}
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (rm *RotationMatrix) RotationMatrix() *RotationMatrix {
	return rm
}

// EulerAngles recovers roll, pitch and yaw (radians) of a matrix built as Yaw * Pitch * Roll.
// At gimbal lock roll is reported as zero and the whole rotation about z is put in yaw.
func (rm *RotationMatrix) EulerAngles() *EulerAngles {
	sinPitch := math.Max(-1, math.Min(1, rm.At(2, 0)))
	ea := &EulerAngles{Pitch: math.Asin(sinPitch)}
	if 1-math.Abs(sinPitch) < gimbalLockTolerance {
		ea.Yaw = math.Atan2(-rm.At(0, 1), rm.At(1, 1))
		return ea
	}
	ea.Roll = math.Atan2(-rm.At(2, 1), rm.At(2, 2))
	ea.Yaw = math.Atan2(rm.At(1, 0), rm.At(0, 0))
	return ea
}

// Quaternion returns orientation in quaternion representation.
func (rm *RotationMatrix) Quaternion() quat.Number {
	m := func(r, c int) float64 { return rm.At(r, c) }
	var q quat.Number
	switch trace := m(0, 0) + m(1, 1) + m(2, 2); {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (m(2, 1) - m(1, 2)) * s,
			Jmag: (m(0, 2) - m(2, 0)) * s,
			Kmag: (m(1, 0) - m(0, 1)) * s,
		}
	case m(0, 0) > m(1, 1) && m(0, 0) > m(2, 2):
		s := 2 * math.Sqrt(1+m(0, 0)-m(1, 1)-m(2, 2))
		q = quat.Number{
			Real: (m(2, 1) - m(1, 2)) / s,
			Imag: 0.25 * s,
			Jmag: (m(0, 1) + m(1, 0)) / s,
			Kmag: (m(0, 2) + m(2, 0)) / s,
		}
	case m(1, 1) > m(2, 2):
		s := 2 * math.Sqrt(1+m(1, 1)-m(0, 0)-m(2, 2))
		q = quat.Number{
			Real: (m(0, 2) - m(2, 0)) / s,
			Imag: (m(0, 1) + m(1, 0)) / s,
			Jmag: 0.25 * s,
			Kmag: (m(1, 2) + m(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m(2, 2)-m(0, 0)-m(1, 1))
		q = quat.Number{
			Real: (m(1, 0) - m(0, 1)) / s,
			Imag: (m(0, 2) + m(2, 0)) / s,
			Jmag: (m(1, 2) + m(2, 1)) / s,
			Kmag: 0.25 * s,
		}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}

// QuatToRotationMatrix converts a unit quaternion into a rotation matrix.
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return &RotationMatrix{[9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	}}
}

// VectorWorldToRef expresses a world-frame vector in the local frame of ref by applying the
// transpose of ref's rotation.
func VectorWorldToRef(vec r3.Vector, ref Orientation) r3.Vector {
	return ref.RotationMatrix().Transpose().MulVec(vec)
}
