package spatialmath

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Pose represents a 6dof pose, position and orientation, with respect to the world frame.
// A Pose is an immutable snapshot.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type pose struct {
	point       r3.Vector
	orientation Orientation
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewZeroOrientation()
	}
	return &pose{point: p, orientation: o}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector with no rotation.
func NewPoseFromPoint(p r3.Vector) Pose {
	return NewPose(p, nil)
}

// NewZeroPose returns a pose at (0,0,0) with no rotation.
func NewZeroPose() Pose {
	return NewPoseFromPoint(r3.Vector{})
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() Orientation {
	return p.orientation
}

// PlanarPoint drops z from the pose's position.
func PlanarPoint(p Pose) r2.Point {
	pt := p.Point()
	return r2.Point{X: pt.X, Y: pt.Y}
}

// Heading returns the pose's yaw in radians.
func Heading(p Pose) float64 {
	return p.Orientation().EulerAngles().Yaw
}

// PoseAlmostCoincident will return a bool describing whether 2 poses approximately are at the same 3D coordinate
// location and have the same orientation.
func PoseAlmostCoincident(a, b Pose) bool {
	const epsilon = 1e-6
	return a.Point().Sub(b.Point()).Norm() < epsilon &&
		OrientationAlmostEqual(a.Orientation(), b.Orientation())
}
