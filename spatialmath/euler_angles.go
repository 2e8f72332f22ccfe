package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/e2edrive/utils"
)

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D
// Euclidean space. The rotation matrix is composed as Yaw * Pitch * Roll.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{}
}

// NewEulerAnglesFromDegrees creates EulerAngles from angles expressed in degrees, the unit vehicle
// transforms are reported in.
func NewEulerAnglesFromDegrees(roll, pitch, yaw float64) *EulerAngles {
	return &EulerAngles{
		Roll:  utils.DegToRad(roll),
		Pitch: utils.DegToRad(pitch),
		Yaw:   utils.DegToRad(yaw),
	}
}

// NewYaw returns an orientation that only turns about z by yaw radians.
func NewYaw(yaw float64) *EulerAngles {
	return &EulerAngles{Yaw: yaw}
}

// Degrees returns roll, pitch and yaw in degrees.
func (ea *EulerAngles) Degrees() (roll, pitch, yaw float64) {
	return utils.RadToDeg(ea.Roll), utils.RadToDeg(ea.Pitch), utils.RadToDeg(ea.Yaw)
}

// YawDegrees returns the heading in degrees.
func (ea *EulerAngles) YawDegrees() float64 {
	return utils.RadToDeg(ea.Yaw)
}

// EulerAngles returns orientation in Euler angle representation.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// RotationMatrix returns the rotation matrix Yaw * Pitch * Roll.
func (ea *EulerAngles) RotationMatrix() *RotationMatrix {
	cr, sr := math.Cos(ea.Roll), math.Sin(ea.Roll)
	cp, sp := math.Cos(ea.Pitch), math.Sin(ea.Pitch)
	cy, sy := math.Cos(ea.Yaw), math.Sin(ea.Yaw)

	yawMat := &RotationMatrix{[9]float64{
		cy, -sy, 0,
		sy, cy, 0,
		0, 0, 1,
	}}
	pitchMat := &RotationMatrix{[9]float64{
		cp, 0, -sp,
		0, 1, 0,
		sp, 0, cp,
	}}
	rollMat := &RotationMatrix{[9]float64{
		1, 0, 0,
		0, cr, sr,
		0, -sr, cr,
	}}
	return yawMat.Mul(pitchMat).Mul(rollMat)
}

// Quaternion returns orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	return ea.RotationMatrix().Quaternion()
}
