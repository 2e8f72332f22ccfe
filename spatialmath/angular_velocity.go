package spatialmath

import (
	"github.com/golang/geo/r3"

	"go.viam.com/e2edrive/utils"
)

// AngularVelocity contains angular velocity in deg/s across x/y/z axes.
type AngularVelocity r3.Vector

// NewYawRate returns an angular velocity of degPerSec about z.
func NewYawRate(degPerSec float64) AngularVelocity {
	return AngularVelocity{Z: degPerSec}
}

// YawRateToReach is the yaw rate that turns through deltaDeg degrees while covering distance at
// speed. A non-positive speed gives a zero rate.
func YawRateToReach(deltaDeg, distance, speed float64) AngularVelocity {
	if speed <= 0 || distance <= 0 {
		return AngularVelocity{}
	}
	timeToReach := distance / speed
	return NewYawRate(deltaDeg / timeToReach)
}

// Radians returns the angular velocity in rad/s.
func (av AngularVelocity) Radians() r3.Vector {
	return r3.Vector{X: utils.DegToRad(av.X), Y: utils.DegToRad(av.Y), Z: utils.DegToRad(av.Z)}
}
