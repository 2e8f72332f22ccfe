package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// agentFrameBias is the fixed quarter turn between a heading and the agent frame basis. The same
// bias is used for training targets and for control.
const agentFrameBias = math.Pi / 2

// Rotation2D is the 2x2 rotation [[cos a, -sin a], [sin a, cos a]].
type Rotation2D struct {
	cos, sin float64
}

// NewAgentRotation builds the agent frame rotation for a heading given in radians. A non-finite
// heading is treated as zero.
func NewAgentRotation(yaw float64) Rotation2D {
	angle := agentFrameBias + SanitizeHeading(yaw)
	return Rotation2D{cos: math.Cos(angle), sin: math.Sin(angle)}
}

// Apply returns R * p.
func (r Rotation2D) Apply(p r2.Point) r2.Point {
	return r2.Point{X: r.cos*p.X - r.sin*p.Y, Y: r.sin*p.X + r.cos*p.Y}
}

// ApplyTranspose returns R^T * p.
func (r Rotation2D) ApplyTranspose(p r2.Point) r2.Point {
	return r2.Point{X: r.cos*p.X + r.sin*p.Y, Y: -r.sin*p.X + r.cos*p.Y}
}

// Matrix returns the rotation as rows.
func (r Rotation2D) Matrix() [2][2]float64 {
	return [2][2]float64{{r.cos, -r.sin}, {r.sin, r.cos}}
}

// SanitizeHeading maps NaN and infinite headings to zero.
func SanitizeHeading(yaw float64) float64 {
	if math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		return 0
	}
	return yaw
}

// ToAgentFrame expresses a world point in the frame of an agent at agentPos with heading yaw (radians).
func ToAgentFrame(world, agentPos r2.Point, yaw float64) r2.Point {
	return NewAgentRotation(yaw).ApplyTranspose(world.Sub(agentPos))
}

// ToWorldFrame is the inverse of ToAgentFrame.
func ToWorldFrame(local, agentPos r2.Point, yaw float64) r2.Point {
	return NewAgentRotation(yaw).Apply(local).Add(agentPos)
}
