package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// FloorMod returns x modulo m with the sign of m, so FloorMod(-30, 360) == 330.
func FloorMod(x, m float64) float64 {
	return x - m*math.Floor(x/m)
}

// WrapDegrees wraps a heading difference into (-180, 180]. Magnitudes above one turn are reduced
// with a single modulo pass before the half-turn correction, so 720.5 becomes 0.5 and 359 becomes -1.
func WrapDegrees(deltaDeg float64) float64 {
	if math.Abs(deltaDeg) > 360 {
		deltaDeg = FloorMod(deltaDeg, 360)
	}

	if deltaDeg > 180 {
		deltaDeg -= 360
	} else if deltaDeg <= -180 {
		deltaDeg += 360
	}
	return deltaDeg
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Square returns n*n.
func Square(n float64) float64 {
	return n * n
}
