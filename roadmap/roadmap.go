// Package roadmap provides the road graph oracle the waypoint controller uses to look ahead along
// the lane the vehicle is driving in.
package roadmap

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/e2edrive/spatialmath"
)

// Waypoint is a point on a road with the road's heading at that point.
type Waypoint struct {
	Location r3.Vector
	// Yaw is the road heading in radians.
	Yaw float64
	// Distance is the arc length from the start of the road.
	Distance float64
}

// Pose returns the waypoint as a pose.
func (wp Waypoint) Pose() spatialmath.Pose {
	return spatialmath.NewPose(wp.Location, spatialmath.NewYaw(wp.Yaw))
}

// Map answers road graph queries.
type Map interface {
	// Waypoint returns the road waypoint closest to location.
	Waypoint(ctx context.Context, location r3.Vector) (Waypoint, error)

	// Next returns the waypoints distance further along the road from wp. An empty result means
	// the road ends before then.
	Next(ctx context.Context, wp Waypoint, distance float64) ([]Waypoint, error)
}
