package fake

import (
	"sync"
	"time"

	"go.viam.com/e2edrive/components/vehicle"
	"go.viam.com/e2edrive/spatialmath"
)

// World holds fake vehicles and advances them in lock step.
type World struct {
	mu     sync.Mutex
	actors []*Vehicle
	frames int
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{}
}

// AddVehicle places a drivable vehicle in the world.
func (w *World) AddVehicle(name string, start spatialmath.Pose) *Vehicle {
	return w.add(newVehicle(name, start, false))
}

// AddStaticObstacle places an actor that never moves, such as a parked car.
func (w *World) AddStaticObstacle(name string, start spatialmath.Pose) *Vehicle {
	return w.add(newVehicle(name, start, true))
}

func (w *World) add(v *Vehicle) *Vehicle {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.actors = append(w.actors, v)
	return v
}

// Frames returns the number of ticks so far.
func (w *World) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

type pendingEvent struct {
	onEvent func(vehicle.SensorEvent)
	event   vehicle.SensorEvent
}

// Tick integrates every actor over dt and then delivers sensor events. Obstacle sensors only
// report when something is in range, so the last reading stands until the next detection.
// Callbacks run after all locks are released.
func (w *World) Tick(dt time.Duration) {
	w.mu.Lock()
	actors := append([]*Vehicle(nil), w.actors...)
	w.frames++
	w.mu.Unlock()

	for _, a := range actors {
		a.step(dt.Seconds())
	}

	snapshots := make([]snapshot, 0, len(actors))
	for _, a := range actors {
		snapshots = append(snapshots, a.snapshot())
	}

	var pending []pendingEvent
	for _, self := range snapshots {
		for _, s := range self.sensors {
			switch s.kind {
			case vehicle.SensorKindObstacle:
				other, dist := nearestAhead(self, snapshots, s.obstacle)
				if other == nil {
					continue
				}
				pending = append(pending, pendingEvent{s.onEvent, &vehicle.ObstacleEvent{Distance: dist, Other: other}})
			case vehicle.SensorKindCamera:
				pending = append(pending, pendingEvent{s.onEvent, s.frame(self.yaw)})
			}
		}
	}

	for _, p := range pending {
		p.onEvent(p.event)
	}
}
