package ai

import (
	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/geom"
	"github.com/mlutzke/raceday/pkg/model"
)

const (
	// steering reaches full lock when the angle to the target equals this value
	FullLockAngle = 45.0
	// DefaultCaptureRadius is the distance at which a waypoint counts as reached
	DefaultCaptureRadius = 2.0

	// target speed as fraction of top speed
	CurveSpeedFactor    = 0.60
	StraightSpeedFactor = 0.82
)

// Command is the steering decision for one tick.
// Steer is in [-1,1] (positive = counter-clockwise), TargetSpeedFactor
// is the fraction of the car's top speed to aim for.
type Command struct {
	Steer             float64
	TargetSpeedFactor float64
}

// Driver steers a car along the waypoint path: it computes the signed
// angle between the current heading and the vector to the next waypoint
// and converts it into a clamped steering input.
type Driver struct {
	waypoints     []model.Waypoint
	next          int
	captureRadius float64
}

type DriverOption func(d *Driver)

func WithCaptureRadius(r float64) DriverOption {
	return func(d *Driver) {
		d.captureRadius = r
	}
}

func NewDriver(waypoints []model.Waypoint, opts ...DriverOption) *Driver {
	ret := &Driver{
		waypoints:     waypoints,
		captureRadius: DefaultCaptureRadius,
	}
	// cars spawn on the finish line (waypoint 0), so the first target
	// is the waypoint ahead of it
	if len(waypoints) > 1 {
		ret.next = 1
	} else if len(waypoints) == 1 {
		log.Warn("waypoint path too short, steering disabled")
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// NextWaypoint returns the index of the waypoint currently targeted.
func (d *Driver) NextWaypoint() int {
	return d.next
}

// Plan computes the steering command for the given car position and
// heading (degrees). Waypoint 0 is the finish trigger; Plan reports
// crossedFinish=true when it is captured so the caller can count the lap.
func (d *Driver) Plan(pos geom.Vec2, headingDeg float64) (cmd Command, crossedFinish bool) {
	// a single waypoint gives no direction to steer towards and would
	// count a finish crossing on every tick spent inside its radius
	if len(d.waypoints) < 2 {
		return Command{TargetSpeedFactor: StraightSpeedFactor}, false
	}

	if pos.Dist(d.waypoints[d.next].Pos) <= d.captureRadius {
		crossedFinish = d.next == 0
		d.next = (d.next + 1) % len(d.waypoints)
	}

	target := d.waypoints[d.next]
	toTarget := target.Pos.Sub(pos)
	angle := geom.SignedAngleDeg(geom.HeadingVec(headingDeg), toTarget)
	cmd.Steer = geom.Clamp(angle/FullLockAngle, -1, 1)
	if target.IsCurve {
		cmd.TargetSpeedFactor = CurveSpeedFactor
	} else {
		cmd.TargetSpeedFactor = StraightSpeedFactor
	}
	return cmd, crossedFinish
}
