package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlutzke/raceday/pkg/geom"
	"github.com/mlutzke/raceday/pkg/model"
)

func squareWaypoints() []model.Waypoint {
	return []model.Waypoint{
		{Pos: geom.Vec2{X: 0, Y: 0}},
		{Pos: geom.Vec2{X: 10, Y: 0}},
		{Pos: geom.Vec2{X: 10, Y: 10}, IsCurve: true},
		{Pos: geom.Vec2{X: 0, Y: 10}},
	}
}

func TestDriverStartsAtSecondWaypoint(t *testing.T) {
	d := NewDriver(squareWaypoints())
	assert.Equal(t, 1, d.NextWaypoint())
}

func TestPlanSteering(t *testing.T) {
	tests := []struct {
		name       string
		pos        geom.Vec2
		heading    float64
		checkSteer func(t *testing.T, steer float64)
	}{
		{
			name:    "target dead ahead",
			pos:     geom.Vec2{X: 5, Y: 0},
			heading: 0,
			checkSteer: func(t *testing.T, steer float64) {
				t.Helper()
				assert.InDelta(t, 0.0, steer, 1e-9)
			},
		},
		{
			name:    "target left of heading steers positive",
			pos:     geom.Vec2{X: 5, Y: 0},
			heading: -45,
			checkSteer: func(t *testing.T, steer float64) {
				t.Helper()
				assert.InDelta(t, 1.0, steer, 1e-9) // 45 degrees off = full lock
			},
		},
		{
			name:    "target right of heading steers negative",
			pos:     geom.Vec2{X: 5, Y: 0},
			heading: 20,
			checkSteer: func(t *testing.T, steer float64) {
				t.Helper()
				assert.InDelta(t, -20.0/FullLockAngle, steer, 1e-9)
			},
		},
		{
			name:    "large angle clamps to full lock",
			pos:     geom.Vec2{X: 5, Y: 0},
			heading: 180,
			checkSteer: func(t *testing.T, steer float64) {
				t.Helper()
				assert.InDelta(t, 1.0, geom.Clamp(steer, -1, 1), 1e-9)
				assert.LessOrEqual(t, steer, 1.0)
				assert.GreaterOrEqual(t, steer, -1.0)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDriver(squareWaypoints())
			cmd, crossed := d.Plan(tt.pos, tt.heading)
			assert.False(t, crossed)
			tt.checkSteer(t, cmd.Steer)
		})
	}
}

func TestPlanSpeedFactor(t *testing.T) {
	d := NewDriver(squareWaypoints())
	// next is waypoint 1, a straight
	cmd, _ := d.Plan(geom.Vec2{X: 0, Y: 0}, 0)
	assert.InDelta(t, StraightSpeedFactor, cmd.TargetSpeedFactor, 1e-9)

	// capturing waypoint 1 advances to the curve at waypoint 2
	cmd, crossed := d.Plan(geom.Vec2{X: 9, Y: 0}, 0)
	assert.False(t, crossed)
	assert.Equal(t, 2, d.NextWaypoint())
	assert.InDelta(t, CurveSpeedFactor, cmd.TargetSpeedFactor, 1e-9)
}

func TestPlanFinishCrossing(t *testing.T) {
	d := NewDriver(squareWaypoints())
	// walk the capture points around the circuit
	_, crossed := d.Plan(geom.Vec2{X: 10, Y: 0}, 0)
	assert.False(t, crossed)
	_, crossed = d.Plan(geom.Vec2{X: 10, Y: 10}, 90)
	assert.False(t, crossed)
	_, crossed = d.Plan(geom.Vec2{X: 0, Y: 10}, 180)
	assert.False(t, crossed)
	assert.Equal(t, 0, d.NextWaypoint())

	// reaching the finish trigger counts the lap and retargets waypoint 1
	_, crossed = d.Plan(geom.Vec2{X: 0, Y: 1}, 270)
	assert.True(t, crossed)
	assert.Equal(t, 1, d.NextWaypoint())
}

func TestPlanCustomCaptureRadius(t *testing.T) {
	d := NewDriver(squareWaypoints(), WithCaptureRadius(5))
	_, _ = d.Plan(geom.Vec2{X: 6, Y: 0}, 0)
	assert.Equal(t, 2, d.NextWaypoint())
}

func TestPlanSingleWaypoint(t *testing.T) {
	d := NewDriver([]model.Waypoint{{Pos: geom.Vec2{X: 0, Y: 0}}})
	// sitting inside the capture radius of the only waypoint must not
	// produce finish crossings
	for i := 0; i < 3; i++ {
		cmd, crossed := d.Plan(geom.Vec2{X: 0, Y: 0}, 0)
		assert.False(t, crossed)
		assert.InDelta(t, StraightSpeedFactor, cmd.TargetSpeedFactor, 1e-9)
	}
	assert.Equal(t, 0, d.NextWaypoint())
}

func TestPlanNoWaypoints(t *testing.T) {
	d := NewDriver(nil)
	cmd, crossed := d.Plan(geom.Vec2{}, 0)
	assert.False(t, crossed)
	assert.InDelta(t, StraightSpeedFactor, cmd.TargetSpeedFactor, 1e-9)
}
