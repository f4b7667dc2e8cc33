package track

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/mlutzke/raceday/pkg/geom"
	"github.com/mlutzke/raceday/pkg/model"
)

func TestBuildWaypointsEmpty(t *testing.T) {
	_, err := BuildWaypoints(nil)
	assert.ErrorIs(t, err, ErrNoTrackPieces)
}

func TestBuildWaypointsOrdering(t *testing.T) {
	// scrambled pieces of a straight-ish path, chaining must restore
	// the spatial order starting from the first piece
	pieces := []geom.Vec2{
		{X: 0, Y: 0},
		{X: 20, Y: 0},
		{X: 10, Y: 0},
		{X: 30, Y: 0},
	}
	waypoints, err := BuildWaypoints(pieces)
	assert.NoError(t, err)

	got := make([]geom.Vec2, len(waypoints))
	for i := range waypoints {
		got[i] = waypoints[i].Pos
	}
	want := []geom.Vec2{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
		{X: 30, Y: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("waypoint order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWaypointsCurveDetection(t *testing.T) {
	// square circuit: every waypoint sits on a 90 degree corner
	square := []geom.Vec2{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
		{X: 0, Y: 10},
	}
	waypoints, err := BuildWaypoints(square)
	assert.NoError(t, err)
	for i := range waypoints {
		assert.True(t, waypoints[i].IsCurve, "waypoint %d should be a curve", i)
	}

	// rectangle with intermediate pieces: the mid-edge waypoints are straights
	rect := []geom.Vec2{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
		{X: 20, Y: 10},
		{X: 10, Y: 10},
		{X: 0, Y: 10},
	}
	waypoints, err = BuildWaypoints(rect)
	assert.NoError(t, err)
	assert.False(t, waypoints[1].IsCurve, "mid bottom edge")
	assert.True(t, waypoints[2].IsCurve, "bottom right corner")
	assert.False(t, waypoints[4].IsCurve, "mid top edge")
}

func TestAlignFinishLine(t *testing.T) {
	waypoints := []model.Waypoint{
		{Pos: geom.Vec2{X: 0, Y: 0}},
		{Pos: geom.Vec2{X: 10, Y: 0}},
	}
	tests := []struct {
		name    string
		trigger geom.Vec2
		want    geom.Vec2
	}{
		{
			name:    "within tolerance stays",
			trigger: geom.Vec2{X: 3, Y: 0},
			want:    geom.Vec2{X: 3, Y: 0},
		},
		{
			name:    "off trigger moves to first waypoint",
			trigger: geom.Vec2{X: 30, Y: 30},
			want:    geom.Vec2{X: 0, Y: 0},
		},
		{
			name:    "exactly on tolerance stays",
			trigger: geom.Vec2{X: 5, Y: 0},
			want:    geom.Vec2{X: 5, Y: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignFinishLine(tt.trigger, waypoints, 5)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlignFinishLineNoWaypoints(t *testing.T) {
	trigger := geom.Vec2{X: 7, Y: 7}
	assert.Equal(t, trigger, AlignFinishLine(trigger, nil, 5))
}
