package track

import (
	"errors"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/geom"
	"github.com/mlutzke/raceday/pkg/model"
)

const (
	// CurveAngleThreshold marks a waypoint as curve when the path turn
	// angle at that point exceeds this value (degrees).
	CurveAngleThreshold = 30.0
	// DefaultFinishTolerance is the max allowed distance between the
	// finish trigger and the first waypoint before auto-correction.
	DefaultFinishTolerance = 5.0
)

var ErrNoTrackPieces = errors.New("no track pieces found")

// BuildWaypoints orders the unordered track piece positions into a
// closed racing path using greedy nearest-neighbor chaining and flags
// curve waypoints.
func BuildWaypoints(pieces []geom.Vec2) ([]model.Waypoint, error) {
	if len(pieces) == 0 {
		log.Warn("no track pieces found, cannot build waypoints")
		return nil, ErrNoTrackPieces
	}

	ordered := orderByNearestNeighbor(pieces)
	ret := make([]model.Waypoint, len(ordered))
	for i := range ordered {
		ret[i] = model.Waypoint{
			Pos:     ordered[i],
			IsCurve: isCurveAt(ordered, i),
		}
	}
	return ret, nil
}

// pick the nearest unvisited piece to the current path tail, repeat.
func orderByNearestNeighbor(pieces []geom.Vec2) []geom.Vec2 {
	remaining := make([]geom.Vec2, len(pieces))
	copy(remaining, pieces)

	ordered := make([]geom.Vec2, 0, len(pieces))
	cur := remaining[0]
	ordered = append(ordered, cur)
	remaining = remaining[1:]

	for len(remaining) > 0 {
		best := 0
		bestDist := cur.Dist(remaining[0])
		for i := 1; i < len(remaining); i++ {
			if d := cur.Dist(remaining[i]); d < bestDist {
				best = i
				bestDist = d
			}
		}
		cur = remaining[best]
		ordered = append(ordered, cur)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return ordered
}

// the path is a closed circuit, so prev/next wrap around
func isCurveAt(ordered []geom.Vec2, i int) bool {
	if len(ordered) < 3 {
		return false
	}
	prev := ordered[(i-1+len(ordered))%len(ordered)]
	next := ordered[(i+1)%len(ordered)]
	in := ordered[i].Sub(prev)
	out := next.Sub(ordered[i])
	return geom.AngleDeg(in, out) > CurveAngleThreshold
}

// AlignFinishLine checks the finish trigger position against the first
// waypoint and returns the corrected position: if the distance exceeds
// the tolerance the trigger is moved onto the first waypoint, otherwise
// it is left untouched. tolerance <= 0 selects the default.
func AlignFinishLine(trigger geom.Vec2, waypoints []model.Waypoint, tolerance float64) geom.Vec2 {
	if len(waypoints) == 0 {
		log.Warn("no waypoints available, finish line left unchanged")
		return trigger
	}
	if tolerance <= 0 {
		tolerance = DefaultFinishTolerance
	}
	first := waypoints[0].Pos
	if dist := trigger.Dist(first); dist > tolerance {
		log.Warn("finish line off first waypoint, correcting position",
			log.Float64("dist", dist),
			log.Float64("tolerance", tolerance))
		return first
	}
	return trigger
}
