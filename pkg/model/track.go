package model

import "github.com/mlutzke/raceday/pkg/geom"

// TrackSpec is the static configuration record for a track.
// Pieces holds the unordered positions of the track pieces as placed in
// the editor; the waypoint generator derives the ordered racing path.
type TrackSpec struct {
	Name            string      `json:"name" yaml:"name"`
	Laps            int         `json:"laps" yaml:"laps"`
	Pieces          []geom.Vec2 `json:"pieces" yaml:"pieces"`
	FinishLine      geom.Vec2   `json:"finishLine" yaml:"finishLine"`
	FinishTolerance float64     `json:"finishTolerance" yaml:"finishTolerance"`
	Description     string      `json:"description,omitempty" yaml:"description,omitempty"`
}

// Waypoint is a track-relative target point used to steer AI cars.
// IsCurve marks waypoints where the path turn angle exceeds the curve
// threshold; AI cars reduce their target speed there.
type Waypoint struct {
	Pos     geom.Vec2 `json:"pos"`
	IsCurve bool      `json:"isCurve"`
}

// DbTrack is the persisted form of a track spec.
type DbTrack struct {
	ID   int       `json:"id"`
	Data TrackSpec `json:"data"`
}
