package model

import "math"

// RacePhase describes the overall state of a race session.
type RacePhase string

const (
	PhaseNone      RacePhase = "NONE"
	PhaseCountdown RacePhase = "COUNTDOWN"
	PhaseRacing    RacePhase = "RACING"
	PhaseFinished  RacePhase = "FINISHED"
)

// LapData describes one completed circuit of the track.
// Created when a car crosses the finish trigger, immutable afterwards.
type LapData struct {
	LapNo            int     `json:"lapNo"`
	LapTime          float64 `json:"lapTime"`
	TotalTimeElapsed float64 `json:"totalTimeElapsed"`
	Completed        bool    `json:"completed"`
}

// RaceResult holds the per-car race record. It is owned by the race
// processor and mutated via AddLap until the race is finalized.
type RaceResult struct {
	CarName       string    `json:"carName"`
	IsPlayer      bool      `json:"isPlayer"`
	Laps          []LapData `json:"laps"`
	BestLapTime   float64   `json:"bestLapTime"`
	TotalRaceTime float64   `json:"totalRaceTime"`
	FinalPosition int       `json:"finalPosition"`
}

func NewRaceResult(carName string, isPlayer bool) *RaceResult {
	return &RaceResult{
		CarName:  carName,
		IsPlayer: isPlayer,
		Laps:     make([]LapData, 0),
	}
}

// AddLap records a completed lap and maintains the derived values:
// BestLapTime is the minimum lap time over completed laps,
// TotalRaceTime follows the total elapsed time of the latest lap.
func (r *RaceResult) AddLap(lapNo int, lapTime, totalElapsed float64) LapData {
	lap := LapData{
		LapNo:            lapNo,
		LapTime:          lapTime,
		TotalTimeElapsed: totalElapsed,
		Completed:        true,
	}
	r.Laps = append(r.Laps, lap)
	r.TotalRaceTime = totalElapsed
	r.BestLapTime = math.Inf(1)
	for i := range r.Laps {
		if r.Laps[i].Completed && r.Laps[i].LapTime < r.BestLapTime {
			r.BestLapTime = r.Laps[i].LapTime
		}
	}
	return lap
}

// CompletedLaps returns the number of laps recorded as completed.
func (r *RaceResult) CompletedLaps() int {
	n := 0
	for i := range r.Laps {
		if r.Laps[i].Completed {
			n++
		}
	}
	return n
}
