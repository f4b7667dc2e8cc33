package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRaceResultAddLap(t *testing.T) {
	res := NewRaceResult("Red Comet", true)

	res.AddLap(1, 30, 30)
	res.AddLap(2, 31, 61)
	lap := res.AddLap(3, 29, 90)

	assert.Equal(t, 3, lap.LapNo)
	assert.True(t, lap.Completed)
	assert.Equal(t, 3, res.CompletedLaps())
	assert.InDelta(t, 29.0, res.BestLapTime, 1e-9)
	assert.InDelta(t, 90.0, res.TotalRaceTime, 1e-9)
}

func TestRaceResultBestLapFollowsMinimum(t *testing.T) {
	res := NewRaceResult("Blue Falcon", false)
	res.AddLap(1, 35, 35)
	assert.InDelta(t, 35.0, res.BestLapTime, 1e-9)
	res.AddLap(2, 34, 69)
	assert.InDelta(t, 34.0, res.BestLapTime, 1e-9)
	// a slower lap must not improve the best time
	res.AddLap(3, 36, 105)
	assert.InDelta(t, 34.0, res.BestLapTime, 1e-9)
	assert.InDelta(t, 105.0, res.TotalRaceTime, 1e-9)
}

func TestRaceResultEmpty(t *testing.T) {
	res := NewRaceResult("Green Hornet", false)
	assert.Equal(t, 0, res.CompletedLaps())
	assert.Zero(t, res.TotalRaceTime)
}
