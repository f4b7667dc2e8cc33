package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlutzke/raceday/pkg/catalog"
	"github.com/mlutzke/raceday/pkg/geom"
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/utils"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Tracks: []model.TrackSpec{
			{
				Name: "testtrack",
				Laps: 2,
				Pieces: []geom.Vec2{
					{X: 0, Y: 0},
					{X: 10, Y: 0},
					{X: 20, Y: 0},
					{X: 20, Y: 10},
					{X: 20, Y: 20},
					{X: 10, Y: 20},
					{X: 0, Y: 20},
					{X: 0, Y: 10},
				},
				FinishLine:      geom.Vec2{X: 0, Y: 0},
				FinishTolerance: 5,
			},
		},
	}
}

// slow cars with strong handling, the race reliably runs to the end
func testEntries() []model.CarEntry {
	return []model.CarEntry{
		{Spec: model.CarSpec{
			Name: "A", TopSpeed: 8, Acceleration: 10, Handling: 240, IsPlayer: true,
		}, StartPos: 1},
		{Spec: model.CarSpec{
			Name: "B", TopSpeed: 7, Acceleration: 10, Handling: 240,
		}, StartPos: 2},
	}
}

// hosting works without a database pool and without NATS: the race runs,
// the classification comes back, nothing is persisted or published
func TestHostRaceOffline(t *testing.T) {
	svc := NewRaceService(
		WithCatalog(testCatalog()),
		WithCountdown(0.5))

	var startedKey string
	record, err := svc.HostRace(context.Background(), "testtrack", testEntries(),
		OnStart(func(key string) {
			startedKey = key
			// the race is registered while it runs
			entry, lookupErr := svc.Lookup().GetRace(key)
			assert.NoError(t, lookupErr)
			assert.Equal(t, "testtrack", entry.TrackName)
			assert.NotNil(t, entry.Engine)
			assert.NotNil(t, entry.Processor)
			assert.NotNil(t, entry.Events)
		}))
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.NotEmpty(t, startedKey)
	assert.Equal(t, startedKey, record.ID.String())
	assert.Equal(t, "testtrack", record.TrackName)
	assert.False(t, record.Recorded.IsZero())

	require.Len(t, record.Results, 2)
	assert.Equal(t, "A", record.Results[0].CarName)
	assert.Equal(t, 1, record.Results[0].FinalPosition)
	assert.Equal(t, 2, record.Results[0].CompletedLaps())
	assert.Equal(t, "B", record.Results[1].CarName)
	assert.Equal(t, 2, record.Results[1].FinalPosition)

	// the lookup entry is gone once the race is over
	_, err = svc.Lookup().GetRace(startedKey)
	assert.ErrorIs(t, err, utils.ErrRaceNotFound)
}

func TestHostRaceNoCatalog(t *testing.T) {
	svc := NewRaceService()
	_, err := svc.HostRace(context.Background(), "testtrack", testEntries())
	assert.ErrorIs(t, err, ErrNoCatalog)
}

func TestHostRaceUnknownTrack(t *testing.T) {
	svc := NewRaceService(WithCatalog(testCatalog()))
	_, err := svc.HostRace(context.Background(), "unknown", testEntries())
	assert.ErrorIs(t, err, catalog.ErrTrackNotFound)
}
