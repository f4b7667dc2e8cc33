package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRaceLookup(t *testing.T) {
	rl := NewRaceLookup()

	_, err := rl.GetRace("missing")
	assert.ErrorIs(t, err, ErrRaceNotFound)

	rl.AddRace(&RaceEntry{Key: "a", TrackName: "Rectangle"})
	entry, err := rl.GetRace("a")
	assert.NoError(t, err)
	assert.Equal(t, "Rectangle", entry.TrackName)
	assert.False(t, entry.Started.IsZero())

	// duplicate keys keep the first entry
	rl.AddRace(&RaceEntry{Key: "a", TrackName: "Oval"})
	entry, _ = rl.GetRace("a")
	assert.Equal(t, "Rectangle", entry.TrackName)

	rl.AddRace(&RaceEntry{Key: "b"})
	assert.Len(t, rl.GetRaces(), 2)

	rl.RemoveRace("a")
	_, err = rl.GetRace("a")
	assert.ErrorIs(t, err, ErrRaceNotFound)

	rl.Clear()
	assert.Empty(t, rl.GetRaces())
}

func TestRemoveStale(t *testing.T) {
	rl := NewRaceLookup(WithStaleDuration(time.Minute))
	rl.AddRace(&RaceEntry{Key: "old", Started: time.Now().Add(-2 * time.Minute)})
	rl.AddRace(&RaceEntry{Key: "fresh"})

	removed := rl.RemoveStale()
	assert.Equal(t, []string{"old"}, removed)
	_, err := rl.GetRace("fresh")
	assert.NoError(t, err)
}

func TestRemoveStaleDisabled(t *testing.T) {
	rl := NewRaceLookup()
	rl.AddRace(&RaceEntry{Key: "old", Started: time.Now().Add(-24 * time.Hour)})
	assert.Empty(t, rl.RemoveStale())
}
