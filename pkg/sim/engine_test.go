package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlutzke/raceday/pkg/geom"
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/processing"
	"github.com/mlutzke/raceday/pkg/processing/car"
	"github.com/mlutzke/raceday/pkg/processing/race"
)

// slow cars with strong handling keep the turning radius well inside
// the waypoint capture radius, so the race reliably runs to the end
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

func testTrack() *model.TrackSpec {
	return &model.TrackSpec{
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
	}
}

func testProcessor(laps int, opts ...race.RaceProcessorOption) *processing.Processor {
	cp := car.NewCarProcessor(car.WithTotalLaps(laps))
	opts = append([]race.RaceProcessorOption{
		race.WithCarProcessor(cp),
		race.WithCountdown(0.5),
	}, opts...)
	return processing.NewProcessor(
		processing.WithRaceProcessor(race.NewRaceProcessor(opts...)))
}

func TestRunWithoutWaypoints(t *testing.T) {
	engine := New()
	_, err := engine.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoWaypoints)
}

func TestRunWithoutCars(t *testing.T) {
	engine, err := NewFromTrack(testTrack())
	require.NoError(t, err)
	_, err = engine.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoCars)
}

func TestRunCompletesRace(t *testing.T) {
	proc := testProcessor(2)
	engine, err := NewFromTrack(testTrack(), WithProcessor(proc))
	require.NoError(t, err)
	engine.RegisterCars(testEntries())

	go func() {
		for range engine.Events() {
		}
	}()
	results, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.PhaseFinished, proc.Phase())
	require.Len(t, results, 2)
	// A is faster and started first
	assert.Equal(t, "A", results[0].CarName)
	assert.Equal(t, 1, results[0].FinalPosition)
	assert.Equal(t, 2, results[0].CompletedLaps())
	assert.Equal(t, "B", results[1].CarName)
	assert.Equal(t, 2, results[1].FinalPosition)
	assert.Greater(t, results[1].TotalRaceTime, results[0].TotalRaceTime)
	assert.Greater(t, results[0].BestLapTime, 0.0)
}

func TestRunEmitsEvents(t *testing.T) {
	proc := testProcessor(2)
	engine, err := NewFromTrack(testTrack(), WithProcessor(proc))
	require.NoError(t, err)
	engine.RegisterCars(testEntries())

	seen := make(map[race.EventType]int)
	done := make(chan struct{})
	go func() {
		for ev := range engine.Events() {
			seen[ev.Type]++
		}
		close(done)
	}()
	_, err = engine.Run(context.Background())
	require.NoError(t, err)
	<-done

	assert.GreaterOrEqual(t, seen[race.EventPhaseChanged], 3, "countdown, racing, finished")
	assert.Equal(t, 2, seen[race.EventCarReleased])
	assert.Equal(t, 4, seen[race.EventLapCompleted])
	assert.Equal(t, 2, seen[race.EventCarFinished])
}

func TestRunHonorsContextCancel(t *testing.T) {
	proc := testProcessor(2)
	engine, err := NewFromTrack(testTrack(),
		WithProcessor(proc),
		WithRealTime(true),
		WithTickRate(100))
	require.NoError(t, err)
	engine.RegisterCars(testEntries())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for range engine.Events() {
		}
	}()
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err = engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPauseStopsProgress(t *testing.T) {
	proc := testProcessor(2)
	engine, err := NewFromTrack(testTrack(),
		WithProcessor(proc),
		WithRealTime(true),
		WithTickRate(100))
	require.NoError(t, err)
	engine.RegisterCars(testEntries())

	go func() {
		for range engine.Events() {
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		//nolint:errcheck // aborted by cancel
		engine.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	engine.Pause()
	time.Sleep(50 * time.Millisecond)
	frozen := proc.SessionTime()
	time.Sleep(100 * time.Millisecond)
	assert.InDelta(t, frozen, proc.SessionTime(), 1e-9)

	engine.Resume()
	time.Sleep(100 * time.Millisecond)
	assert.Greater(t, proc.SessionTime(), frozen)

	cancel()
	<-done
}
