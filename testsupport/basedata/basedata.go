package basedata

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mlutzke/raceday/pkg/geom"
	"github.com/mlutzke/raceday/pkg/model"
	trackrepos "github.com/mlutzke/raceday/pkg/repository/track"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2025-06-14T09:30:00Z")
	return t
}

// SampleTrack is a rectangular circuit, 80x40 units, pieces every 10
// units along the perimeter. The finish line sits on the first piece.
func SampleTrack() *model.TrackSpec {
	pieces := make([]geom.Vec2, 0, 24)
	for x := 0.0; x < 80; x += 10 {
		pieces = append(pieces, geom.Vec2{X: x, Y: 0})
	}
	for y := 0.0; y < 40; y += 10 {
		pieces = append(pieces, geom.Vec2{X: 80, Y: y})
	}
	for x := 80.0; x > 0; x -= 10 {
		pieces = append(pieces, geom.Vec2{X: x, Y: 40})
	}
	for y := 40.0; y > 0; y -= 10 {
		pieces = append(pieces, geom.Vec2{X: 0, Y: y})
	}
	return &model.TrackSpec{
		Name:            "testtrack",
		Laps:            3,
		Pieces:          pieces,
		FinishLine:      geom.Vec2{X: 0, Y: 0},
		FinishTolerance: 5,
		Description:     "rectangular test circuit",
	}
}

func SampleCars() []model.CarSpec {
	return []model.CarSpec{
		{Name: "Red Comet", TopSpeed: 34, Acceleration: 12, Handling: 140, IsPlayer: true},
		{Name: "Blue Falcon", TopSpeed: 32, Acceleration: 11, Handling: 130},
		{Name: "Green Hornet", TopSpeed: 30, Acceleration: 10, Handling: 120},
	}
}

func SampleEntries() []model.CarEntry {
	cars := SampleCars()
	ret := make([]model.CarEntry, len(cars))
	for i := range cars {
		ret[i] = model.CarEntry{Spec: cars[i], StartPos: i + 1}
	}
	return ret
}

func SampleDbTrack() *model.DbTrack {
	return &model.DbTrack{ID: 1, Data: *SampleTrack()}
}

func CreateSampleTrack(db *pgxpool.Pool) *model.DbTrack {
	ctx := context.Background()
	sample := SampleDbTrack()
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		return trackrepos.Create(ctx, tx, sample)
	})
	if err != nil {
		log.Fatalf("createSampleTrack: %v\n", err)
	}
	return sample
}

// SampleResults reflects a finished three car race.
func SampleResults() []model.RaceResult {
	mk := func(name string, pos int, lapTimes ...float64) model.RaceResult {
		res := model.NewRaceResult(name, false)
		total := 0.0
		for i, lt := range lapTimes {
			total += lt
			res.AddLap(i+1, lt, total)
		}
		res.FinalPosition = pos
		return *res
	}
	return []model.RaceResult{
		mk("Red Comet", 1, 30, 31, 29),
		mk("Blue Falcon", 2, 35, 34, 33),
		mk("Green Hornet", 3, 40, 39, 38),
	}
}
