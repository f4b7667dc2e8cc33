package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	guuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/catalog"
	"github.com/mlutzke/raceday/pkg/live"
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/processing"
	"github.com/mlutzke/raceday/pkg/processing/car"
	"github.com/mlutzke/raceday/pkg/processing/race"
	"github.com/mlutzke/raceday/pkg/repository/result"
	"github.com/mlutzke/raceday/pkg/sim"
	"github.com/mlutzke/raceday/pkg/utils"
	"github.com/mlutzke/raceday/pkg/utils/broadcast"
)

var ErrNoCatalog = errors.New("no catalog configured")

// RaceService hosts races: it assembles engine and processors from the
// catalog, streams live events, and persists the final classification.
type RaceService struct {
	pool   *pgxpool.Pool
	nc     *nats.Conn
	lookup *utils.RaceLookup
	cat    *catalog.Catalog

	countdown    float64
	staleTimeout float64
	tickRate     float64
	realTime     bool
}

type RaceServiceOption func(s *RaceService)

func WithPool(pool *pgxpool.Pool) RaceServiceOption {
	return func(s *RaceService) { s.pool = pool }
}

func WithNats(nc *nats.Conn) RaceServiceOption {
	return func(s *RaceService) { s.nc = nc }
}

func WithLookup(lookup *utils.RaceLookup) RaceServiceOption {
	return func(s *RaceService) { s.lookup = lookup }
}

func WithCatalog(cat *catalog.Catalog) RaceServiceOption {
	return func(s *RaceService) { s.cat = cat }
}

func WithCountdown(seconds float64) RaceServiceOption {
	return func(s *RaceService) { s.countdown = seconds }
}

func WithStaleTimeout(seconds float64) RaceServiceOption {
	return func(s *RaceService) { s.staleTimeout = seconds }
}

func WithTickRate(perSecond float64) RaceServiceOption {
	return func(s *RaceService) { s.tickRate = perSecond }
}

func WithRealTime(realTime bool) RaceServiceOption {
	return func(s *RaceService) { s.realTime = realTime }
}

func NewRaceService(opts ...RaceServiceOption) *RaceService {
	ret := &RaceService{
		lookup:    utils.NewRaceLookup(),
		countdown: race.DefaultCountdown,
		tickRate:  sim.DefaultTickRate,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (s *RaceService) Lookup() *utils.RaceLookup {
	return s.lookup
}

type hostParam struct {
	onStart func(key string)
}

type HostOption func(p *hostParam)

// OnStart is called with the race key once the race is registered,
// before the first tick.
func OnStart(f func(key string)) HostOption {
	return func(p *hostParam) { p.onStart = f }
}

// HostRace runs a complete race for the given entries and returns the
// final classification. The race is registered in the lookup while it
// runs; events go out via NATS when a connection is configured.
//
//nolint:funlen // by design
func (s *RaceService) HostRace(
	ctx context.Context,
	trackName string,
	entries []model.CarEntry,
	opts ...HostOption,
) (*model.DbRace, error) {
	param := hostParam{}
	for _, opt := range opts {
		opt(&param)
	}
	if s.cat == nil {
		return nil, ErrNoCatalog
	}
	trackSpec, err := s.cat.Track(trackName)
	if err != nil {
		return nil, err
	}

	cp := car.NewCarProcessor(car.WithTotalLaps(trackSpec.Laps))
	rpOpts := []race.RaceProcessorOption{
		race.WithCarProcessor(cp),
		race.WithCountdown(s.countdown),
	}
	if s.staleTimeout > 0 {
		rpOpts = append(rpOpts, race.WithStaleTimeout(s.staleTimeout))
	}
	proc := processing.NewProcessor(
		processing.WithRaceProcessor(race.NewRaceProcessor(rpOpts...)))

	engine, err := sim.NewFromTrack(trackSpec,
		sim.WithProcessor(proc),
		sim.WithTickRate(s.tickRate),
		sim.WithRealTime(s.realTime))
	if err != nil {
		return nil, err
	}
	engine.RegisterCars(entries)

	key := guuid.NewString()
	events := broadcast.NewBroadcastServer(key, "race-events", engine.Events())
	s.lookup.AddRace(&utils.RaceEntry{
		Key:       key,
		TrackName: trackName,
		Engine:    engine,
		Processor: proc,
		Events:    events,
	})
	defer s.lookup.RemoveRace(key)
	defer events.Close()
	if param.onStart != nil {
		param.onStart(key)
	}

	var pub *live.Publisher
	drained := make(chan struct{})
	if s.nc != nil {
		pub = live.NewPublisher(s.nc, key)
		go func() {
			pub.Run(events.Subscribe())
			close(drained)
		}()
	} else {
		close(drained)
	}

	log.Info("hosting race",
		log.String("key", key),
		log.String("track", trackName),
		log.Int("cars", len(entries)))
	results, runErr := engine.Run(ctx)
	<-drained

	raceID, _ := uuid.FromString(key)
	record := &model.DbRace{
		ID:        raceID,
		TrackName: trackName,
		Recorded:  time.Now(),
		Results:   results,
	}
	if pub != nil {
		pub.PublishStandings(results)
	}
	if runErr != nil {
		return record, runErr
	}

	if s.pool != nil {
		err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			return result.Create(ctx, tx, record)
		})
		if err != nil {
			log.Error("persisting race result", log.ErrorField(err))
			return record, err
		}
	}
	return record, nil
}
