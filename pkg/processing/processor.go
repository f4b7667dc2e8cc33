package processing

import (
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/processing/car"
	"github.com/mlutzke/raceday/pkg/processing/race"
)

// Processor bundles the car and race processors for one race session.
// The sim engine (or a replay source) feeds it; live consumers read
// the composed standings.
type Processor struct {
	carProcessor  *car.CarProcessor
	raceProcessor *race.RaceProcessor
}

type ProcessorOption func(proc *Processor)

// entry point when hosting a new race: car and race processors are created here
func WithRaceSetup(totalLaps int, countdown float64) ProcessorOption {
	return func(proc *Processor) {
		proc.carProcessor = car.NewCarProcessor(car.WithTotalLaps(totalLaps))
		proc.raceProcessor = race.NewRaceProcessor(
			race.WithCarProcessor(proc.carProcessor),
			race.WithCountdown(countdown),
		)
	}
}

func WithCarProcessor(carProcessor *car.CarProcessor) ProcessorOption {
	return func(proc *Processor) {
		proc.carProcessor = carProcessor
		proc.raceProcessor = race.NewRaceProcessor(race.WithCarProcessor(carProcessor))
	}
}

func WithRaceProcessor(raceProcessor *race.RaceProcessor) ProcessorOption {
	return func(proc *Processor) {
		proc.carProcessor = raceProcessor.CarProcessor()
		proc.raceProcessor = raceProcessor
	}
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	ret := &Processor{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.raceProcessor == nil {
		ret.carProcessor = car.NewCarProcessor()
		ret.raceProcessor = race.NewRaceProcessor(
			race.WithCarProcessor(ret.carProcessor))
	}
	return ret
}

func (p *Processor) CarProcessor() *car.CarProcessor {
	return p.carProcessor
}

func (p *Processor) RegisterCars(entries []model.CarEntry) {
	p.carProcessor.RegisterCars(entries)
}

func (p *Processor) Start() []race.Event {
	return p.raceProcessor.Start()
}

func (p *Processor) Tick(dt float64) []race.Event {
	return p.raceProcessor.Tick(dt)
}

func (p *Processor) CompleteLap(carName string, lapTime, totalElapsed float64) []race.Event {
	return p.raceProcessor.CompleteLap(carName, lapTime, totalElapsed)
}

func (p *Processor) Pause()  { p.raceProcessor.Pause() }
func (p *Processor) Resume() { p.raceProcessor.Resume() }

func (p *Processor) IsPaused() bool {
	return p.raceProcessor.Paused
}

func (p *Processor) Phase() model.RacePhase {
	return p.raceProcessor.Phase
}

func (p *Processor) SessionTime() float64 {
	return p.raceProcessor.SessionTime()
}

func (p *Processor) Standings() []model.RaceResult {
	return p.raceProcessor.Standings()
}
