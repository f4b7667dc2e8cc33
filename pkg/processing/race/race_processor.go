package race

import (
	"slices"

	"github.com/samber/lo"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/processing/car"
)

const DefaultCountdown = 3.0 // seconds

type EventType string

const (
	EventPhaseChanged EventType = "phaseChanged"
	EventCarReleased  EventType = "carReleased"
	EventLapCompleted EventType = "lapCompleted"
	EventCarFinished  EventType = "carFinished"
)

// Event describes a transition produced by the race processor.
// Consumers (sim engine, live publisher) drain them per call.
type Event struct {
	Type    EventType       `json:"type"`
	CarName string          `json:"carName,omitempty"`
	Phase   model.RacePhase `json:"phase,omitempty"`
	Lap     model.LapData   `json:"lap,omitempty"`
}

// RaceProcessor owns the race session: the phase state machine,
// the countdown, the staggered start queue and the final classification.
//
// Staggered start: the countdown releases the first car; every other
// car is released exactly when its predecessor completes lap 1.
type RaceProcessor struct {
	Phase  model.RacePhase
	Paused bool

	carProcessor *car.CarProcessor
	queue        []string // cars waiting for release, in start order
	countdown    float64  // seconds remaining
	countdownLen float64
	sessionTime  float64
	staleTimeout float64 // 0 disables the stale policy
	lastProgress float64
}

type RaceProcessorOption func(rp *RaceProcessor)

func WithCarProcessor(cp *car.CarProcessor) RaceProcessorOption {
	return func(rp *RaceProcessor) {
		rp.carProcessor = cp
	}
}

func WithCountdown(seconds float64) RaceProcessorOption {
	return func(rp *RaceProcessor) {
		rp.countdownLen = seconds
	}
}

// WithStaleTimeout enables the opt-in abort policy: if no car makes
// progress for the given number of seconds the race is finalized with
// the standings at that point. Zero keeps the race running forever.
func WithStaleTimeout(seconds float64) RaceProcessorOption {
	return func(rp *RaceProcessor) {
		rp.staleTimeout = seconds
	}
}

func NewRaceProcessor(opts ...RaceProcessorOption) *RaceProcessor {
	ret := &RaceProcessor{
		Phase:        model.PhaseNone,
		countdownLen: DefaultCountdown,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.carProcessor == nil {
		ret.carProcessor = car.NewCarProcessor()
	}
	return ret
}

func (p *RaceProcessor) CarProcessor() *car.CarProcessor {
	return p.carProcessor
}

func (p *RaceProcessor) SessionTime() float64 {
	return p.sessionTime
}

// Start moves the race into the countdown phase. The first car in
// start order enters countdown, all others stay queued.
func (p *RaceProcessor) Start() []Event {
	if p.Phase != model.PhaseNone {
		log.Warn("race already started", log.String("phase", string(p.Phase)))
		return nil
	}
	if len(p.carProcessor.Order) == 0 {
		log.Warn("no cars registered, race not started")
		return nil
	}
	p.queue = slices.Clone(p.carProcessor.Order)
	p.countdown = p.countdownLen
	p.Phase = model.PhaseCountdown
	p.carProcessor.MarkCountdown(p.queue[0])
	return []Event{{Type: EventPhaseChanged, Phase: model.PhaseCountdown}}
}

// Tick advances the session clock. While paused the clock is frozen
// (countdown included) and no transitions happen.
func (p *RaceProcessor) Tick(dt float64) []Event {
	if p.Paused || p.Phase == model.PhaseNone || p.Phase == model.PhaseFinished {
		return nil
	}
	p.sessionTime += dt

	var events []Event
	if p.Phase == model.PhaseCountdown {
		p.countdown -= dt
		if p.countdown <= 0 {
			events = append(events, p.releaseNext()...)
			p.Phase = model.PhaseRacing
			p.lastProgress = p.sessionTime
			events = append(events,
				Event{Type: EventPhaseChanged, Phase: model.PhaseRacing})
		}
		return events
	}

	if p.staleTimeout > 0 && p.sessionTime-p.lastProgress > p.staleTimeout {
		log.Warn("no race progress, aborting",
			log.Float64("staleTimeout", p.staleTimeout),
			log.Float64("sessionTime", p.sessionTime))
		events = append(events, p.finalize()...)
	}
	return events
}

// CompleteLap records a lap for the car. Completing the first lap
// releases the next queued car; completing the race distance may end
// the race once no car is queued or still racing.
func (p *RaceProcessor) CompleteLap(carName string, lapTime, totalElapsed float64) []Event {
	if p.Phase != model.PhaseRacing {
		log.Warn("lap reported outside racing phase, skipped",
			log.String("car", carName), log.String("phase", string(p.Phase)))
		return nil
	}
	lap, finished := p.carProcessor.ProcessLap(carName, lapTime, totalElapsed)
	if !lap.Completed {
		return nil
	}
	p.lastProgress = p.sessionTime

	events := []Event{{Type: EventLapCompleted, CarName: carName, Lap: lap}}
	if lap.LapNo == 1 {
		events = append(events, p.releaseNext()...)
	}
	if finished {
		events = append(events, Event{Type: EventCarFinished, CarName: carName})
	}
	if p.carProcessor.AllFinished() && len(p.queue) == 0 {
		events = append(events, p.finalize()...)
	}
	return events
}

func (p *RaceProcessor) Pause() {
	if !p.Paused {
		p.Paused = true
		log.Debug("race paused", log.Float64("sessionTime", p.sessionTime))
	}
}

func (p *RaceProcessor) Resume() {
	if p.Paused {
		p.Paused = false
		log.Debug("race resumed", log.Float64("sessionTime", p.sessionTime))
	}
}

// Standings returns the current classification: by final position once
// the race is finished, otherwise by completed laps and elapsed time.
func (p *RaceProcessor) Standings() []model.RaceResult {
	ret := lo.Map(p.carProcessor.Order, func(name string, _ int) model.RaceResult {
		return *p.carProcessor.Results[name]
	})
	slices.SortStableFunc(ret, func(a, b model.RaceResult) int {
		if p.Phase == model.PhaseFinished {
			return a.FinalPosition - b.FinalPosition
		}
		if n := b.CompletedLaps() - a.CompletedLaps(); n != 0 {
			return n
		}
		switch {
		case a.TotalRaceTime < b.TotalRaceTime:
			return -1
		case a.TotalRaceTime > b.TotalRaceTime:
			return 1
		default:
			return 0
		}
	})
	return ret
}

// exactly one car leaves the queue
func (p *RaceProcessor) releaseNext() []Event {
	if len(p.queue) == 0 {
		return nil
	}
	next := p.queue[0]
	p.queue = p.queue[1:]
	p.carProcessor.MarkRacing(next)
	log.Info("car released", log.String("car", next))
	return []Event{{Type: EventCarReleased, CarName: next}}
}

// assign final positions by ascending total race time; cars that never
// finished are ranked behind the finishers by laps done, then time
func (p *RaceProcessor) finalize() []Event {
	names := slices.Clone(p.carProcessor.Order)
	slices.SortStableFunc(names, func(a, b string) int {
		ra, rb := p.carProcessor.Results[a], p.carProcessor.Results[b]
		finA := p.carProcessor.StateOf(a) == car.StateFinished
		finB := p.carProcessor.StateOf(b) == car.StateFinished
		if finA != finB {
			if finA {
				return -1
			}
			return 1
		}
		if !finA {
			if n := rb.CompletedLaps() - ra.CompletedLaps(); n != 0 {
				return n
			}
		}
		switch {
		case ra.TotalRaceTime < rb.TotalRaceTime:
			return -1
		case ra.TotalRaceTime > rb.TotalRaceTime:
			return 1
		default:
			return 0
		}
	})
	for i, name := range names {
		p.carProcessor.Results[name].FinalPosition = i + 1
	}
	p.Phase = model.PhaseFinished
	log.Info("race finished",
		log.Float64("sessionTime", p.sessionTime),
		log.Int("cars", len(names)))
	return []Event{{Type: EventPhaseChanged, Phase: model.PhaseFinished}}
}
