package car

import (
	"slices"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/model"
)

const (
	StateQueued    = "QUEUED"
	StateCountdown = "COUNTDOWN"
	StateRacing    = "RACING"
	StateFinished  = "FINISHED"
)

// CarProcessor keeps the per-car race bookkeeping: compute state,
// lap records and derived times. The race processor drives the state
// transitions; this processor owns the data.
type CarProcessor struct {
	Results      map[string]*model.RaceResult // key carName
	ComputeState map[string]string            // key carName
	// Order holds the car names sorted by start position preference
	Order     []string
	totalLaps int
}

type CarProcessorOption func(cp *CarProcessor)

func WithTotalLaps(laps int) CarProcessorOption {
	return func(cp *CarProcessor) {
		cp.totalLaps = laps
	}
}

func NewCarProcessor(opts ...CarProcessorOption) *CarProcessor {
	cp := &CarProcessor{
		Results:      make(map[string]*model.RaceResult),
		ComputeState: make(map[string]string),
		Order:        make([]string, 0),
		totalLaps:    3,
	}
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}

func (p *CarProcessor) TotalLaps() int {
	return p.totalLaps
}

// RegisterCars sets up the bookkeeping for the given entries.
// Entries are ordered by ascending start position preference.
func (p *CarProcessor) RegisterCars(entries []model.CarEntry) {
	sorted := make([]model.CarEntry, len(entries))
	copy(sorted, entries)
	slices.SortStableFunc(sorted, func(a, b model.CarEntry) int {
		return a.StartPos - b.StartPos
	})
	for i := range sorted {
		name := sorted[i].Spec.Name
		if _, ok := p.Results[name]; ok {
			log.Warn("duplicate car registration skipped", log.String("car", name))
			continue
		}
		p.Results[name] = model.NewRaceResult(name, sorted[i].Spec.IsPlayer)
		p.ComputeState[name] = StateQueued
		p.Order = append(p.Order, name)
	}
}

func (p *CarProcessor) StateOf(carName string) string {
	return p.ComputeState[carName]
}

// MarkCountdown moves a queued car into the countdown state.
func (p *CarProcessor) MarkCountdown(carName string) {
	p.transition(carName, StateQueued, StateCountdown)
}

// MarkRacing releases a car onto the track.
func (p *CarProcessor) MarkRacing(carName string) {
	state, ok := p.ComputeState[carName]
	if !ok {
		log.Warn("unknown car, ignoring release", log.String("car", carName))
		return
	}
	if state != StateQueued && state != StateCountdown {
		log.Warn("car not eligible for release",
			log.String("car", carName), log.String("state", state))
		return
	}
	p.ComputeState[carName] = StateRacing
}

func (p *CarProcessor) transition(carName, from, to string) {
	state, ok := p.ComputeState[carName]
	if !ok {
		log.Warn("unknown car, ignoring transition", log.String("car", carName))
		return
	}
	if state != from {
		log.Warn("unexpected car state",
			log.String("car", carName),
			log.String("state", state),
			log.String("want", from))
		return
	}
	p.ComputeState[carName] = to
}

// ProcessLap records a completed lap for the car and returns the lap
// data plus whether the car finished its race distance with this lap.
func (p *CarProcessor) ProcessLap(carName string, lapTime, totalElapsed float64) (
	lap model.LapData, finished bool,
) {
	result, ok := p.Results[carName]
	if !ok {
		log.Warn("lap reported for unknown car, skipped", log.String("car", carName))
		return model.LapData{}, false
	}
	if p.ComputeState[carName] != StateRacing {
		log.Warn("lap reported for car not racing, skipped",
			log.String("car", carName),
			log.String("state", p.ComputeState[carName]))
		return model.LapData{}, false
	}
	lap = result.AddLap(result.CompletedLaps()+1, lapTime, totalElapsed)
	if result.CompletedLaps() >= p.totalLaps {
		p.ComputeState[carName] = StateFinished
		finished = true
	}
	return lap, finished
}

// AllFinished reports whether every registered car completed the race distance.
func (p *CarProcessor) AllFinished() bool {
	if len(p.Order) == 0 {
		return false
	}
	for _, name := range p.Order {
		if p.ComputeState[name] != StateFinished {
			return false
		}
	}
	return true
}
