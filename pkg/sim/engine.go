package sim

import (
	"context"
	"errors"
	"time"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/ai"
	"github.com/mlutzke/raceday/pkg/geom"
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/processing"
	"github.com/mlutzke/raceday/pkg/processing/car"
	"github.com/mlutzke/raceday/pkg/processing/race"
	"github.com/mlutzke/raceday/pkg/track"
)

const DefaultTickRate = 60.0 // ticks per second

var (
	ErrNoWaypoints = errors.New("engine has no waypoints")
	ErrNoCars      = errors.New("engine has no cars")
)

// Engine runs a race as a fixed-timestep simulation. One goroutine
// owns all race state; external control (Pause/Resume) is serialized
// through a mutex-free command check per tick to keep the loop simple:
// pause state lives in the race processor and is toggled via Engine
// methods which are safe to call concurrently.
type Engine struct {
	proc      *processing.Processor
	waypoints []model.Waypoint
	finish    geom.Vec2
	cars      map[string]*carState
	order     []string

	tickRate float64
	realTime bool

	ctl    chan ctlMsg
	events chan race.Event
	skips  int
}

type ctlMsg int

const (
	ctlPause ctlMsg = iota
	ctlResume
)

type carState struct {
	spec      model.CarSpec
	driver    *ai.Driver
	pos       geom.Vec2
	heading   float64 // degrees
	speed     float64
	raceStart float64 // session time the car was released
	lapStart  float64
}

type Option func(e *Engine)

func WithProcessor(proc *processing.Processor) Option {
	return func(e *Engine) {
		e.proc = proc
	}
}

func WithWaypoints(waypoints []model.Waypoint, finish geom.Vec2) Option {
	return func(e *Engine) {
		e.waypoints = waypoints
		e.finish = finish
	}
}

func WithTickRate(perSecond float64) Option {
	return func(e *Engine) {
		e.tickRate = perSecond
	}
}

// WithRealTime makes Run pace the ticks with the wall clock. Without
// it the loop runs as fast as possible (offline simulation, tests).
func WithRealTime(realTime bool) Option {
	return func(e *Engine) {
		e.realTime = realTime
	}
}

func New(opts ...Option) *Engine {
	ret := &Engine{
		cars:     make(map[string]*carState),
		tickRate: DefaultTickRate,
		ctl:      make(chan ctlMsg, 8),
		events:   make(chan race.Event, 256),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.proc == nil {
		ret.proc = processing.NewProcessor()
	}
	return ret
}

// NewFromTrack builds the waypoint path from the track spec, aligns
// the finish trigger and returns a ready engine.
func NewFromTrack(spec *model.TrackSpec, opts ...Option) (*Engine, error) {
	waypoints, err := track.BuildWaypoints(spec.Pieces)
	if err != nil {
		return nil, err
	}
	finish := track.AlignFinishLine(spec.FinishLine, waypoints, spec.FinishTolerance)
	opts = append(opts, WithWaypoints(waypoints, finish))
	return New(opts...), nil
}

// RegisterCars places the cars on the finish line and registers them
// with the processors.
func (e *Engine) RegisterCars(entries []model.CarEntry) {
	e.proc.RegisterCars(entries)
	heading := e.startHeading()
	for i := range entries {
		name := entries[i].Spec.Name
		if _, ok := e.cars[name]; ok {
			continue // duplicate already rejected by the car processor
		}
		e.cars[name] = &carState{
			spec:    entries[i].Spec,
			driver:  ai.NewDriver(e.waypoints),
			pos:     e.finish,
			heading: heading,
		}
		e.order = append(e.order, name)
	}
}

// Events exposes the race event stream. The channel is closed when
// Run returns; slow consumers lose events instead of stalling the loop.
func (e *Engine) Events() <-chan race.Event {
	return e.events
}

func (e *Engine) Pause()  { e.ctl <- ctlPause }
func (e *Engine) Resume() { e.ctl <- ctlResume }

// Run drives the race to its end and returns the final standings.
// Cancelling the context stops the loop; whatever standings exist at
// that point are returned along with the context error.
func (e *Engine) Run(ctx context.Context) ([]model.RaceResult, error) {
	defer close(e.events)
	if len(e.waypoints) == 0 {
		return nil, ErrNoWaypoints
	}
	if len(e.cars) == 0 {
		return nil, ErrNoCars
	}

	dt := 1.0 / e.tickRate
	e.emit(e.proc.Start())

	var ticker *time.Ticker
	if e.realTime {
		ticker = time.NewTicker(time.Duration(float64(time.Second) * dt))
		defer ticker.Stop()
	}

	for e.proc.Phase() != model.PhaseFinished {
		select {
		case <-ctx.Done():
			log.Warn("race aborted", log.ErrorField(ctx.Err()))
			return e.proc.Standings(), ctx.Err()
		case msg := <-e.ctl:
			e.applyCtl(msg)
			continue
		default:
		}
		if e.realTime {
			select {
			case <-ctx.Done():
				log.Warn("race aborted", log.ErrorField(ctx.Err()))
				return e.proc.Standings(), ctx.Err()
			case msg := <-e.ctl:
				e.applyCtl(msg)
				continue
			case <-ticker.C:
			}
		} else if e.proc.IsPaused() {
			// nothing moves while paused, wait for the next control message
			select {
			case <-ctx.Done():
				log.Warn("race aborted", log.ErrorField(ctx.Err()))
				return e.proc.Standings(), ctx.Err()
			case msg := <-e.ctl:
				e.applyCtl(msg)
			}
			continue
		}
		e.step(dt)
	}
	if e.skips > 0 {
		log.Debug("event consumer too slow", log.Int("skipped", e.skips))
	}
	return e.proc.Standings(), nil
}

func (e *Engine) applyCtl(msg ctlMsg) {
	switch msg {
	case ctlPause:
		e.proc.Pause()
	case ctlResume:
		e.proc.Resume()
	}
}

// one simulation tick: advance the session clock, then move every
// released car and feed lap completions into the race processor
func (e *Engine) step(dt float64) {
	if e.proc.IsPaused() {
		return
	}
	events := e.proc.Tick(dt)
	e.handleReleases(events)

	cp := e.carProcessor()
	for _, name := range e.order {
		if cp.StateOf(name) != car.StateRacing {
			continue
		}
		cs := e.cars[name]
		cmd, crossedFinish := cs.driver.Plan(cs.pos, cs.heading)
		e.integrate(cs, cmd, dt)
		if crossedFinish {
			now := e.proc.SessionTime()
			lapEvents := e.proc.CompleteLap(name, now-cs.lapStart, now-cs.raceStart)
			cs.lapStart = now
			e.handleReleases(lapEvents)
			events = append(events, lapEvents...)
		}
	}
	e.emit(events)
}

func (e *Engine) integrate(cs *carState, cmd ai.Command, dt float64) {
	target := cs.spec.TopSpeed * cmd.TargetSpeedFactor
	delta := geom.Clamp(target-cs.speed, -cs.spec.Acceleration*dt, cs.spec.Acceleration*dt)
	cs.speed += delta
	cs.heading += cmd.Steer * cs.spec.Handling * dt
	cs.pos = cs.pos.Add(geom.HeadingVec(cs.heading).Scale(cs.speed * dt))
}

// a released car starts its personal race clock now
func (e *Engine) handleReleases(events []race.Event) {
	for i := range events {
		if events[i].Type != race.EventCarReleased {
			continue
		}
		if cs, ok := e.cars[events[i].CarName]; ok {
			cs.raceStart = e.proc.SessionTime()
			cs.lapStart = cs.raceStart
		}
	}
}

func (e *Engine) emit(events []race.Event) {
	for i := range events {
		select {
		case e.events <- events[i]:
		default:
			e.skips++
		}
	}
}

func (e *Engine) carProcessor() *car.CarProcessor {
	return e.proc.CarProcessor()
}

func (e *Engine) startHeading() float64 {
	if len(e.waypoints) > 1 {
		dir := e.waypoints[1].Pos.Sub(e.waypoints[0].Pos)
		return geom.SignedAngleDeg(geom.Vec2{X: 1}, dir)
	}
	return 0
}
