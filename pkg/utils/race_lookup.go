package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/mlutzke/raceday/pkg/processing"
	"github.com/mlutzke/raceday/pkg/processing/race"
	"github.com/mlutzke/raceday/pkg/sim"
	"github.com/mlutzke/raceday/pkg/utils/broadcast"
)

var ErrRaceNotFound = errors.New("race not found")

// RaceEntry bundles the live objects of a hosted race. Events lets
// additional consumers tap into the event stream while the race runs.
type RaceEntry struct {
	Key       string
	TrackName string
	Engine    *sim.Engine
	Processor *processing.Processor
	Events    broadcast.BroadcastServer[race.Event]
	Started   time.Time
}

// RaceLookup is the registry of currently hosted races.
type RaceLookup struct {
	lookup        map[string]*RaceEntry
	mutex         sync.Mutex
	staleDuration time.Duration
}

type RaceLookupOption func(rl *RaceLookup)

// WithStaleDuration removes races older than d via RemoveStale.
func WithStaleDuration(d time.Duration) RaceLookupOption {
	return func(rl *RaceLookup) {
		rl.staleDuration = d
	}
}

func NewRaceLookup(opts ...RaceLookupOption) *RaceLookup {
	ret := &RaceLookup{
		lookup: make(map[string]*RaceEntry),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (r *RaceLookup) AddRace(entry *RaceEntry) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.lookup[entry.Key]; ok {
		return
	}
	if entry.Started.IsZero() {
		entry.Started = time.Now()
	}
	r.lookup[entry.Key] = entry
}

func (r *RaceLookup) GetRace(key string) (*RaceEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if ret, ok := r.lookup[key]; ok {
		return ret, nil
	}
	return nil, ErrRaceNotFound
}

func (r *RaceLookup) RemoveRace(key string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.lookup, key)
}

func (r *RaceLookup) GetRaces() []*RaceEntry {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ret := make([]*RaceEntry, 0, len(r.lookup))
	for _, v := range r.lookup {
		ret = append(ret, v)
	}
	return ret
}

// RemoveStale drops races that started longer than the configured
// stale duration ago and returns the removed keys.
func (r *RaceLookup) RemoveStale() []string {
	if r.staleDuration == 0 {
		return nil
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	removed := make([]string, 0)
	for key, entry := range r.lookup {
		if time.Since(entry.Started) > r.staleDuration {
			delete(r.lookup, key)
			removed = append(removed, key)
		}
	}
	return removed
}

func (r *RaceLookup) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.lookup = make(map[string]*RaceEntry)
}
