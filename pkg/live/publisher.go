package live

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/processing/race"
)

// subjects:
//
//	raceday.race.<key>.phaseChanged
//	raceday.race.<key>.carReleased
//	raceday.race.<key>.lapCompleted
//	raceday.race.<key>.carFinished
//	raceday.race.<key>.standings
const SubjectPrefix = "raceday.race"

// SubjectHostRequest receives HostRequest messages; the reply carries
// the race key of the hosted race.
const SubjectHostRequest = "raceday.host"

// HostRequest asks the server to host a race.
type HostRequest struct {
	TrackName string           `json:"trackName"`
	Cars      []model.CarEntry `json:"cars"`
}

type HostResponse struct {
	RaceKey string `json:"raceKey"`
	Error   string `json:"error,omitempty"`
}

// Publisher pushes race events onto NATS subjects. Publish failures
// are logged and dropped; a broken live feed never stops a race.
type Publisher struct {
	nc      *nats.Conn
	raceKey string
}

func NewPublisher(nc *nats.Conn, raceKey string) *Publisher {
	return &Publisher{nc: nc, raceKey: raceKey}
}

// Run drains the engine event stream until it is closed.
func (p *Publisher) Run(events <-chan race.Event) {
	for ev := range events {
		p.PublishEvent(ev)
	}
}

func (p *Publisher) PublishEvent(ev race.Event) {
	p.publish(string(ev.Type), ev)
}

func (p *Publisher) PublishStandings(results []model.RaceResult) {
	p.publish("standings", results)
}

func (p *Publisher) publish(suffix string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error("marshaling live payload", log.ErrorField(err))
		return
	}
	subject := fmt.Sprintf("%s.%s.%s", SubjectPrefix, sanitizeToken(p.raceKey), suffix)
	if err := p.nc.Publish(subject, data); err != nil {
		log.Warn("publishing live payload",
			log.String("subject", subject), log.ErrorField(err))
	}
}

// nats tokens must not contain separators
func sanitizeToken(arg string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '*', '>':
			return '-'
		default:
			return r
		}
	}, arg)
}
