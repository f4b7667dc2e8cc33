package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// DbRace is the persisted form of a finished race: track reference
// plus the finalized classification.
type DbRace struct {
	ID        uuid.UUID    `json:"id"`
	TrackName string       `json:"trackName"`
	Recorded  time.Time    `json:"recorded"`
	Results   []RaceResult `json:"results"`
}
