package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/model"
)

var ErrTrackNotFound = errors.New("track not found in catalog")

// DefaultCarSpec is used when a referenced car is missing from the
// catalog: the game keeps going with hardcoded stats instead of failing.
var DefaultCarSpec = model.CarSpec{
	Name:         "Default",
	TopSpeed:     30,
	Acceleration: 10,
	Handling:     120,
	Description:  "fallback stats",
}

// Catalog holds the static car and track rosters loaded from YAML.
type Catalog struct {
	Cars   []model.CarSpec   `yaml:"cars"`
	Tracks []model.TrackSpec `yaml:"tracks"`
}

func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var ret Catalog
	if err := yaml.Unmarshal(raw, &ret); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &ret, nil
}

// Car resolves a car spec by name. Unknown names get the default spec
// (with the requested name kept) and a warning.
func (c *Catalog) Car(name string) model.CarSpec {
	for i := range c.Cars {
		if c.Cars[i].Name == name {
			return c.Cars[i]
		}
	}
	log.Warn("car not found in catalog, using default stats",
		log.String("car", name))
	ret := DefaultCarSpec
	ret.Name = name
	return ret
}

// Track resolves a track spec by name.
func (c *Catalog) Track(name string) (*model.TrackSpec, error) {
	for i := range c.Tracks {
		if c.Tracks[i].Name == name {
			return &c.Tracks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, name)
}
