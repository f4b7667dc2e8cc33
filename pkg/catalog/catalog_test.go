package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleYaml = []byte(`
cars:
  - name: Red Comet
    topSpeed: 34
    acceleration: 12
    handling: 140
    isPlayer: true
  - name: Blue Falcon
    topSpeed: 32
    acceleration: 11
    handling: 130
tracks:
  - name: Rectangle
    laps: 3
    finishLine: {x: 0, y: 0}
    finishTolerance: 5
    pieces:
      - {x: 0, y: 0}
      - {x: 10, y: 0}
      - {x: 10, y: 10}
      - {x: 0, y: 10}
`)

func TestParse(t *testing.T) {
	cat, err := Parse(sampleYaml)
	require.NoError(t, err)

	assert.Len(t, cat.Cars, 2)
	assert.Len(t, cat.Tracks, 1)

	spec := cat.Car("Red Comet")
	assert.InDelta(t, 34.0, spec.TopSpeed, 1e-9)
	assert.True(t, spec.IsPlayer)

	trackSpec, err := cat.Track("Rectangle")
	require.NoError(t, err)
	assert.Equal(t, 3, trackSpec.Laps)
	assert.Len(t, trackSpec.Pieces, 4)
	assert.InDelta(t, 5.0, trackSpec.FinishTolerance, 1e-9)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("cars: {not: [valid"))
	assert.Error(t, err)
}

func TestCarFallback(t *testing.T) {
	cat, err := Parse(sampleYaml)
	require.NoError(t, err)

	spec := cat.Car("Unknown Racer")
	assert.Equal(t, "Unknown Racer", spec.Name, "requested name is kept")
	assert.InDelta(t, DefaultCarSpec.TopSpeed, spec.TopSpeed, 1e-9)
	assert.InDelta(t, DefaultCarSpec.Handling, spec.Handling, 1e-9)
}

func TestTrackNotFound(t *testing.T) {
	cat, err := Parse(sampleYaml)
	require.NoError(t, err)

	_, err = cat.Track("Unknown Circuit")
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yml")
	assert.Error(t, err)
}
