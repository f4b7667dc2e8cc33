package settings

import (
	"context"
	"errors"
)

// the menu flow persists a single integer: the player's preferred
// start position for the staggered start sequence
const KeyPreferredStartPos = "preferred-start-pos"

var ErrNotSet = errors.New("setting not set")

// Store is the key-value settings store used by the menu flow.
type Store interface {
	PreferredStartPos(ctx context.Context) (int, error)
	SetPreferredStartPos(ctx context.Context, pos int) error
}
