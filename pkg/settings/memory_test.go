package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.PreferredStartPos(ctx)
	assert.ErrorIs(t, err, ErrNotSet)

	assert.NoError(t, store.SetPreferredStartPos(ctx, 3))
	pos, err := store.PreferredStartPos(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, pos)

	// updates overwrite
	assert.NoError(t, store.SetPreferredStartPos(ctx, 1))
	pos, _ = store.PreferredStartPos(ctx)
	assert.Equal(t, 1, pos)
}
