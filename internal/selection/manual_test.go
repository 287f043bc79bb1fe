package selection

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

func TestNewManualTag(t *testing.T) {
	tag, err := NewManualTag("  soft lighting ")
	require.NoError(t, err)

	assert.Equal(t, "soft lighting", tag.Name)
	assert.True(t, tag.IsManual())
	assert.Empty(t, tag.Translation)

	id, err := uuid.Parse(tag.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	next, err := NewManualTag("rim light")
	require.NoError(t, err)
	assert.NotEqual(t, tag.ID, next.ID)

	_, err = NewManualTag("   ")
	assert.ErrorIs(t, err, types.ErrInvalidName)
}
