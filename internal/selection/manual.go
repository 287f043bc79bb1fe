package selection

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// NewManualTag turns free text into a synthetic tag with no translation and
// no category. Its id is a UUID v7, so ids sort by creation time.
// Returns types.ErrInvalidName for blank text.
func NewManualTag(text string) (types.Tag, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return types.Tag{}, types.ErrInvalidName
	}
	id, err := uuid.NewV7()
	if err != nil {
		return types.Tag{}, err
	}
	return types.Tag{ID: id.String(), Name: name}, nil
}
