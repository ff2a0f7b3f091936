package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreate(t *testing.T) {
	t.Run("assigns an ID when unset", func(t *testing.T) {
		var base BaseModel
		require.NoError(t, base.BeforeCreate(nil))
		assert.NotEqual(t, uuid.Nil, base.ID)
	})

	t.Run("keeps a pre-assigned ID", func(t *testing.T) {
		id := uuid.New()
		base := BaseModel{ID: id}
		require.NoError(t, base.BeforeCreate(nil))
		assert.Equal(t, id, base.ID)
	})
}
