package drivers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargodesk/cargodesk/internal/config"
)

func TestNewFromConfig(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		cfg := config.StorageConfig{
			Type:         "local",
			LocalBaseDir: t.TempDir(),
		}
		driver, err := NewFromConfig(context.Background(), &cfg)
		require.NoError(t, err)
		assert.IsType(t, &LocalFSDriver{}, driver)
	})

	t.Run("unsupported type", func(t *testing.T) {
		cfg := config.StorageConfig{Type: "tape"}
		_, err := NewFromConfig(context.Background(), &cfg)
		assert.ErrorContains(t, err, "unsupported storage type")
	})
}
