package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/adapters/gridset"
	"github.com/aretw0/lattice/pkg/adapters/snap"
	"github.com/aretw0/lattice/pkg/registry"
)

func TestRegistry_ForPath(t *testing.T) {
	r := registry.NewRegistry(gridset.New(), snap.New())

	tests := []struct {
		path   string
		format string
	}{
		{"boards/core.gridset", gridset.Format},
		{"BOARDS/CORE.GRIDSET", gridset.Format},
		{"user.sps", snap.Format},
		{"backup.spb", snap.Format},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c, err := r.ForPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.format, c.Format())
			assert.True(t, r.CanProcess(tt.path))
		})
	}

	_, err := r.ForPath("notes.txt")
	assert.ErrorIs(t, err, registry.ErrNoConverter)
	assert.False(t, r.CanProcess("no-extension"))
}

func TestRegistry_ForFormat(t *testing.T) {
	r := registry.NewRegistry(gridset.New())
	r.Register(snap.New())

	c, err := r.ForFormat("SNAP")
	require.NoError(t, err)
	assert.Equal(t, snap.Format, c.Format())

	_, err = r.ForFormat("obf")
	assert.ErrorIs(t, err, registry.ErrNoConverter)

	assert.Equal(t, []string{gridset.Format, snap.Format}, r.Formats())
	assert.Equal(t, []string{".gridset", ".spb", ".sps"}, r.Extensions())
}
