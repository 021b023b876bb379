package style

import (
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_InlineWinsOverNamed(t *testing.T) {
	table := NewTable(&domain.Style{FontFamily: "Arial", FontSize: 12})
	table.Add("Fruit", domain.Style{BackgroundColor: "#AA0000", FontColor: "#FFFFFF"})

	got, found, err := table.Resolve("Fruit", &domain.Style{BackgroundColor: "#00BB00"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, &domain.Style{
		BackgroundColor: "#00BB00",
		FontColor:       "#FFFFFF",
		FontFamily:      "Arial",
		FontSize:        12,
	}, got)
}

func TestResolve_UnknownKeyKeepsOtherLayers(t *testing.T) {
	table := NewTable(nil)
	got, found, err := table.Resolve("Missing", &domain.Style{BorderColor: "#000000"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "#000000", got.BorderColor)

	got, found, err = table.Resolve("", nil)
	require.NoError(t, err)
	assert.True(t, found, "no reference is not an unresolved reference")
	assert.Nil(t, got)
}

func TestInterner_DeduplicatesByContent(t *testing.T) {
	in := NewInterner("Style")
	red := &domain.Style{BackgroundColor: "#FF0000"}
	blue := &domain.Style{BackgroundColor: "#0000FF"}

	assert.Equal(t, "Style1", in.Key(red))
	assert.Equal(t, "Style2", in.Key(blue))
	assert.Equal(t, "Style1", in.Key(&domain.Style{BackgroundColor: "#FF0000"}))
	assert.Equal(t, "", in.Key(&domain.Style{}))
	assert.Equal(t, "", in.Key(nil))

	entries := in.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Style1", entries[0].Key)
	assert.Equal(t, *red, entries[0].Style)
}
