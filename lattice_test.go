package lattice_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/gridset"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
)

func TestDefaultTranslatedPath(t *testing.T) {
	tests := []struct {
		source string
		lang   string
		want   string
	}{
		{"core.gridset", "fr", "core_fr.gridset"},
		{filepath.Join("boards", "core_en.gridset"), "de", filepath.Join("boards", "core_de.gridset")},
		{"core_en-GB.sps", "es", "core_es.sps"},
		{"core_vocabulary.gridset", "fr", "core_vocabulary_fr.gridset"},
		{"core.gridset", "", "core_unknown.gridset"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, lattice.DefaultTranslatedPath(tt.source, tt.lang))
		})
	}
}

func TestEngine_ConvertAcrossFormats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	eng := lattice.New(lattice.WithScratchDir(t.TempDir()))

	original := filepath.Join(dir, "board.gridset")
	require.NoError(t, eng.SaveFromTree(ctx, ports.ContractTree(), original))

	viaSnap := filepath.Join(dir, "board.sps")
	first, err := eng.Convert(ctx, original, viaSnap, domain.DefaultImportOptions())
	require.NoError(t, err)

	back := filepath.Join(dir, "board-again.gridset")
	_, err = eng.Convert(ctx, viaSnap, back, domain.DefaultImportOptions())
	require.NoError(t, err)

	final, err := eng.LoadIntoTree(ctx, back, domain.DefaultImportOptions())
	require.NoError(t, err)

	diff := domain.Diff(first, final)
	assert.True(t, diff.IsEmpty(), "gridset -> snap -> gridset should be lossless, got %+v", diff)

	food := final.Pages["food"]
	require.NotNil(t, food)
	var apples *domain.Button
	for _, b := range food.Buttons {
		if b.Label == "Apples" {
			apples = b
		}
	}
	require.NotNil(t, apples)
	assert.Equal(t, []domain.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, food.Grid.Occupied(apples.ID))
}

func TestEngine_ProcessTextsDefaultDestination(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	var ops []string
	hooks := domain.Hooks{OnConversion: func(_ context.Context, e *domain.ConversionEvent) { ops = append(ops, e.Op) }}
	eng := lattice.New(lattice.WithHooks(hooks))

	src := filepath.Join(dir, "board_en.gridset")
	require.NoError(t, eng.SaveFromTree(ctx, ports.ContractTree(), src))

	dest, data, err := eng.ProcessTexts(ctx, src, map[string]string{"Hello": "Hola", domain.TargetLanguageKey: "es"}, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "board_es.gridset"), dest)

	onDisk, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	texts, err := eng.ExtractTexts(ctx, dest)
	require.NoError(t, err)
	assert.Contains(t, texts, "Hola")
	assert.Equal(t, []string{domain.OpSave, domain.OpProcess, domain.OpExtract}, ops)
}

func TestEngine_UnknownExtension(t *testing.T) {
	ctx := context.Background()
	eng := lattice.New()

	_, err := eng.LoadIntoTree(ctx, "notes.txt", domain.DefaultImportOptions())
	assert.ErrorIs(t, err, registry.ErrNoConverter)
	assert.False(t, eng.CanProcess("notes.txt"))
	assert.True(t, eng.CanProcess("core.gridset"))
}

func TestEngine_WithRegistry(t *testing.T) {
	eng := lattice.New(lattice.WithRegistry(registry.NewRegistry(gridset.New())))
	assert.Equal(t, []string{gridset.Format}, eng.Registry().Formats())
	assert.False(t, eng.CanProcess("user.sps"))
}
