package ports

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractTree builds the board set used by RunConverterContract: two pages that
// navigate to each other, a spanning button and one button per simple intent.
func ContractTree() *domain.Tree {
	tree := domain.NewTree()
	tree.RootPageID = "home"
	tree.Description = "Contract board"

	home := domain.NewPage("home", "Home")
	food := domain.NewPage("food", "Food")

	place := func(p *domain.Page, b *domain.Button, pos domain.Position) {
		if err := p.AddButton(b); err != nil {
			panic(err)
		}
		if err := p.Place(b, pos); err != nil {
			panic(err)
		}
	}

	hello := domain.NewButton("hello", "Hello")
	hello.Action = domain.Speak("Hello")
	place(home, hello, domain.Position{X: 0, Y: 0})

	toFood := domain.NewButton("to-food", "Food")
	toFood.Action = domain.Navigate("food")
	place(home, toFood, domain.Position{X: 1, Y: 0})

	clear := domain.NewButton("clear", "Clear")
	clear.Action = domain.Simple(domain.IntentClear)
	place(home, clear, domain.Position{X: 0, Y: 1})

	word := domain.NewButton("word", "Delete word")
	word.Action = domain.Simple(domain.IntentDeleteWord)
	place(home, word, domain.Position{X: 1, Y: 1})

	apples := domain.NewButton("apples", "Apples")
	apples.Action = domain.Speak("Apples")
	place(food, apples, domain.Position{X: 0, Y: 0, ColumnSpan: 2, RowSpan: 1})

	back := domain.NewButton("back", "Back")
	back.Action = domain.Simple(domain.IntentGoBack)
	place(food, back, domain.Position{X: 0, Y: 1})

	toHome := domain.NewButton("to-home", "Home")
	toHome.Action = domain.Navigate("home")
	place(food, toHome, domain.Position{X: 1, Y: 1})

	_ = tree.AddPage(home)
	_ = tree.AddPage(food)
	return tree
}

// RunConverterContract runs a suite of tests to verify that a Converter
// implementation adheres to the defined interface contract.
func RunConverterContract(t *testing.T, conv Converter) {
	ctx := context.Background()
	require.NotEmpty(t, conv.Format(), "Format must not be empty")
	require.NotEmpty(t, conv.Extensions(), "Extensions must not be empty")
	ext := conv.Extensions()[0]

	dir := t.TempDir()
	source := filepath.Join(dir, "contract"+ext)
	require.NoError(t, conv.SaveFromTree(ctx, ContractTree(), source), "SaveFromTree should not return error")

	t.Run("Round Trip Identity", func(t *testing.T) {
		first, err := conv.LoadIntoTree(ctx, source, domain.DefaultImportOptions())
		require.NoError(t, err)
		require.Len(t, first.Pages, 2)
		require.NotNil(t, first.Root())
		assert.Equal(t, "Home", first.Root().Name)

		again := filepath.Join(dir, "again"+ext)
		require.NoError(t, conv.SaveFromTree(ctx, first, again))
		second, err := conv.LoadIntoTree(ctx, again, domain.DefaultImportOptions())
		require.NoError(t, err)

		diff := domain.Diff(first, second)
		assert.True(t, diff.IsEmpty(), "re-import should be identical, got %+v", diff)
	})

	t.Run("Navigation Resolves To Page Ids", func(t *testing.T) {
		tree, err := conv.LoadIntoTree(ctx, source, domain.DefaultImportOptions())
		require.NoError(t, err)

		b := findButton(tree.Root(), "Food")
		require.NotNil(t, b, "navigation button missing")
		require.True(t, b.Action.IsNavigation())
		target, err := tree.GetPage(b.Action.TargetPageID)
		require.NoError(t, err, "navigation target should resolve to a page id")
		assert.Equal(t, "Food", target.Name)
		assert.Equal(t, tree.Root().ID, target.ParentID)
	})

	t.Run("Intents Survive", func(t *testing.T) {
		tree, err := conv.LoadIntoTree(ctx, source, domain.DefaultImportOptions())
		require.NoError(t, err)
		want := map[string]domain.Intent{
			"Hello":       domain.IntentSpeak,
			"Clear":       domain.IntentClear,
			"Delete word": domain.IntentDeleteWord,
			"Back":        domain.IntentGoBack,
		}
		for _, p := range tree.OrderedPages() {
			for label, intent := range want {
				if b := findButton(p, label); b != nil {
					require.NotNil(t, b.Action, label)
					assert.Equal(t, intent, b.Action.Intent, label)
					delete(want, label)
				}
			}
		}
		assert.Empty(t, want, "buttons missing after import")
	})

	t.Run("Spanning Geometry", func(t *testing.T) {
		tree, err := conv.LoadIntoTree(ctx, source, domain.DefaultImportOptions())
		require.NoError(t, err)
		var food *domain.Page
		for _, p := range tree.OrderedPages() {
			if p.Name == "Food" {
				food = p
			}
		}
		require.NotNil(t, food)
		apples := findButton(food, "Apples")
		require.NotNil(t, apples)
		require.NotNil(t, food.Grid)
		assert.Equal(t, []domain.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, food.Grid.Occupied(apples.ID))
	})

	t.Run("Extract Texts", func(t *testing.T) {
		texts, err := conv.ExtractTexts(ctx, source)
		require.NoError(t, err)
		for _, s := range []string{"Home", "Hello", "Food", "Apples", "Back"} {
			assert.Contains(t, texts, s)
		}
	})

	t.Run("Process Texts", func(t *testing.T) {
		dest := filepath.Join(dir, "contract_fr"+ext)
		data, err := conv.ProcessTexts(ctx, source, map[string]string{
			"Apples":                 "Pommes",
			"Home":                   "Accueil",
			domain.TargetLanguageKey: "fr",
		}, dest)
		require.NoError(t, err)
		require.NotEmpty(t, data)

		onDisk, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, data, onDisk, "returned bytes must match the written file")

		texts, err := conv.ExtractTexts(ctx, dest)
		require.NoError(t, err)
		assert.Contains(t, texts, "Pommes")
		assert.Contains(t, texts, "Accueil")
		assert.NotContains(t, texts, "Apples")
		assert.NotContains(t, texts, domain.TargetLanguageKey)

		tree, err := conv.LoadIntoTree(ctx, dest, domain.DefaultImportOptions())
		require.NoError(t, err)
		assert.Len(t, tree.Pages, 2)
	})

	t.Run("Missing Source Is IO Error", func(t *testing.T) {
		_, err := conv.LoadIntoTree(ctx, filepath.Join(dir, "missing"+ext), domain.DefaultImportOptions())
		require.Error(t, err)
		assert.Equal(t, domain.KindIO, domain.KindOf(err))
	})

	t.Run("Garbage Source Is Rejected", func(t *testing.T) {
		garbage := filepath.Join(dir, "garbage"+ext)
		require.NoError(t, os.WriteFile(garbage, []byte("this is not a board file at all"), 0644))
		tree, err := conv.LoadIntoTree(ctx, garbage, domain.DefaultImportOptions())
		require.Error(t, err, "garbage must not load as an empty tree")
		assert.Nil(t, tree)
		kind := domain.KindOf(err)
		assert.Contains(t, []domain.ErrorKind{domain.KindCorruption, domain.KindStructural}, kind)
	})

	t.Run("Failed Save Leaves No Destination", func(t *testing.T) {
		dest := filepath.Join(dir, "no-such-dir", "out"+ext)
		err := conv.SaveFromTree(ctx, ContractTree(), dest)
		require.Error(t, err)
		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func findButton(p *domain.Page, label string) *domain.Button {
	if p == nil {
		return nil
	}
	for _, b := range p.Buttons {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// RunTranslationStoreContract runs a suite of tests to verify that a
// TranslationStore implementation adheres to the defined interface contract.
func RunTranslationStoreContract(t *testing.T, store TranslationStore) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, "fr", map[string]string{"Hello": "Bonjour", "Food": "Nourriture"})
		require.NoError(t, err, "Save should not return error")

		table, err := store.Load(ctx, "fr")
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Bonjour", table["Hello"])
		assert.Equal(t, "Nourriture", table["Food"])
	})

	t.Run("Save Merges", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "es", map[string]string{"Hello": "Hola", "Food": "Comida"}))
		require.NoError(t, store.Save(ctx, "es", map[string]string{"Hello": "¡Hola!"}))

		table, err := store.Load(ctx, "es")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Hello": "¡Hola!", "Food": "Comida"}, table)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "xx-unknown")
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("Languages", func(t *testing.T) {
		langs, err := store.Languages(ctx)
		require.NoError(t, err)
		sort.Strings(langs)
		assert.Contains(t, langs, "fr")
		assert.Contains(t, langs, "es")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "de", map[string]string{"Hello": "Hallo"}))
		require.NoError(t, store.Delete(ctx, "de"), "Delete should not return error")

		_, err := store.Load(ctx, "de")
		assert.ErrorIs(t, err, ErrTableNotFound, "Load after Delete should return ErrTableNotFound")
		assert.NoError(t, store.Delete(ctx, "de"), "deleting twice is not an error")
	})
}
