package snap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

func TestConverter_Contract(t *testing.T) {
	ports.RunConverterContract(t, New(WithScratchDir(t.TempDir())))
}

func TestLoad_LegacySchema(t *testing.T) {
	stmts := append(append([]string(nil), legacySchema...),
		`INSERT INTO Page (Id, Title) VALUES (1, 'Home'), (2, 'Drinks')`,
		`INSERT INTO ElementReference (Id, PageId, BackgroundColor) VALUES (10, 1, -16776961), (11, 1, NULL), (12, 2, NULL)`,
		`INSERT INTO ElementPlacement (ElementReferenceId, GridPosition, GridSpan) VALUES (10, '0,0', '2,1'), (11, '1,1', NULL), (12, '0,0', '1,1')`,
		`INSERT INTO Button (Id, Label, Message, ElementReferenceId, NavigatePageId) VALUES
			(100, 'Drinks', NULL, 10, 2),
			(101, 'Hi', 'Hello there', 11, NULL),
			(102, 'Home', NULL, 12, 1)`,
	)
	src := writeDatabase(t, "legacy.sps", stmts...)

	tree, err := New().LoadIntoTree(context.Background(), src, domain.DefaultImportOptions())
	require.NoError(t, err)
	require.Len(t, tree.Pages, 2)

	home, err := tree.GetPage("1")
	require.NoError(t, err)
	assert.Equal(t, "Home", home.Name)
	require.Len(t, home.Buttons, 2)

	drinks := home.Buttons[0]
	assert.Equal(t, "100", drinks.ID)
	assert.Equal(t, "Drinks", drinks.Message, "message defaults to the label")
	require.True(t, drinks.Action.IsNavigation())
	assert.Equal(t, "2", drinks.Action.TargetPageID)
	assert.Equal(t, "#0000FF", drinks.Style.BackgroundColor)
	assert.Equal(t, []domain.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, home.Grid.Occupied("100"))

	hi := home.Buttons[1]
	assert.Equal(t, "Hello there", hi.Message)
	assert.Nil(t, hi.Action)
	assert.Nil(t, hi.Audio)

	sub, err := tree.GetPage("2")
	require.NoError(t, err)
	assert.Equal(t, "1", sub.ParentID)
	assert.Equal(t, "1", sub.Buttons[0].Action.TargetPageID)
	assert.Equal(t, "1", tree.Root().ID, "without properties the first page is the root")
}

func TestLoad_SkipsBadPlacements(t *testing.T) {
	stmts := append(append([]string(nil), legacySchema...),
		`INSERT INTO Page (Id, Title) VALUES (1, 'Home')`,
		`INSERT INTO ElementReference (Id, PageId) VALUES (10, 1), (11, 1), (12, 1)`,
		`INSERT INTO ElementPlacement (ElementReferenceId, GridPosition) VALUES (10, '0,0'), (11, 'nowhere'), (12, '0,0')`,
		`INSERT INTO Button (Id, Label, ElementReferenceId) VALUES (100, 'A', 10), (101, 'B', 11), (102, 'C', 12)`,
	)
	src := writeDatabase(t, "bad.sps", stmts...)

	var skipped int
	hooks := domain.Hooks{OnPage: func(_ context.Context, e *domain.PageEvent) { skipped += e.Skipped }}
	tree, err := New(WithHooks(hooks)).LoadIntoTree(context.Background(), src, domain.ImportOptions{})
	require.NoError(t, err)

	home, err := tree.GetPage("1")
	require.NoError(t, err)
	require.Len(t, home.Buttons, 1)
	assert.Equal(t, "100", home.Buttons[0].ID)
	assert.Equal(t, 2, skipped, "an unparsable position and a cell conflict")
}

func TestLoad_MissingTableIsStructural(t *testing.T) {
	src := writeDatabase(t, "partial.sps", `CREATE TABLE Page (Id INTEGER PRIMARY KEY, Title TEXT)`)

	_, err := New().LoadIntoTree(context.Background(), src, domain.ImportOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.KindStructural, domain.KindOf(err))
	assert.Contains(t, err.Error(), "ElementReference")
}

func TestLoad_CorruptDatabase(t *testing.T) {
	header := append([]byte("SQLite format 3\x00"), make([]byte, 4080)...)
	for i := 16; i < len(header); i++ {
		header[i] = byte(i * 7)
	}

	t.Run("Bare", func(t *testing.T) {
		src := writeFile(t, "broken.sps", header)
		tree, err := New().LoadIntoTree(context.Background(), src, domain.ImportOptions{})
		require.Error(t, err)
		assert.Nil(t, tree)
		assert.Equal(t, domain.KindCorruption, domain.KindOf(err))
	})

	t.Run("Zipped", func(t *testing.T) {
		w := archive.NewWriter()
		require.NoError(t, w.Add("pageset.db", []byte(strings.Repeat("not a database ", 64))))
		data, err := w.Bytes()
		require.NoError(t, err)
		src := writeFile(t, "broken.spb", data)

		_, err = New(WithScratchDir(t.TempDir())).LoadIntoTree(context.Background(), src, domain.ImportOptions{})
		require.Error(t, err)
		assert.Equal(t, domain.KindCorruption, domain.KindOf(err))
	})
}

func TestLoad_ReleasesScratch(t *testing.T) {
	scratch := t.TempDir()
	conv := New(WithScratchDir(scratch))
	ctx := context.Background()

	out := filepath.Join(t.TempDir(), "board.sps")
	require.NoError(t, conv.SaveFromTree(ctx, ports.ContractTree(), out))
	_, err := conv.LoadIntoTree(ctx, out, domain.DefaultImportOptions())
	require.NoError(t, err)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_DeduplicatesAudio(t *testing.T) {
	ctx := context.Background()
	clip := []byte("RIFF....WAVEfmt fake audio payload")

	tree := domain.NewTree()
	page := domain.NewPage("home", "Home")
	for _, id := range []string{"yes", "yeah"} {
		b := domain.NewButton(id, id)
		b.Action = domain.Speak("")
		b.Audio = domain.NewAudioRecording(clip, map[string]string{domain.AudioMetaProvenance: "recorded"})
		require.NoError(t, page.AddButton(b))
	}
	require.NoError(t, tree.AddPage(page))

	var events []*domain.AudioEvent
	hooks := domain.Hooks{OnAudio: func(_ context.Context, e *domain.AudioEvent) { events = append(events, e) }}
	conv := New(WithHooks(hooks), WithScratchDir(t.TempDir()))

	out := filepath.Join(t.TempDir(), "audio.sps")
	require.NoError(t, conv.SaveFromTree(ctx, tree, out))

	require.Len(t, events, 2)
	assert.False(t, events[0].Deduplicated)
	assert.True(t, events[1].Deduplicated)
	assert.Equal(t, domain.AudioContentID(clip), events[0].ContentID)

	db := openSaved(t, out)
	var rows, refs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), SUM(RefCount) FROM PageSetData`).Scan(&rows, &refs))
	assert.Equal(t, 1, rows)
	assert.Equal(t, 2, refs)

	loaded, err := conv.LoadIntoTree(ctx, out, domain.DefaultImportOptions())
	require.NoError(t, err)
	home, err := loaded.GetPage("home")
	require.NoError(t, err)
	for _, b := range home.Buttons {
		require.NotNil(t, b.Audio, b.ID)
		assert.True(t, bytes.Equal(clip, b.Audio.Data))
		assert.Equal(t, domain.AudioContentID(clip), b.Audio.ID)
		assert.Equal(t, "recorded", b.Audio.Metadata[domain.AudioMetaProvenance])
	}

	withoutAudio, err := conv.LoadIntoTree(ctx, out, domain.ImportOptions{})
	require.NoError(t, err)
	assert.Nil(t, withoutAudio.Pages["home"].Buttons[0].Audio)
}

func TestSave_ImagesAndStyles(t *testing.T) {
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n fake image")

	tree := domain.NewTree()
	page := domain.NewPage("home", "Home")
	page.Style = &domain.Style{BackgroundColor: "#FFFFFF"}
	b := domain.NewButton("cat", "Cat")
	b.Image = &domain.Image{Name: "cat.png", Data: png}
	b.Style = &domain.Style{BackgroundColor: "#FF0000", FontColor: "#00000080", FontFamily: "Arial", FontSize: 14}
	require.NoError(t, page.AddButton(b))
	require.NoError(t, tree.AddPage(page))

	conv := New(WithScratchDir(t.TempDir()))
	out := filepath.Join(t.TempDir(), "styled.sps")
	require.NoError(t, conv.SaveFromTree(ctx, tree, out))

	loaded, err := conv.LoadIntoTree(ctx, out, domain.DefaultImportOptions())
	require.NoError(t, err)
	home := loaded.Pages["home"]
	assert.Equal(t, "#FFFFFF", home.Style.BackgroundColor)

	cat := home.Buttons[0]
	assert.Equal(t, *b.Style, *cat.Style)
	require.NotNil(t, cat.Image)
	assert.Equal(t, png, cat.Image.Data)
	assert.Equal(t, ImageContentID(png), cat.Image.Name)
	assert.Equal(t, "image/png", cat.Image.MIME)
}

func TestSave_DanglingAndUnknownActions(t *testing.T) {
	ctx := context.Background()
	tree := domain.NewTree()
	page := domain.NewPage("home", "Home")

	lost := domain.NewButton("lost", "Lost")
	lost.Action = domain.Navigate("nowhere")
	blink := domain.NewButton("blink", "Blink")
	blink.Action = domain.Custom(Format, domain.PlatformCommand{
		ID:     "Vendor.Blink",
		Params: []domain.Param{{Key: "times", Value: "3"}},
	})
	foreign := domain.NewButton("foreign", "Foreign")
	foreign.Action = domain.Custom("gridset", domain.PlatformCommand{ID: "Settings.Volume"})
	foreign.Action.Fallback = domain.Simple(domain.IntentClear)
	for _, b := range []*domain.Button{lost, blink, foreign} {
		require.NoError(t, page.AddButton(b))
	}
	require.NoError(t, tree.AddPage(page))

	conv := New(WithScratchDir(t.TempDir()))
	out := filepath.Join(t.TempDir(), "actions.sps")
	require.NoError(t, conv.SaveFromTree(ctx, tree, out))

	loaded, err := conv.LoadIntoTree(ctx, out, domain.DefaultImportOptions())
	require.NoError(t, err)
	home := loaded.Pages["home"]

	got, _ := home.Button("lost")
	require.True(t, got.Action.IsNavigation())
	assert.Equal(t, "nowhere", got.Action.TargetPageID)

	got, _ = home.Button("blink")
	assert.Equal(t, domain.IntentPlatformSpecific, got.Action.Intent)
	assert.Equal(t, blink.Action.Commands(Format), got.Action.Commands(Format))

	got, _ = home.Button("foreign")
	assert.Equal(t, domain.IntentClear, got.Action.Intent)
}

func TestSave_DanglingTargetIsNotARowID(t *testing.T) {
	ctx := context.Background()
	tree := domain.NewTree()
	tree.RootPageID = "10"
	for _, id := range []string{"10", "20", "30"} {
		require.NoError(t, tree.AddPage(domain.NewPage(id, "Page "+id)))
	}
	jump := domain.NewButton("jump", "Jump")
	jump.Action = domain.Navigate("2")
	require.NoError(t, tree.Pages["10"].AddButton(jump))

	conv := New(WithScratchDir(t.TempDir()))
	out := filepath.Join(t.TempDir(), "rows.sps")
	require.NoError(t, conv.SaveFromTree(ctx, tree, out))

	loaded, err := conv.LoadIntoTree(ctx, out, domain.DefaultImportOptions())
	require.NoError(t, err)
	got, ok := loaded.Pages["10"].Button("jump")
	require.True(t, ok)
	require.True(t, got.Action.IsNavigation())
	assert.Equal(t, "2", got.Action.TargetPageID)
	assert.False(t, loaded.HasPage(got.Action.TargetPageID))

	again := filepath.Join(t.TempDir(), "again.sps")
	require.NoError(t, conv.SaveFromTree(ctx, loaded, again))
	reloaded, err := conv.LoadIntoTree(ctx, again, domain.DefaultImportOptions())
	require.NoError(t, err)
	assert.True(t, domain.Diff(loaded, reloaded).IsEmpty())
	got, _ = reloaded.Pages["10"].Button("jump")
	assert.Equal(t, "2", got.Action.TargetPageID)
}

func TestProcessTexts_SetsLanguage(t *testing.T) {
	ctx := context.Background()
	conv := New(WithScratchDir(t.TempDir()))
	src := filepath.Join(t.TempDir(), "board.sps")
	require.NoError(t, conv.SaveFromTree(ctx, ports.ContractTree(), src))

	dest := filepath.Join(t.TempDir(), "board_fr.sps")
	_, err := conv.ProcessTexts(ctx, src, map[string]string{"Hello": "Bonjour", domain.TargetLanguageKey: "fr"}, dest)
	require.NoError(t, err)

	tree, err := conv.LoadIntoTree(ctx, dest, domain.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fr", tree.Language)
	hello, _ := tree.Pages["home"].Button("hello")
	assert.Equal(t, "Bonjour", hello.Label)
	assert.Equal(t, "Bonjour", hello.Action.Text)
}
