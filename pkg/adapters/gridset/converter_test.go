package gridset

import (
	"context"
	"errors"
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
	ports.RunConverterContract(t, New())
}

func TestLoad_FoodScenario(t *testing.T) {
	ctx := context.Background()
	src := writeGridset(t, map[string]string{
		"Grids/Food/grid.xml":    foodGrid,
		"Grids/Fruits/grid.xml":  fruitsGrid,
		"Settings0/settings.xml": settingsFile,
	})

	conv := New()
	tree, err := conv.LoadIntoTree(ctx, src, domain.DefaultImportOptions())
	require.NoError(t, err)

	assert.Equal(t, "food-guid", tree.RootPageID)
	assert.Equal(t, "Snack board", tree.Description)
	assert.Equal(t, "en-GB", tree.Language)

	food, err := tree.GetPage("food-guid")
	require.NoError(t, err)
	require.Len(t, food.Buttons, 1)

	apples := food.Buttons[0]
	assert.Equal(t, "Apples", apples.Label)
	assert.Equal(t, "food-guid_button_2_1", apples.ID)
	require.True(t, apples.Action.IsNavigation())
	assert.Equal(t, "fruits-guid", apples.Action.TargetPageID)
	assert.Equal(t, []domain.Point{{X: 2, Y: 1}, {X: 3, Y: 1}}, food.Grid.Occupied(apples.ID))

	fruits, err := tree.GetPage("fruits-guid")
	require.NoError(t, err)
	assert.Equal(t, "Fruits", fruits.Name)
	assert.Equal(t, "food-guid", fruits.ParentID)
	require.Len(t, fruits.Buttons, 1)
	assert.Equal(t, domain.IntentGoBack, fruits.Buttons[0].Action.Intent)
	assert.Equal(t, "fruits-guid_button_0_0", fruits.Buttons[0].ID, "missing X/Y mean the first cell")

	out := filepath.Join(t.TempDir(), "out.gridset")
	require.NoError(t, conv.SaveFromTree(ctx, tree, out))

	doc := readGrid(t, out, "Grids/food/grid.xml")
	assert.Equal(t, "Food", doc.name())
	assert.Equal(t, "food-guid", doc.guid())
	require.Len(t, doc.Cells, 1)
	cell := doc.Cells[0]
	assert.Equal(t, "2", cell.X)
	assert.Equal(t, "1", cell.Y)
	assert.Equal(t, "2", cell.ColumnSpan)
	require.Len(t, cell.Content.Commands, 1)
	assert.Equal(t, "Jump.To", cell.Content.Commands[0].ID)
	assert.Equal(t, []paramXML{{Key: "grid", Inner: "Fruits"}}, cell.Content.Commands[0].Params)
	assert.Len(t, doc.Columns, 4)
	assert.Len(t, doc.Rows, 2)
}

func TestLoad_StylePrecedence(t *testing.T) {
	src := writeGridset(t, map[string]string{
		"Grids/Home/grid.xml": `<Grid Name="Home" GridGuid="home">
  <Cells>
    <Cell X="0" Y="0">
      <Content>
        <CaptionAndImage><Caption>Hi</Caption></CaptionAndImage>
        <Style><BasedOnStyle>Greeting</BasedOnStyle><BackColour>#00BB00FF</BackColour></Style>
      </Content>
    </Cell>
    <Cell X="1" Y="0">
      <Style><BasedOnStyle>Missing</BasedOnStyle></Style>
      <Content><CaptionAndImage><Caption>Bye</Caption></CaptionAndImage></Content>
    </Cell>
  </Cells>
</Grid>`,
		"Settings0/Styles/styles.xml": `<StyleData><Styles>
  <Style Key="Greeting"><BackColour>#AA0000FF</BackColour><FontColour>#FFFFFFFF</FontColour><FontSize>18</FontSize></Style>
</Styles></StyleData>`,
	})

	tree, err := New().LoadIntoTree(context.Background(), src, domain.DefaultImportOptions())
	require.NoError(t, err)
	home, _ := tree.GetPage("home")

	hi, ok := home.Button("home_button_0_0")
	require.True(t, ok)
	assert.Equal(t, &domain.Style{BackgroundColor: "#00BB00", FontColor: "#FFFFFF", FontSize: 18}, hi.Style)

	bye, ok := home.Button("home_button_1_0")
	require.True(t, ok)
	assert.Nil(t, bye.Style, "unresolved style reference is tolerated")

	// Equal styles are written once.
	out := filepath.Join(t.TempDir(), "out.gridset")
	hi2 := domain.NewButton("hi2", "Hi again")
	hi2.Style = &domain.Style{BackgroundColor: "#00BB00", FontColor: "#FFFFFF", FontSize: 18}
	require.NoError(t, home.AddButton(hi2))
	require.NoError(t, New().SaveFromTree(context.Background(), tree, out))

	ar, err := archive.Open(out)
	require.NoError(t, err)
	defer ar.Close()
	styles, err := ar.ReadFile(stylesEntry)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(styles), "<Style Key="))
	assert.Contains(t, string(styles), "#00BB00FF")
}

func TestUnknownCommandRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := writeGridset(t, map[string]string{
		"Grids/Home/grid.xml": `<Grid Name="Home" GridGuid="home"><Cells>
  <Cell X="0" Y="0"><Content>
    <Commands>
      <Command ID="Vendor.Blink"><Parameter Key="times">3</Parameter><Parameter Key="colour">red &amp; blue</Parameter></Command>
    </Commands>
    <CaptionAndImage><Caption>Blink</Caption></CaptionAndImage>
  </Content></Cell>
</Cells></Grid>`,
	})

	conv := New()
	tree, err := conv.LoadIntoTree(ctx, src, domain.DefaultImportOptions())
	require.NoError(t, err)
	b := tree.Pages["home"].Buttons[0]
	assert.Equal(t, domain.IntentPlatformSpecific, b.Action.Intent)
	assert.Equal(t, domain.CategoryCustom, b.Action.Category())

	out := filepath.Join(t.TempDir(), "out.gridset")
	require.NoError(t, conv.SaveFromTree(ctx, tree, out))
	doc := readGrid(t, out, "Grids/home/grid.xml")
	require.Len(t, doc.Cells, 1)
	assert.Equal(t, []commandXML{{
		ID: "Vendor.Blink",
		Params: []paramXML{
			{Key: "times", Inner: "3"},
			{Key: "colour", Inner: "red &amp; blue"},
		},
	}}, doc.Cells[0].Content.Commands)
}

func TestLoad_AutoContentAndWordList(t *testing.T) {
	ctx := context.Background()
	src := writeGridset(t, map[string]string{
		"Grids/Home/grid.xml": `<Grid Name="Home" GridGuid="home"><Cells>
  <Cell X="0" Y="0"><Content><ContentType>AutoContent</ContentType><ContentSubType>Prediction</ContentSubType></Content></Cell>
  <Cell X="1" Y="0"><Content><ContentType>AutoContent</ContentType><ContentSubType>Prediction</ContentSubType></Content></Cell>
  <Cell X="2" Y="0"><Content><CaptionAndImage><Image>blank.png</Image></CaptionAndImage></Content></Cell>
  <Cell X="3" Y="0"/>
</Cells>
<WordList><Items>
  <WordListItem><Text><p><s><r>good</r></s><s><r><![CDATA[ ]]></r></s><s><r>morning</r></s></p></Text></WordListItem>
  <WordListItem><Text><p><s><r>night</r></s></p></Text></WordListItem>
</Items></WordList>
</Grid>`,
	})

	conv := New()
	tree, err := conv.LoadIntoTree(ctx, src, domain.DefaultImportOptions())
	require.NoError(t, err)
	home := tree.Pages["home"]

	var labels []string
	for _, b := range home.Buttons {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"Prediction 1", "Prediction 2", "good morning", "night"}, labels)
	assert.True(t, home.Buttons[0].HasSyntheticLabel())
	assert.Equal(t, "home_word_0", home.Buttons[2].ID)
	assert.Equal(t, "true", home.Buttons[2].Meta(MetaWordList))
	assert.Nil(t, home.Buttons[2].Position)

	texts, err := conv.ExtractTexts(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "good morning", "night"}, texts)

	out := filepath.Join(t.TempDir(), "out.gridset")
	require.NoError(t, conv.SaveFromTree(ctx, tree, out))
	doc := readGrid(t, out, "Grids/home/grid.xml")
	assert.Len(t, doc.Cells, 2, "word list items are not written as cells")
	require.NotNil(t, doc.WordList)
	require.Len(t, doc.WordList.Items, 2)
	assert.Equal(t, "good morning", plainText(doc.WordList.Items[0].Text.Inner))
	assert.Nil(t, doc.Cells[0].Content.CaptionAndImage)
	assert.Equal(t, contentTypeAuto, doc.Cells[0].Content.ContentType)
}

func TestLoad_SchemaProblemsAreSkipped(t *testing.T) {
	src := writeGridset(t, map[string]string{
		"Grids/Home/grid.xml": `<Grid Name="Home" GridGuid="home"><Cells>
  <Cell X="abc" Y="0"><Content><CaptionAndImage><Caption>Broken</Caption></CaptionAndImage></Content></Cell>
  <Cell X="0" Y="0" ColumnSpan="2"><Content><CaptionAndImage><Caption>Wide</Caption></CaptionAndImage></Content></Cell>
  <Cell X="1" Y="0"><Content><CaptionAndImage><Caption>Overlap</Caption></CaptionAndImage></Content></Cell>
  <Cell X="0" Y="1"><Content><CaptionAndImage><Caption>Fine</Caption></CaptionAndImage></Content></Cell>
  <Cell X="-1" Y="1"><Content><CaptionAndImage><Caption>Negative</Caption></CaptionAndImage></Content></Cell>
</Cells></Grid>`,
		"Grids/Broken/grid.xml": `<Grid><Cells><Cell`,
	})

	var skipped int
	conv := New(WithHooks(domain.Hooks{
		OnPage: func(_ context.Context, e *domain.PageEvent) { skipped += e.Skipped },
	}))
	tree, err := conv.LoadIntoTree(context.Background(), src, domain.DefaultImportOptions())
	require.NoError(t, err)
	require.Len(t, tree.Pages, 1, "unparseable grid is skipped")

	var labels []string
	for _, b := range tree.Pages["home"].Buttons {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"Wide", "Fine"}, labels)
	assert.Equal(t, 3, skipped)
}

func TestLoad_OmittedCoordinatesAreZero(t *testing.T) {
	ctx := context.Background()
	src := writeGridset(t, map[string]string{
		"Grids/Home/grid.xml": `<Grid Name="Home" GridGuid="home"><Cells>
  <Cell><Content><CaptionAndImage><Caption>First</Caption></CaptionAndImage></Content></Cell>
  <Cell X="1"><Content><CaptionAndImage><Caption>Second</Caption></CaptionAndImage></Content></Cell>
  <Cell Y="1"><Content><CaptionAndImage><Caption>Below</Caption></CaptionAndImage></Content></Cell>
</Cells></Grid>`,
	})

	conv := New()
	tree, err := conv.LoadIntoTree(ctx, src, domain.DefaultImportOptions())
	require.NoError(t, err)
	home := tree.Pages["home"]
	require.Len(t, home.Buttons, 3)
	assert.Equal(t, []domain.Point{{X: 0, Y: 0}}, home.Grid.Occupied("home_button_0_0"))
	assert.Equal(t, []domain.Point{{X: 1, Y: 0}}, home.Grid.Occupied("home_button_1_0"))
	assert.Equal(t, []domain.Point{{X: 0, Y: 1}}, home.Grid.Occupied("home_button_0_1"))

	out := filepath.Join(t.TempDir(), "out.gridset")
	require.NoError(t, conv.SaveFromTree(ctx, tree, out))
	doc := readGrid(t, out, "Grids/home/grid.xml")
	var coords []string
	for _, c := range doc.Cells {
		coords = append(coords, c.X+","+c.Y)
	}
	assert.ElementsMatch(t, []string{"0,0", "1,0", "0,1"}, coords)
}

func TestLoad_ClassifiedErrors(t *testing.T) {
	ctx := context.Background()

	noGrids := writeGridset(t, map[string]string{"Settings0/settings.xml": settingsFile})
	_, err := New().LoadIntoTree(ctx, noGrids, domain.DefaultImportOptions())
	assert.True(t, errors.Is(err, domain.ErrStructural), "got %v", err)

	garbage := filepath.Join(t.TempDir(), "garbage.gridset")
	require.NoError(t, os.WriteFile(garbage, []byte("PK but not really"), 0644))
	_, err = New().LoadIntoTree(ctx, garbage, domain.DefaultImportOptions())
	assert.True(t, errors.Is(err, domain.ErrCorrupt), "got %v", err)

	_, err = New().ExtractTexts(ctx, filepath.Join(t.TempDir(), "missing.gridset"))
	assert.True(t, errors.Is(err, domain.ErrIO), "got %v", err)

	err = New().SaveFromTree(ctx, domain.NewTree(), filepath.Join(t.TempDir(), "empty.gridset"))
	assert.True(t, errors.Is(err, domain.ErrStructural), "got %v", err)
}

func TestProcessTexts_SettingsAndLanguage(t *testing.T) {
	ctx := context.Background()
	src := writeGridset(t, map[string]string{
		"Grids/Food/grid.xml":    foodGrid,
		"Grids/Fruits/grid.xml":  fruitsGrid,
		"Settings0/settings.xml": settingsFile,
	})

	var events []*domain.ConversionEvent
	conv := New(WithHooks(domain.Hooks{
		OnConversion: func(_ context.Context, e *domain.ConversionEvent) { events = append(events, e) },
	}))

	texts, err := conv.ExtractTexts(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, "Snack board", texts[0], "description comes first")

	dest := filepath.Join(t.TempDir(), "out_fr.gridset")
	_, err = conv.ProcessTexts(ctx, src, map[string]string{
		"Snack board": "Tableau de collations",
		"Fruits":      "Fruits!",
		"Apples":      "Pommes",
		"target_lang": "fr",
	}, dest)
	require.NoError(t, err)

	tree, err := conv.LoadIntoTree(ctx, dest, domain.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fr-FR", tree.Language)
	assert.Equal(t, "Tableau de collations", tree.Description)

	food, _ := tree.GetPage("food-guid")
	apples := food.Buttons[0]
	assert.Equal(t, "Pommes", apples.Label)
	assert.Equal(t, "fruits-guid", apples.Action.TargetPageID, "navigation follows the renamed grid")

	doc := readGrid(t, dest, "Grids/food/grid.xml")
	assert.Equal(t, "Fruits!", plainText(doc.Cells[0].Content.Commands[0].Params[0].Inner))

	require.Len(t, events, 3)
	assert.Equal(t, domain.OpExtract, events[0].Op)
	assert.Equal(t, domain.OpProcess, events[1].Op)
	assert.Equal(t, 2, events[1].Pages)
	assert.NoError(t, events[1].Err)
}
