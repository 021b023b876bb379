package gridset

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/internal/archive"
)

// writeGridset builds a gridset archive from raw entries and returns its path.
func writeGridset(t *testing.T, entries map[string]string) string {
	t.Helper()
	w := archive.NewWriter()
	for name, content := range entries {
		require.NoError(t, w.Add(name, []byte(content)))
	}
	data, err := w.Bytes()
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "fixture.gridset")
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

// readGrid parses one grid.xml from a saved gridset.
func readGrid(t *testing.T, gridset, entry string) *gridXML {
	t.Helper()
	ar, err := archive.Open(gridset)
	require.NoError(t, err)
	defer ar.Close()

	data, err := ar.ReadFile(entry)
	require.NoError(t, err)
	var doc gridXML
	require.NoError(t, xml.Unmarshal(data, &doc))
	return &doc
}

const foodGrid = `<Grid Name="Food" GridGuid="food-guid">
  <ColumnDefinitions><ColumnDefinition/><ColumnDefinition/><ColumnDefinition/><ColumnDefinition/></ColumnDefinitions>
  <RowDefinitions><RowDefinition/><RowDefinition/></RowDefinitions>
  <Cells>
    <Cell X="2" Y="1" ColumnSpan="2">
      <Content>
        <Commands>
          <Command ID="Jump.To"><Parameter Key="grid">Fruits</Parameter></Command>
        </Commands>
        <CaptionAndImage><Caption>Apples</Caption></CaptionAndImage>
      </Content>
    </Cell>
  </Cells>
</Grid>`

const fruitsGrid = `<Grid>
  <GridGuid>fruits-guid</GridGuid>
  <Name>Fruits</Name>
  <Cells>
    <Cell>
      <Content>
        <Commands><Command ID="Jump.Back"/></Commands>
        <CaptionAndImage><Caption>Back</Caption></CaptionAndImage>
      </Content>
    </Cell>
  </Cells>
</Grid>`

const settingsFile = `<GridSetSettings>
  <StartGrid>Food</StartGrid>
  <Description>Snack board</Description>
  <Language>en-GB</Language>
</GridSetSettings>`
