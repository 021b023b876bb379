package gridset

import "encoding/xml"

// Archive layout.
const (
	gridsDir      = "Grids"
	gridFile      = "grid.xml"
	settingsEntry = "Settings0/settings.xml"
	stylesEntry   = "Settings0/Styles/styles.xml"
	fileMapFile   = "FileMap.xml"
)

type gridXML struct {
	XMLName  xml.Name `xml:"Grid"`
	NameAttr string   `xml:"Name,attr,omitempty"`
	GUIDAttr string   `xml:"GridGuid,attr,omitempty"`

	// Grid 3 writes these as elements; older exports use the attributes above.
	GUID string `xml:"GridGuid,omitempty"`
	Name string `xml:"Name,omitempty"`

	BackgroundColour string `xml:"BackgroundColour,omitempty"`

	Columns []definitionXML `xml:"ColumnDefinitions>ColumnDefinition"`
	Rows    []definitionXML `xml:"RowDefinitions>RowDefinition"`
	Cells   []cellXML       `xml:"Cells>Cell"`

	WordList *wordListXML `xml:"WordList,omitempty"`
}

func (g *gridXML) guid() string {
	if g.GUIDAttr != "" {
		return g.GUIDAttr
	}
	return g.GUID
}

func (g *gridXML) name() string {
	if g.NameAttr != "" {
		return g.NameAttr
	}
	return g.Name
}

type definitionXML struct{}

type cellXML struct {
	X          string      `xml:"X,attr,omitempty"`
	Y          string      `xml:"Y,attr,omitempty"`
	ColumnSpan string      `xml:"ColumnSpan,attr,omitempty"`
	RowSpan    string      `xml:"RowSpan,attr,omitempty"`
	Content    *contentXML `xml:"Content,omitempty"`
	Style      *styleXML   `xml:"Style,omitempty"`
}

type contentXML struct {
	Commands        []commandXML        `xml:"Commands>Command"`
	CaptionAndImage *captionAndImageXML `xml:"CaptionAndImage,omitempty"`
	ContentType     string              `xml:"ContentType,omitempty"`
	ContentSubType  string              `xml:"ContentSubType,omitempty"`
	Style           *styleXML           `xml:"Style,omitempty"`
}

type captionAndImageXML struct {
	Caption *string `xml:"Caption"`
	Image   string  `xml:"Image,omitempty"`
}

type commandXML struct {
	ID     string     `xml:"ID,attr"`
	Params []paramXML `xml:"Parameter"`
}

// paramXML keeps the parameter body in wire form; "text" parameters carry rich
// text markup.
type paramXML struct {
	Key   string `xml:"Key,attr"`
	Inner string `xml:",innerxml"`
}

type styleXML struct {
	Key          string `xml:"Key,attr,omitempty"`
	BasedOnStyle string `xml:"BasedOnStyle,omitempty"`
	BackColour   string `xml:"BackColour,omitempty"`
	BorderColour string `xml:"BorderColour,omitempty"`
	FontColour   string `xml:"FontColour,omitempty"`
	FontName     string `xml:"FontName,omitempty"`
	FontSize     string `xml:"FontSize,omitempty"`
	FontWeight   string `xml:"FontWeight,omitempty"`
}

type wordListXML struct {
	Name  string            `xml:"Name,attr,omitempty"`
	Items []wordListItemXML `xml:"Items>WordListItem"`
}

type wordListItemXML struct {
	Text  innerXML `xml:"Text"`
	Image string   `xml:"Image,omitempty"`
}

type innerXML struct {
	Inner string `xml:",innerxml"`
}

type settingsXML struct {
	XMLName     xml.Name `xml:"GridSetSettings"`
	StartGrid   string   `xml:"StartGrid,omitempty"`
	Description string   `xml:"Description,omitempty"`
	Language    string   `xml:"Language,omitempty"`
}

type stylesXML struct {
	XMLName xml.Name   `xml:"StyleData"`
	Styles  []styleXML `xml:"Styles>Style"`
}

type fileMapXML struct {
	XMLName xml.Name       `xml:"FileMap"`
	Entries []fileMapEntry `xml:"Entries>Entry"`
}

type fileMapEntry struct {
	StaticFile   string   `xml:"StaticFile,attr"`
	DynamicFiles []string `xml:"DynamicFiles>File"`
}

func marshalDocument(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
