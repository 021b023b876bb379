package domain

// Position is a button's absolute cell position (0-based) and span.
type Position struct {
	X          int `json:"x" yaml:"x"`
	Y          int `json:"y" yaml:"y"`
	ColumnSpan int `json:"column_span" yaml:"column_span"`
	RowSpan    int `json:"row_span" yaml:"row_span"`
}

// Normalize clamps negative coordinates to zero and spans to at least one.
func (p Position) Normalize() Position {
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.ColumnSpan < 1 {
		p.ColumnSpan = 1
	}
	if p.RowSpan < 1 {
		p.RowSpan = 1
	}
	return p
}

// Image is a button's declared image and the archive entry it resolved to.
type Image struct {
	// Name is the image name as declared by the source format (may be a library token).
	Name string
	// Path is the resolved archive entry, empty when resolution failed.
	Path string
	// Data holds the entry bytes when images were loaded.
	Data []byte
	MIME string
}

// Button is a single selectable cell on a page.
type Button struct {
	ID    string
	Label string

	// Message is the spoken text. It defaults to Label.
	Message string

	Action   *Action
	Style    *Style
	Image    *Image
	Position *Position
	Audio    *AudioRecording

	// Metadata carries format-specific flags that do not belong to the canonical model.
	Metadata map[string]string
}

// Metadata keys understood by every converter.
const (
	// MetaSyntheticLabel marks a label generated at import so the cell stays addressable.
	// Synthetic labels are neither extracted nor translated.
	MetaSyntheticLabel = "synthetic_label"
)

// NewButton creates a button whose message defaults to its label.
func NewButton(id, label string) *Button {
	return &Button{
		ID:      id,
		Label:   label,
		Message: label,
	}
}

// SpokenText returns the message, falling back to the label.
func (b *Button) SpokenText() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Label
}

// SetMeta sets a metadata flag.
func (b *Button) SetMeta(key, value string) {
	if b.Metadata == nil {
		b.Metadata = make(map[string]string)
	}
	b.Metadata[key] = value
}

// Meta returns a metadata value.
func (b *Button) Meta(key string) string {
	return b.Metadata[key]
}

// HasSyntheticLabel reports whether the label was generated at import.
func (b *Button) HasSyntheticLabel() bool {
	return b.Metadata[MetaSyntheticLabel] == "true"
}
