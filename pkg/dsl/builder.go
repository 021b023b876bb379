package dsl

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/lattice/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	pages       []*PageBuilder
	byID        map[string]*PageBuilder
	root        string
	description string
	language    string
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{
		byID: make(map[string]*PageBuilder),
	}
}

// Page creates a page in the tree.
// If the page already exists, it returns the existing builder.
func (b *Builder) Page(id string) *PageBuilder {
	if pb, ok := b.byID[id]; ok {
		return pb
	}
	pb := &PageBuilder{
		page:    domain.NewPage(id, id),
		builder: b,
		byID:    make(map[string]*ButtonBuilder),
	}
	b.byID[id] = pb
	b.pages = append(b.pages, pb)
	return pb
}

// Root sets the entry page. The first page is the root otherwise.
func (b *Builder) Root(pageID string) *Builder {
	b.root = pageID
	return b
}

// Describe sets the board set description.
func (b *Builder) Describe(description string) *Builder {
	b.description = description
	return b
}

// Language sets the board set language.
func (b *Builder) Language(code string) *Builder {
	b.language = code
	return b
}

// Build compiles the pages into a tree. Placement conflicts and duplicate
// button ids are reported together.
func (b *Builder) Build() (*domain.Tree, error) {
	tree := domain.NewTree()
	tree.RootPageID = b.root
	tree.Description = b.description
	tree.Language = b.language

	var errs []error
	for _, pb := range b.pages {
		page, err := pb.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := tree.AddPage(page); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	if tree.RootPageID != "" && !tree.HasPage(tree.RootPageID) {
		return nil, fmt.Errorf("failed to build tree: root %w: %s", domain.ErrPageNotFound, tree.RootPageID)
	}
	tree.LinkParents()
	return tree, nil
}

// PageBuilder provides a fluent API for configuring a page.
// page holds the page attributes only; buttons are attached on Build.
type PageBuilder struct {
	page    *domain.Page
	builder *Builder
	buttons []*ButtonBuilder
	byID    map[string]*ButtonBuilder
}

// Name sets the display name (defaults to the id).
func (p *PageBuilder) Name(name string) *PageBuilder {
	p.page.Name = name
	return p
}

// Background sets the page background colour.
func (p *PageBuilder) Background(color string) *PageBuilder {
	if p.page.Style == nil {
		p.page.Style = &domain.Style{}
	}
	p.page.Style.BackgroundColor = color
	return p
}

// Button adds a button with the given label and a generated id.
func (p *PageBuilder) Button(label string) *ButtonBuilder {
	return p.ButtonWithID(uuid.NewString(), label)
}

// ButtonWithID adds a button with an explicit id.
// If the id already exists on the page, it returns the existing builder.
func (p *PageBuilder) ButtonWithID(id, label string) *ButtonBuilder {
	if bb, ok := p.byID[id]; ok {
		return bb
	}
	bb := &ButtonBuilder{button: domain.NewButton(id, label), page: p}
	p.byID[id] = bb
	p.buttons = append(p.buttons, bb)
	return bb
}

// Page switches to another page of the same tree.
func (p *PageBuilder) Page(id string) *PageBuilder {
	return p.builder.Page(id)
}

func (p *PageBuilder) build() (*domain.Page, error) {
	page := domain.NewPage(p.page.ID, p.page.Name)
	if p.page.Style != nil {
		s := *p.page.Style
		page.Style = &s
	}
	var errs []error
	for _, bb := range p.buttons {
		b := bb.button
		b.Position = nil
		if err := page.AddButton(b); err != nil {
			errs = append(errs, err)
			continue
		}
		if bb.pos == nil {
			continue
		}
		if err := page.Place(b, *bb.pos); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return page, nil
}

// ButtonBuilder provides a fluent API for configuring a button.
type ButtonBuilder struct {
	button *domain.Button
	page   *PageBuilder
	pos    *domain.Position
}

// ID returns the button id.
func (b *ButtonBuilder) ID() string {
	return b.button.ID
}

// Message sets the spoken text.
func (b *ButtonBuilder) Message(message string) *ButtonBuilder {
	b.button.Message = message
	return b
}

// At places the button on the page grid (0-based).
func (b *ButtonBuilder) At(x, y int) *ButtonBuilder {
	pos := domain.Position{X: x, Y: y, ColumnSpan: 1, RowSpan: 1}
	if b.pos != nil {
		pos.ColumnSpan, pos.RowSpan = b.pos.ColumnSpan, b.pos.RowSpan
	}
	b.pos = &pos
	return b
}

// Span sets how many columns and rows the button covers.
func (b *ButtonBuilder) Span(cols, rows int) *ButtonBuilder {
	if b.pos == nil {
		b.pos = &domain.Position{}
	}
	b.pos.ColumnSpan, b.pos.RowSpan = cols, rows
	return b
}

// Navigate makes the button open another page.
func (b *ButtonBuilder) Navigate(pageID string) *ButtonBuilder {
	b.button.Action = domain.Navigate(pageID)
	return b
}

// Speak makes the button speak text (its message when empty).
func (b *ButtonBuilder) Speak(text string) *ButtonBuilder {
	b.button.Action = domain.Speak(text)
	return b
}

// Insert makes the button insert text into the message bar.
func (b *ButtonBuilder) Insert(text string) *ButtonBuilder {
	b.button.Action = domain.InsertText(text)
	return b
}

// Do sets a parameterless intent (go back, go home, deletes, clear).
func (b *ButtonBuilder) Do(intent domain.Intent) *ButtonBuilder {
	b.button.Action = domain.Simple(intent)
	return b
}

// Action sets an arbitrary action.
func (b *ButtonBuilder) Action(a *domain.Action) *ButtonBuilder {
	b.button.Action = a
	return b
}

// Style sets the inline style.
func (b *ButtonBuilder) Style(s domain.Style) *ButtonBuilder {
	b.button.Style = &s
	return b
}

// Image attaches an image.
func (b *ButtonBuilder) Image(name string, data []byte) *ButtonBuilder {
	b.button.Image = &domain.Image{Name: name, Data: data}
	return b
}

// Audio attaches a recording.
func (b *ButtonBuilder) Audio(data []byte, metadata map[string]string) *ButtonBuilder {
	b.button.Audio = domain.NewAudioRecording(data, metadata)
	return b
}

// Meta sets a metadata flag.
func (b *ButtonBuilder) Meta(key, value string) *ButtonBuilder {
	b.button.SetMeta(key, value)
	return b
}

// Button adds a sibling button on the same page.
func (b *ButtonBuilder) Button(label string) *ButtonBuilder {
	return b.page.Button(label)
}

// ButtonWithID adds a sibling button with an explicit id.
func (b *ButtonBuilder) ButtonWithID(id, label string) *ButtonBuilder {
	return b.page.ButtonWithID(id, label)
}

// Page switches to another page of the same tree.
func (b *ButtonBuilder) Page(id string) *PageBuilder {
	return b.page.Page(id)
}

// Build returns the underlying domain.Button.
// This is primarily used by the Builder, but exposed for advanced usage.
func (b *ButtonBuilder) Build() *domain.Button {
	return b.button
}
