package domain

import "fmt"

// Page is one screen of buttons.
type Page struct {
	ID   string
	Name string

	// Buttons are owned by the page, in traversal order.
	Buttons []*Button

	// Grid is the optional occupancy grid. Its cells reference buttons by id.
	Grid *Grid

	Style *Style

	// ParentID is advisory only; it is set by whichever button navigates here first.
	ParentID string

	index map[string]*Button
}

// NewPage creates an empty page.
func NewPage(id, name string) *Page {
	return &Page{
		ID:   id,
		Name: name,
	}
}

// AddButton appends a button. Button ids must be unique within the page.
func (p *Page) AddButton(b *Button) error {
	if b == nil {
		return fmt.Errorf("button cannot be nil")
	}
	if b.ID == "" {
		return fmt.Errorf("button missing ID on page %s", p.ID)
	}
	if _, exists := p.Button(b.ID); exists {
		return fmt.Errorf("%w: %s on page %s", ErrDuplicateButton, b.ID, p.ID)
	}
	if p.index == nil {
		p.index = make(map[string]*Button)
	}
	p.index[b.ID] = b
	p.Buttons = append(p.Buttons, b)
	return nil
}

// Button looks up a button by id.
func (p *Page) Button(id string) (*Button, bool) {
	if p.index != nil {
		if b, ok := p.index[id]; ok {
			return b, true
		}
	}
	for _, b := range p.Buttons {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Place records the button at pos in the page grid, creating the grid if needed,
// and stores the position on the button. The button must already belong to the page.
// Moving a placed button frees its old cells; a failed move leaves it where it was.
func (p *Page) Place(b *Button, pos Position) error {
	if _, ok := p.Button(b.ID); !ok {
		return fmt.Errorf("button %s does not belong to page %s", b.ID, p.ID)
	}
	if p.Grid == nil {
		p.Grid = NewGrid(0, 0)
	}
	old, placed := p.Grid.Locate(b.ID)
	if placed && b.Position != nil {
		old = *b.Position
	}
	p.Grid.Remove(b.ID)
	pos = pos.Normalize()
	if err := p.Grid.Place(b.ID, pos); err != nil {
		if placed {
			_ = p.Grid.Place(b.ID, old)
		}
		return fmt.Errorf("page %s: %w", p.ID, err)
	}
	b.Position = &pos
	return nil
}

// RemoveButton drops a button and frees its grid cells. It reports whether the
// button was present.
func (p *Page) RemoveButton(id string) bool {
	for i, b := range p.Buttons {
		if b.ID != id {
			continue
		}
		p.Buttons = append(p.Buttons[:i], p.Buttons[i+1:]...)
		delete(p.index, id)
		if p.Grid != nil {
			p.Grid.Remove(id)
		}
		return true
	}
	return false
}
