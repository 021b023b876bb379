package domain

import (
	"fmt"
	"sort"
)

// Tree is the canonical in-memory board set.
// Pages are owned by id; navigation between them is expressed through ids only.
type Tree struct {
	// Pages maps page id to page. Prefer AddPage over writing this map directly
	// so that traversal order is preserved.
	Pages map[string]*Page

	// RootPageID is a hint for the default entry page. It may be empty.
	RootPageID string

	// Name, Description and Language carry board-set level settings when the
	// source format has them.
	Name        string
	Description string
	Language    string

	order []string
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		Pages: make(map[string]*Page),
	}
}

// AddPage inserts a page. A page with the same id is replaced in place (last write wins),
// keeping its original traversal position.
func (t *Tree) AddPage(page *Page) error {
	if page == nil {
		return fmt.Errorf("page cannot be nil")
	}
	if page.ID == "" {
		return fmt.Errorf("page missing ID")
	}
	if t.Pages == nil {
		t.Pages = make(map[string]*Page)
	}
	if _, exists := t.Pages[page.ID]; !exists {
		t.order = append(t.order, page.ID)
	}
	t.Pages[page.ID] = page
	return nil
}

// GetPage returns the page with the given id, or ErrPageNotFound.
func (t *Tree) GetPage(id string) (*Page, error) {
	page, ok := t.Pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return page, nil
}

// HasPage reports whether id resolves to a page of this tree.
func (t *Tree) HasPage(id string) bool {
	_, ok := t.Pages[id]
	return ok
}

// PageIDs returns page ids in traversal order: insertion order first, then any
// pages added directly to the map, sorted by id.
func (t *Tree) PageIDs() []string {
	ids := make([]string, 0, len(t.Pages))
	seen := make(map[string]bool, len(t.Pages))
	for _, id := range t.order {
		if _, ok := t.Pages[id]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	var extra []string
	for id := range t.Pages {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

// OrderedPages returns pages in traversal order.
func (t *Tree) OrderedPages() []*Page {
	ids := t.PageIDs()
	pages := make([]*Page, 0, len(ids))
	for _, id := range ids {
		pages = append(pages, t.Pages[id])
	}
	return pages
}

// Root returns the root page, falling back to the first page in traversal order.
// It returns nil for an empty tree.
func (t *Tree) Root() *Page {
	if p, ok := t.Pages[t.RootPageID]; ok {
		return p
	}
	ids := t.PageIDs()
	if len(ids) == 0 {
		return nil
	}
	return t.Pages[ids[0]]
}

// LinkParents sets the advisory ParentID of every navigation target that does not
// have one yet, using the first page (in traversal order) that navigates to it.
func (t *Tree) LinkParents() {
	for _, page := range t.OrderedPages() {
		for _, b := range page.Buttons {
			if b.Action == nil || b.Action.Intent != IntentNavigate {
				continue
			}
			target, ok := t.Pages[b.Action.TargetPageID]
			if !ok || target.ID == page.ID || target.ParentID != "" {
				continue
			}
			target.ParentID = page.ID
		}
	}
}

// CountButtons returns the total number of buttons across all pages.
func (t *Tree) CountButtons() int {
	n := 0
	for _, p := range t.Pages {
		n += len(p.Buttons)
	}
	return n
}
