package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestGrid_PlaceAndLocate(t *testing.T) {
	g := NewGrid(0, 0)
	if err := g.Place("apples", Position{X: 2, Y: 1, ColumnSpan: 2, RowSpan: 1}); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	want := []Point{{X: 2, Y: 1}, {X: 3, Y: 1}}
	if got := g.Occupied("apples"); !reflect.DeepEqual(got, want) {
		t.Errorf("Occupied() = %v, want %v", got, want)
	}

	pos, ok := g.Locate("apples")
	if !ok {
		t.Fatal("Locate() did not find button")
	}
	if pos != (Position{X: 2, Y: 1, ColumnSpan: 2, RowSpan: 1}) {
		t.Errorf("Locate() = %+v", pos)
	}

	if rows, cols := g.Extent(); rows != 2 || cols != 4 {
		t.Errorf("Extent() = %d,%d want 2,4", rows, cols)
	}
}

func TestGrid_RejectsConflicts(t *testing.T) {
	g := NewGrid(3, 3)
	if err := g.Place("a", Position{X: 0, Y: 0, ColumnSpan: 2, RowSpan: 2}); err != nil {
		t.Fatalf("Place(a) failed: %v", err)
	}

	err := g.Place("b", Position{X: 1, Y: 1})
	var conflict *CellConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected CellConflictError, got %v", err)
	}
	if conflict.Owner != "a" || conflict.Claimant != "b" {
		t.Errorf("unexpected conflict %+v", conflict)
	}
	if g.At(1, 1) != "a" {
		t.Error("failed placement must not modify the grid")
	}

	// Re-placing the same button over its own cells is allowed.
	if err := g.Place("a", Position{X: 1, Y: 1}); err != nil {
		t.Errorf("re-placing same button failed: %v", err)
	}
}

func TestGrid_RowSpanAndTrim(t *testing.T) {
	g := NewGrid(10, 10)
	if err := g.Place("tall", Position{X: 1, Y: 0, RowSpan: 3}); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	g.Trim()
	if g.Rows() != 3 || g.Columns() != 2 {
		t.Errorf("Trim() left %dx%d, want 3x2", g.Rows(), g.Columns())
	}
	pos, _ := g.Locate("tall")
	if pos.RowSpan != 3 || pos.ColumnSpan != 1 {
		t.Errorf("Locate() = %+v", pos)
	}
	g.Remove("tall")
	if len(g.ButtonIDs()) != 0 {
		t.Errorf("Remove() left %v", g.ButtonIDs())
	}
}
