package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
)

func TestBuilder_SimpleBoard(t *testing.T) {
	b := New().Root("home").Describe("Snacks").Language("en")

	b.Page("home").Name("Home").Background("#FFFFFF").
		ButtonWithID("hello", "Hello").Speak("").At(0, 0).
		ButtonWithID("to-food", "Food").Navigate("food").At(1, 0)

	b.Page("food").Name("Food").
		ButtonWithID("apples", "Apples").Message("I want apples").Speak("Apples").Span(2, 1).At(0, 0).
		Button("Back").Do(domain.IntentGoBack).At(0, 1)

	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if tree.Root().ID != "home" {
		t.Errorf("Expected root 'home', got '%s'", tree.Root().ID)
	}
	if tree.Description != "Snacks" || tree.Language != "en" {
		t.Errorf("Unexpected settings: %q %q", tree.Description, tree.Language)
	}
	if ids := tree.PageIDs(); len(ids) != 2 || ids[0] != "home" || ids[1] != "food" {
		t.Fatalf("Expected pages [home food], got %v", ids)
	}

	home := tree.Pages["home"]
	if home.Style == nil || home.Style.BackgroundColor != "#FFFFFF" {
		t.Errorf("Expected page background, got %+v", home.Style)
	}

	food := tree.Pages["food"]
	if food.ParentID != "home" {
		t.Errorf("Expected food parent 'home', got '%s'", food.ParentID)
	}
	apples, ok := food.Button("apples")
	if !ok {
		t.Fatal("apples button missing")
	}
	if apples.Message != "I want apples" {
		t.Errorf("Expected custom message, got '%s'", apples.Message)
	}
	if got := food.Grid.Occupied("apples"); len(got) != 2 {
		t.Errorf("Expected apples to span two cells, got %v", got)
	}

	back := food.Buttons[1]
	if back.ID == "" || back.ID == "Back" {
		t.Errorf("Expected a generated id, got '%s'", back.ID)
	}
	if back.Action.Intent != domain.IntentGoBack {
		t.Errorf("Expected go_back, got '%s'", back.Action.Intent)
	}
}

func TestBuilder_ReusesExistingBuilders(t *testing.T) {
	b := New()
	first := b.Page("home").ButtonWithID("a", "A")
	again := b.Page("home").ButtonWithID("a", "ignored")

	if first != again {
		t.Fatal("Expected the same button builder for an existing id")
	}

	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if got := tree.Pages["home"].Buttons[0].Label; got != "A" {
		t.Errorf("Expected label 'A', got '%s'", got)
	}

	// Building twice yields independent pages.
	second, err := b.Build()
	if err != nil {
		t.Fatalf("second Build() failed: %v", err)
	}
	if len(second.Pages["home"].Buttons) != 1 {
		t.Errorf("Expected one button after rebuild, got %d", len(second.Pages["home"].Buttons))
	}
}

func TestBuilder_ReportsConflicts(t *testing.T) {
	b := New()
	b.Page("home").
		ButtonWithID("a", "A").At(0, 0).Span(2, 1).
		ButtonWithID("b", "B").At(1, 0)

	_, err := b.Build()
	var conflict *domain.CellConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected a cell conflict, got %v", err)
	}
	if conflict.Owner != "a" || conflict.Claimant != "b" {
		t.Errorf("Unexpected conflict %+v", conflict)
	}
}

func TestBuilder_UnknownRoot(t *testing.T) {
	b := New().Root("missing")
	b.Page("home")

	_, err := b.Build()
	if !errors.Is(err, domain.ErrPageNotFound) {
		t.Fatalf("Expected ErrPageNotFound, got %v", err)
	}
}
