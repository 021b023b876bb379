package lattice_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/dsl"
)

// ExampleEngine_Convert builds a two-page board in code, saves it as a Snap
// page set, converts it to a gridset and lists the texts a translator would see.
func ExampleEngine_Convert() {
	b := dsl.New().Root("home")
	b.Page("home").Name("Home").
		ButtonWithID("hi", "Hello").At(0, 0).Speak("Hello").
		ButtonWithID("more", "More").At(1, 0).Navigate("more").
		Page("more").Name("More").
		ButtonWithID("bye", "Goodbye").At(0, 0).Speak("Goodbye")
	tree, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	dir, err := os.MkdirTemp("", "lattice-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	engine := lattice.New()
	snapPath := filepath.Join(dir, "board.sps")
	if err := engine.SaveFromTree(ctx, tree, snapPath); err != nil {
		log.Fatal(err)
	}

	converted, err := engine.Convert(ctx, snapPath, filepath.Join(dir, "board.gridset"), domain.DefaultImportOptions())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("root:", converted.Root().Name)

	texts, err := engine.ExtractTexts(ctx, snapPath)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(strings.Join(texts, ", "))

	// Output:
	// root: Home
	// Home, Hello, More, More, Goodbye
}

func ExampleDefaultTranslatedPath() {
	fmt.Println(lattice.DefaultTranslatedPath("boards/core_en.gridset", "fr"))
	// Output: boards/core_fr.gridset
}
