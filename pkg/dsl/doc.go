/*
Package dsl provides a fluent builder for canonical board trees.

It is the programmatic alternative to importing a vendor file: tests, generators
and tools can describe pages and buttons in Go and hand the tree to any converter.

Example usage:

	b := dsl.New().Root("home")

	b.Page("home").Name("Home").
		ButtonWithID("hello", "Hello").Speak("").At(0, 0).
		Button("Food").Navigate("food").At(1, 0)

	b.Page("food").Name("Food").
		Button("Apples").Speak("Apples").At(0, 0).Span(2, 1).
		Button("Back").Do(domain.IntentGoBack).At(0, 1)

	tree, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	// ... pass tree to a converter's SaveFromTree
*/
package dsl
