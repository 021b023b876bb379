/*
Package lattice converts AAC (augmentative and alternative communication) board
sets between vendor formats through one canonical tree.

Each format adapter implements four operations: extract the translatable texts,
load a file into the canonical tree, write a translated copy, and save a tree
back to the format. The Engine picks the adapter by file extension, so a Grid 3
gridset can be loaded and saved as a Snap page set (or the reverse) without the
caller knowing either file layout.

# Usage

	eng := lattice.New(lattice.WithLogger(logger))

	texts, err := eng.ExtractTexts(ctx, "core.gridset")
	if err != nil {
		log.Fatal(err)
	}

	table := map[string]string{"Hello": "Bonjour", "target_lang": "fr"}
	dest, _, err := eng.ProcessTexts(ctx, "core.gridset", table, "")
	// dest == "core_fr.gridset"

	tree, err := eng.Convert(ctx, "core.gridset", "core.sps", domain.DefaultImportOptions())

Failures are classified (structural, schema, corruption, I/O, unresolved) and
can be tested with errors.Is against the domain sentinels.
*/
package lattice
