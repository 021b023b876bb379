/*
Package gridset converts Grid 3 gridset archives to and from the canonical tree.

A gridset is a zip archive holding one Grids/<name>/grid.xml per page, an
optional Settings0/settings.xml (start grid, description, language), an optional
Settings0/Styles/styles.xml style table and an optional FileMap.xml listing the
dynamic files (images) of each grid.

Cell X and Y are 0-based column and row indexes, read and written unchanged;
an omitted attribute means 0, as Grid 3 writes for the first column. Navigation
commands reference grids by name; the reader binds names to page ids before
building pages, and the writer turns ids back into names.
*/
package gridset
