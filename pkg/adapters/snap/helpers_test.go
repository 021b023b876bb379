package snap

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/internal/archive"
)

// writeDatabase creates a bare SQLite page set from raw statements.
func writeDatabase(t *testing.T, name string, stmts ...string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite", p)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return p
}

// openSaved extracts the database of a saved container and opens it.
func openSaved(t *testing.T, container string) *sql.DB {
	t.Helper()
	ar, err := archive.Open(container)
	require.NoError(t, err)
	defer ar.Close()

	dest := filepath.Join(t.TempDir(), databaseEntry)
	require.NoError(t, ar.Extract(databaseEntry, dest))
	db, err := sql.Open("sqlite", dest)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

// legacySchema is an older vendor layout: no UniqueId, no audio, no properties.
var legacySchema = []string{
	`CREATE TABLE Page (Id INTEGER PRIMARY KEY, Title TEXT)`,
	`CREATE TABLE ElementReference (Id INTEGER PRIMARY KEY, PageId INTEGER, BackgroundColor INTEGER)`,
	`CREATE TABLE ElementPlacement (Id INTEGER PRIMARY KEY, ElementReferenceId INTEGER, GridPosition TEXT, GridSpan TEXT)`,
	`CREATE TABLE Button (Id INTEGER PRIMARY KEY, Label TEXT, Message TEXT, ElementReferenceId INTEGER, NavigatePageId INTEGER)`,
}
