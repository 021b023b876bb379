package snap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Table names. SQLite resolves identifiers case-insensitively, and so does the probe.
const (
	tablePage       = "Page"
	tableButton     = "Button"
	tableElementRef = "ElementReference"
	tablePlacement  = "ElementPlacement"
	tableData       = "PageSetData"
	tableProperties = "PageSetProperties"
)

var requiredTables = []string{tablePage, tableButton, tableElementRef, tablePlacement}

// schemaDDL is the minimal schema written on export.
var schemaDDL = []string{
	`CREATE TABLE Page (
		Id INTEGER PRIMARY KEY,
		UniqueId TEXT,
		Title TEXT,
		BackgroundColor INTEGER
	)`,
	`CREATE TABLE ElementReference (
		Id INTEGER PRIMARY KEY,
		PageId INTEGER NOT NULL REFERENCES Page(Id),
		BackgroundColor INTEGER,
		ForegroundColor INTEGER,
		BorderColor INTEGER,
		FontFamily TEXT,
		FontSize REAL,
		ImageId INTEGER REFERENCES PageSetData(Id)
	)`,
	`CREATE TABLE ElementPlacement (
		Id INTEGER PRIMARY KEY,
		ElementReferenceId INTEGER NOT NULL REFERENCES ElementReference(Id),
		GridPosition TEXT,
		GridSpan TEXT
	)`,
	`CREATE TABLE Button (
		Id INTEGER PRIMARY KEY,
		UniqueId TEXT,
		Label TEXT,
		Message TEXT,
		ElementReferenceId INTEGER NOT NULL REFERENCES ElementReference(Id),
		NavigatePageId INTEGER,
		ActionCode TEXT,
		ActionParameters TEXT,
		MessageRecordingId INTEGER REFERENCES PageSetData(Id),
		UseMessageRecording INTEGER,
		SerializedMessageSoundMetadata TEXT
	)`,
	`CREATE TABLE PageSetData (
		Id INTEGER PRIMARY KEY,
		Identifier TEXT NOT NULL UNIQUE,
		Data BLOB,
		RefCount INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE PageSetProperties (
		Id INTEGER PRIMARY KEY,
		DefaultHomePageUniqueId TEXT,
		Language TEXT
	)`,
}

// capabilities is the set of tables and columns present in an opened database.
type capabilities map[string]map[string]bool

// probe introspects every table of db.
func probe(ctx context.Context, db *sql.DB) (capabilities, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		tables = append(tables, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	caps := make(capabilities, len(tables))
	for _, table := range tables {
		cols, err := tableColumns(ctx, db, table)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
		}
		caps[strings.ToLower(table)] = cols
	}
	return caps, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   sql.NullString
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

func (c capabilities) hasTable(table string) bool {
	_, ok := c[strings.ToLower(table)]
	return ok
}

func (c capabilities) has(table, column string) bool {
	return c[strings.ToLower(table)][strings.ToLower(column)]
}

// missing returns the required tables that are absent.
func (c capabilities) missing() []string {
	var out []string
	for _, t := range requiredTables {
		if !c.hasTable(t) {
			out = append(out, t)
		}
	}
	return out
}

// column renders "alias.Column" when present, or NULL so that the row shape
// stays fixed whatever the vendor version.
func (c capabilities) column(alias, table, column string) string {
	if c.has(table, column) {
		return alias + "." + column
	}
	return "NULL"
}
