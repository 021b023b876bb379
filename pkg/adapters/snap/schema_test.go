package snap

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/domain"
)

func TestProbe(t *testing.T) {
	p := writeDatabase(t, "probe.db", legacySchema...)
	db, err := sql.Open("sqlite", p)
	require.NoError(t, err)
	defer db.Close()

	caps, err := probe(context.Background(), db)
	require.NoError(t, err)

	assert.Empty(t, caps.missing())
	assert.True(t, caps.hasTable("button"), "table lookup ignores case")
	assert.True(t, caps.has("Button", "navigatepageid"))
	assert.False(t, caps.has("Button", "MessageRecordingId"))
	assert.False(t, caps.hasTable(tableData))

	assert.Equal(t, "b.Label", caps.column("b", tableButton, "Label"))
	assert.Equal(t, "NULL", caps.column("b", tableButton, "ActionCode"))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("snap.load", "x", nil))

	classified := domain.NewError(domain.KindIO, "snap.open", "x", errors.New("gone"))
	assert.Same(t, classified, classify("snap.load", "y", classified))

	err := classify("snap.load", "x", errors.New("no such column: Foo"))
	assert.Equal(t, domain.KindStructural, domain.KindOf(err))
}
