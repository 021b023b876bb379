package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/ports"
)

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestTools(t *testing.T) {
	ctx := context.Background()
	eng := lattice.New()
	dir := t.TempDir()
	source := filepath.Join(dir, "board.gridset")
	require.NoError(t, eng.SaveFromTree(ctx, ports.ContractTree(), source))
	s := NewServer(eng)

	t.Run("Formats", func(t *testing.T) {
		res, err := s.handleFormats(ctx, call(nil))
		require.NoError(t, err)
		assert.Contains(t, text(t, res), `"format":"snap"`)
	})

	t.Run("Extract", func(t *testing.T) {
		res, err := s.handleExtract(ctx, call(map[string]any{"path": source}))
		require.NoError(t, err)
		var texts []string
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &texts))
		assert.Contains(t, texts, "Apples")
	})

	t.Run("Validate", func(t *testing.T) {
		res, err := s.handleValidate(ctx, call(map[string]any{"path": source}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, text(t, res), `"valid":true`)
	})

	t.Run("Graph", func(t *testing.T) {
		res, err := s.handleGraph(ctx, call(map[string]any{"path": source}))
		require.NoError(t, err)
		assert.Contains(t, text(t, res), "graph TD")
	})

	t.Run("Convert", func(t *testing.T) {
		dest := filepath.Join(dir, "board.sps")
		res, err := s.handleConvert(ctx, call(map[string]any{"source": source, "destination": dest}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, text(t, res), "2 pages")
		assert.True(t, eng.CanProcess(dest))
	})

	t.Run("Errors Are Tool Results", func(t *testing.T) {
		res, err := s.handleExtract(ctx, call(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, res.IsError)

		res, err = s.handleExtract(ctx, call(map[string]any{"path": filepath.Join(dir, "missing.gridset")}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res), "extract failed")
	})
}
