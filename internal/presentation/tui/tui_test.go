package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBanner_PlainOnPipe(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")

	out := buf.String()
	assert.Contains(t, out, "v1.2.3")
	assert.NotContains(t, out, "\x1b[", "non-terminal writers get no escape codes")
	assert.Equal(t, len(bannerLines)+3, strings.Count(out, "\n"))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("# Report\n\n- one issue\n")
	assert.NoError(t, err)
	assert.Contains(t, out, "Report")
}
