package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRendererFormatsMarkdown(t *testing.T) {
	render := NewRenderer()

	out, err := render("# Student Report\n\nStrong thesis, weak citations.")
	require.NoError(t, err)

	assert.Contains(t, out, "Student Report")
	assert.Contains(t, out, "Strong thesis, weak citations.")
}
