// pkg/output/styles/styles_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: lipgloss
// PURPOSE: Test the embedded style definitions and style lookup

package styles

import (
	"testing"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStyles(t *testing.T) {
	expected := []string{
		"Header", "Phase", "Elapsed", "Total", "Muted", "Path",
		"DiffAdd", "DiffDelete", "DiffHunk", "Error", "Warning", "DryRunBanner",
	}
	for _, name := range expected {
		t.Run(name, func(t *testing.T) {
			_, exists := StyleRegistry[name]
			assert.True(t, exists, "style %s should exist", name)
		})
	}

	assert.True(t, GetStyle("Header").GetBold())
	assert.True(t, GetStyle("DiffHunk").GetItalic())
}

func TestGetStyle(t *testing.T) {
	assert.Equal(t, StyleRegistry["Error"], GetStyle("Error"))
	assert.Equal(t, lipgloss.NewStyle(), GetStyle("NonExistentStyle"))
}

func TestMergeStyles(t *testing.T) {
	merged := MergeStyles("Path", "NonExistent", "Error")
	assert.True(t, merged.GetUnderline())
	assert.True(t, merged.GetBold())
	assert.Contains(t, merged.Render("x"), "x")
}

func TestParse(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, Parse(defaultStyles)) })

	t.Run("valid", func(t *testing.T) {
		err := Parse([]byte(`
colors:
  red: {light: "#AA0000", dark: "#FF0000"}
styles:
  Only:
    bold: true
    foreground: red
`))
		require.NoError(t, err)
		assert.Len(t, StyleRegistry, 1)
		assert.True(t, GetStyle("Only").GetBold())
	})

	t.Run("undefined_color", func(t *testing.T) {
		err := Parse([]byte("styles:\n  Broken:\n    foreground: nowhere\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
		assert.Equal(t, "Broken", errors.GetErrorDetails(err)["style"])
	})

	t.Run("bad_yaml", func(t *testing.T) {
		err := Parse([]byte("styles: [unclosed"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})
}

func TestLoadStylesMissingFile(t *testing.T) {
	err := LoadStyles("/does/not/exist.yaml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}
