package javasrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for the line map:
// - Line numbers are 1-based; the newline belongs to its line
// - Columns are 1-based byte counts with tabs counted as 8 columns
// - Line starts are byte offsets; out-of-range lines return -1
// - Positions past the end of source map onto the last line

func TestLineMap_Lines(t *testing.T) {
	t.Parallel()

	m := newLineMap("ab\ncd\n\tz")

	assert.Equal(t, 1, m.LineNumber(0))
	assert.Equal(t, 1, m.LineNumber(2)) // the newline itself
	assert.Equal(t, 2, m.LineNumber(3))
	assert.Equal(t, 3, m.LineNumber(6))
	assert.Equal(t, 3, m.LineNumber(100))
}

func TestLineMap_Columns(t *testing.T) {
	t.Parallel()

	m := newLineMap("ab\ncd\n\tz")

	assert.Equal(t, 1, m.ColumnNumber(0))
	assert.Equal(t, 2, m.ColumnNumber(1))
	assert.Equal(t, 1, m.ColumnNumber(3))
	assert.Equal(t, 2, m.ColumnNumber(4))

	// Test: a leading tab advances the column by 8
	assert.Equal(t, 1, m.ColumnNumber(6))
	assert.Equal(t, 9, m.ColumnNumber(7))
}

func TestLineMap_ColumnsCountBytes(t *testing.T) {
	t.Parallel()

	// "é" is two bytes in UTF-8; the column after it is 3, not 2.
	m := newLineMap("éx")
	assert.Equal(t, 1, m.ColumnNumber(0))
	assert.Equal(t, 3, m.ColumnNumber(2))
}

func TestLineMap_LineStart(t *testing.T) {
	t.Parallel()

	m := newLineMap("ab\ncd\n\tz")

	assert.Equal(t, 0, m.LineStart(1))
	assert.Equal(t, 3, m.LineStart(2))
	assert.Equal(t, 6, m.LineStart(3))
	assert.Equal(t, -1, m.LineStart(0))
	assert.Equal(t, -1, m.LineStart(4))
}

func TestLineMap_Empty(t *testing.T) {
	t.Parallel()

	m := newLineMap("")
	assert.Equal(t, 1, m.LineNumber(0))
	assert.Equal(t, 0, m.LineStart(1))
}
