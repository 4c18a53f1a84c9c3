package javasrc

import "sort"

// lineMap implements frontend.LineMap over raw source bytes. Columns are
// counted the way javac counts them: every tab advances the column by 8.
// The unit is bytes, not characters, so a multi-byte UTF-8 character
// advances the column by its encoded length.
type lineMap struct {
	source     string
	lineStarts []int // byte offset of each line start, first entry 0
}

func newLineMap(source string) *lineMap {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineMap{source: source, lineStarts: starts}
}

// LineNumber returns the 1-based line containing pos. Positions past the
// end of the source map to the last line.
func (m *lineMap) LineNumber(pos int) int {
	if pos < 0 {
		return 1
	}
	return sort.Search(len(m.lineStarts), func(i int) bool {
		return m.lineStarts[i] > pos
	})
}

// ColumnNumber returns the 1-based column of pos within its line, counted
// in bytes with every tab counted as 8 columns.
func (m *lineMap) ColumnNumber(pos int) int {
	if pos < 0 {
		return 1
	}
	start := m.lineStarts[m.LineNumber(pos)-1]
	col := 1
	for i := start; i < pos && i < len(m.source); i++ {
		if m.source[i] == '\t' {
			col += 8
		} else {
			col++
		}
	}
	if pos > len(m.source) {
		col += pos - len(m.source)
	}
	return col
}

// LineStart returns the byte offset at which the 1-based line begins, or -1
// for a line outside the source.
func (m *lineMap) LineStart(line int) int {
	if line < 1 || line > len(m.lineStarts) {
		return -1
	}
	return m.lineStarts[line-1]
}
