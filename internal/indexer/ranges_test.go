package indexer

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semdex/internal/frontend"
	"github.com/mvp-joe/semdex/internal/semdb"
)

// Test Plan for range resolution:
// - Point-to-name takes name-length characters from the preferred point
// - Plus-one steps over a separator before taking the name
// - Point-with-search scans forward past keywords to the name token
// - Search matches whole tokens only
// - Span ranges use the reported start/end exactly
// - End-with-search scans backward from the span end
// - Tab-indented lines shift ranges left by 7 columns per leading tab
// - Missing anchors, empty names, and failed searches drop the range
// - Identical inputs always produce identical ranges

// testLineMap mirrors the production line map: 1-based coordinates, every
// tab counted as 8 columns.
type testLineMap struct {
	source string
	starts []int
}

func newTestLineMap(source string) *testLineMap {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &testLineMap{source: source, starts: starts}
}

func (m *testLineMap) LineNumber(pos int) int {
	return sort.Search(len(m.starts), func(i int) bool { return m.starts[i] > pos })
}

func (m *testLineMap) ColumnNumber(pos int) int {
	start := m.starts[m.LineNumber(pos)-1]
	col := 1
	for i := start; i < pos && i < len(m.source); i++ {
		if m.source[i] == '\t' {
			col += 8
		} else {
			col++
		}
	}
	return col
}

func (m *testLineMap) LineStart(line int) int {
	if line < 1 || line > len(m.starts) {
		return -1
	}
	return m.starts[line-1]
}

func newTestResolver(source string) *rangeResolver {
	return &rangeResolver{lineMap: newTestLineMap(source), source: source}
}

func TestResolve_PointToName(t *testing.T) {
	t.Parallel()

	r := newTestResolver("class Foo {}")

	// Test: name-length characters from the preferred point
	rng, ok := r.resolve(frontend.Anchor{Start: 0, Point: 6, End: 12}, rangeFromPointToName, "Foo")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 6, EndLine: 0, EndCharacter: 9}, rng)
}

func TestResolve_PointToNamePlusOne(t *testing.T) {
	t.Parallel()

	r := newTestResolver("obj.field")

	// Test: the anchor sits on the separator; the name starts one past it
	rng, ok := r.resolve(frontend.Anchor{Start: 0, Point: 3, End: 9}, rangeFromPointToNamePlusOne, "field")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 4, EndLine: 0, EndCharacter: 9}, rng)
}

func TestResolve_PointWithSearch(t *testing.T) {
	t.Parallel()

	r := newTestResolver("class Foo {}")

	// Test: an anchor on the keyword still finds the name token
	rng, ok := r.resolve(frontend.Anchor{Start: 0, Point: 0, End: 12}, rangeFromPointWithSearch, "Foo")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 6, EndLine: 0, EndCharacter: 9}, rng)
}

func TestResolve_SearchWholeTokenOnly(t *testing.T) {
	t.Parallel()

	r := newTestResolver("Foobar Foo Football")

	// Test: prefixes of longer identifiers never match
	rng, ok := r.resolve(frontend.Anchor{Start: 0, Point: 0, End: 19}, rangeFromSearch, "Foo")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 7, EndLine: 0, EndCharacter: 10}, rng)
}

func TestResolve_FromSpan(t *testing.T) {
	t.Parallel()

	r := newTestResolver("alpha beta")

	// Test: the reported span is used exactly
	rng, ok := r.resolve(frontend.Anchor{Start: 6, Point: 6, End: 10}, rangeFromSpan, "")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 6, EndLine: 0, EndCharacter: 10}, rng)
}

func TestResolve_FromEndWithSearch(t *testing.T) {
	t.Parallel()

	r := newTestResolver("List::add")

	// Test: backward scan from the span end finds the member name
	rng, ok := r.resolve(frontend.Anchor{Start: 0, Point: 0, End: 9}, rangeFromEndWithSearch, "add")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 6, EndLine: 0, EndCharacter: 9}, rng)
}

func TestResolve_MultiLineSearch(t *testing.T) {
	t.Parallel()

	r := newTestResolver("first line\nsecond flag here\n")

	// Test: forward search starting on a later line lands on that line
	rng, ok := r.resolve(frontend.Anchor{Start: 11, Point: 11, End: 27}, rangeFromSearch, "flag")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 1, StartCharacter: 7, EndLine: 1, EndCharacter: 11}, rng)
}

func TestResolve_TabCorrection(t *testing.T) {
	t.Parallel()

	// One literal tab of indentation: the line map counts it as 8 columns,
	// the corrected range counts it as 1.
	r := newTestResolver("\tclass Foo {}")
	rng, ok := r.resolve(frontend.Anchor{Start: 1, Point: 7, End: 13}, rangeFromPointToName, "Foo")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 7, EndLine: 0, EndCharacter: 10}, rng)
}

func TestResolve_TabCorrectionTwoTabs(t *testing.T) {
	t.Parallel()

	r := newTestResolver("\t\tint x;")
	rng, ok := r.resolve(frontend.Anchor{Start: 2, Point: 6, End: 8}, rangeFromPointToName, "x")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 6, EndLine: 0, EndCharacter: 7}, rng)
}

func TestResolve_SpacesNeedNoCorrection(t *testing.T) {
	t.Parallel()

	r := newTestResolver("    int x;")
	rng, ok := r.resolve(frontend.Anchor{Start: 4, Point: 8, End: 10}, rangeFromPointToName, "x")
	require.True(t, ok)
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 8, EndLine: 0, EndCharacter: 9}, rng)
}

func TestResolve_Failures(t *testing.T) {
	t.Parallel()

	r := newTestResolver("class Foo {}")

	// Test: a search for a token that never occurs fails
	_, ok := r.resolve(frontend.Anchor{Start: 0, Point: 0, End: 12}, rangeFromSearch, "zzz")
	assert.False(t, ok)

	// Test: searching for an empty name fails
	_, ok = r.resolve(frontend.Anchor{Start: 0, Point: 0, End: 12}, rangeFromSearch, "")
	assert.False(t, ok)

	// Test: an absent anchor fails without a search to fall back on
	_, ok = r.resolve(frontend.Anchor{Start: frontend.NoPos, Point: frontend.NoPos, End: frontend.NoPos}, rangeFromSpan, "Foo")
	assert.False(t, ok)

	// Test: a missing preferred point fails the point strategies too
	_, ok = r.resolve(frontend.Anchor{Start: frontend.NoPos, Point: frontend.NoPos, End: frontend.NoPos}, rangeFromPointToName, "Foo")
	assert.False(t, ok)

	// Test: an empty span is not a valid range
	_, ok = r.resolve(frontend.Anchor{Start: 6, Point: 6, End: 6}, rangeFromSpan, "")
	assert.False(t, ok)
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	r := newTestResolver("x foo x foo x")
	anchor := frontend.Anchor{Start: 0, Point: 0, End: 13}

	// Test: the nearest match in scan direction wins every time
	first, ok := r.resolve(anchor, rangeFromSearch, "foo")
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := r.resolve(anchor, rangeFromSearch, "foo")
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, semdb.Range{StartLine: 0, StartCharacter: 2, EndLine: 0, EndCharacter: 5}, first)
}

func TestFindName_Backward(t *testing.T) {
	t.Parallel()

	src := "foo bar foo baz"

	// Test: backward scan returns the nearest match at or before the offset
	off, ok := findName(src, "foo", len(src), true)
	require.True(t, ok)
	assert.Equal(t, 8, off)

	// Test: forward scan returns the first match at or after the offset
	off, ok = findName(src, "foo", 1, false)
	require.True(t, ok)
	assert.Equal(t, 8, off)
}

func TestTokenAt_Boundaries(t *testing.T) {
	t.Parallel()

	// Test: identifier characters on either side block a match
	assert.False(t, tokenAt("xfoo", "foo", 1))
	assert.False(t, tokenAt("foox", "foo", 0))
	assert.False(t, tokenAt("$foo", "foo", 1))
	assert.True(t, tokenAt("(foo)", "foo", 1))
	assert.True(t, tokenAt("foo", "foo", 0))
}
