package indexer

import (
	"github.com/mvp-joe/semdex/internal/frontend"
	"github.com/mvp-joe/semdex/internal/semdb"
)

// rangeKind selects how a node's raw anchor is turned into an exact range.
// Every kind is a combination of three flags: anchored at the preferred
// point (vs. the full span), resolved by text search, and searched backward
// from the span end.
type rangeKind int

const (
	// rangeFromPointWithSearch scans forward from the preferred point for
	// the name token. Used where the anchor lands on a keyword.
	rangeFromPointWithSearch rangeKind = iota
	// rangeFromPointToName takes name-length characters from the
	// preferred point.
	rangeFromPointToName
	// rangeFromPointToNamePlusOne skips one code unit past the anchor
	// before taking the name, stepping over a separator.
	rangeFromPointToNamePlusOne
	// rangeFromSpan uses the reported start/end span exactly.
	rangeFromSpan
	// rangeFromEndWithSearch scans backward from the span end for the
	// name token.
	rangeFromEndWithSearch
	// rangeFromSearch scans forward from the span start for the name
	// token.
	rangeFromSearch
)

func (k rangeKind) fromPoint() bool {
	return k == rangeFromPointWithSearch || k == rangeFromPointToName || k == rangeFromPointToNamePlusOne
}

func (k rangeKind) fromTextSearch() bool {
	return k == rangeFromPointWithSearch || k == rangeFromEndWithSearch || k == rangeFromSearch
}

func (k rangeKind) fromEnd() bool {
	return k == rangeFromEndWithSearch
}

// rangeResolver reconciles raw anchors against the literal source text.
// Deterministic: identical (anchor, kind, name, source) always yields the
// identical result.
type rangeResolver struct {
	lineMap frontend.LineMap
	source  string
}

// resolve turns a raw anchor into an exact range for the named symbol.
// Returns false when no valid range can be produced; the caller drops the
// occurrence.
func (r *rangeResolver) resolve(anchor frontend.Anchor, kind rangeKind, name string) (semdb.Range, bool) {
	var start, end int
	if kind.fromPoint() && name != "" && anchor.Point != frontend.NoPos {
		start = anchor.Point
		if kind == rangeFromPointToNamePlusOne {
			start++
		}
		end = start + len(name)
	} else {
		start = anchor.Start
		end = anchor.End
	}

	if kind.fromTextSearch() {
		if name == "" {
			return semdb.Range{}, false
		}
		from := start
		if kind.fromEnd() {
			from = anchor.End
		}
		if from == frontend.NoPos {
			return semdb.Range{}, false
		}
		off, ok := findName(r.source, name, from, kind.fromEnd())
		if !ok {
			return semdb.Range{}, false
		}
		rng := r.toRange(off, off+len(name))
		rng = r.correctForTabs(rng, off)
		return rng, rng.Valid()
	}

	if start == frontend.NoPos || end == frontend.NoPos || end <= start {
		return semdb.Range{}, false
	}
	rng := r.toRange(start, end)
	rng = r.correctForTabs(rng, start)
	return rng, rng.Valid()
}

// toRange translates byte offsets through the 1-based line map into a
// zero-based range.
func (r *rangeResolver) toRange(start, end int) semdb.Range {
	return semdb.Range{
		StartLine:      r.lineMap.LineNumber(start) - 1,
		StartCharacter: r.lineMap.ColumnNumber(start) - 1,
		EndLine:        r.lineMap.LineNumber(end) - 1,
		EndCharacter:   r.lineMap.ColumnNumber(end) - 1,
	}
}

// correctForTabs undoes the line map's tab expansion. The line map counts
// every tab as 8 columns, which disagrees with the literal source when a
// line is indented with real tab characters, so ranges anchored on such a
// line shift left by 7 columns per leading tab.
func (r *rangeResolver) correctForTabs(rng semdb.Range, start int) semdb.Range {
	lineStart := r.lineMap.LineStart(r.lineMap.LineNumber(start))
	if lineStart < 0 || lineStart >= len(r.source) {
		return rng
	}
	count := 0
	for i := lineStart; i < len(r.source) && r.source[i] == '\t'; i++ {
		count++
	}
	if count > 0 {
		rng.StartCharacter -= count * 7
		rng.EndCharacter -= count * 7
	}
	return rng
}

// findName locates a whole-token match of name in source, scanning from the
// given offset. Forward scan returns the first match at or after the
// offset; backward scan the first match at or before it. Linear scan in the
// flagged direction means the nearest match always wins, which keeps the
// result deterministic.
func findName(source, name string, from int, backward bool) (int, bool) {
	n := len(name)
	if n == 0 || n > len(source) {
		return 0, false
	}
	if from < 0 {
		from = 0
	}
	if backward {
		if from > len(source)-n {
			from = len(source) - n
		}
		for i := from; i >= 0; i-- {
			if tokenAt(source, name, i) {
				return i, true
			}
		}
		return 0, false
	}
	for i := from; i+n <= len(source); i++ {
		if tokenAt(source, name, i) {
			return i, true
		}
	}
	return 0, false
}

// tokenAt reports whether name appears at offset i bounded by
// non-identifier characters on both sides.
func tokenAt(source, name string, i int) bool {
	if i < 0 || i+len(name) > len(source) {
		return false
	}
	if source[i:i+len(name)] != name {
		return false
	}
	if i > 0 && isIdentByte(source[i-1]) {
		return false
	}
	if j := i + len(name); j < len(source) && isIdentByte(source[j]) {
		return false
	}
	return true
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9'
}
