// Package symbols encodes resolved entities as stable SemanticDB-style
// symbol strings and caches them. The global cache lives for the whole
// process and is shared across files; the local cache is created fresh for
// every file and numbers symbols that have no global name.
package symbols

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mvp-joe/semdex/internal/frontend"
)

// None is the sentinel for "no symbol". Occurrences with this symbol are
// never emitted.
const None = ""

// RootPackage is the descriptor prefix for compilation units without a
// package declaration.
const RootPackage = "_empty_/"

// GlobalCache maps resolved entities to symbol strings for the lifetime of
// the process. Safe for concurrent use by files indexed in parallel.
type GlobalCache struct {
	mu    sync.RWMutex
	cache map[*frontend.Symbol]string
}

// NewGlobalCache creates an empty global symbol cache.
func NewGlobalCache() *GlobalCache {
	return &GlobalCache{cache: make(map[*frontend.Symbol]string)}
}

// Symbol returns the stable symbol string for sym, creating and caching it
// on first use. Entities with no global name (locals, members of anonymous
// classes) are numbered in locals instead. A nil or unnameable symbol
// yields None.
func (g *GlobalCache) Symbol(sym *frontend.Symbol, locals *LocalCache) string {
	if sym == nil {
		return None
	}
	if isLocal(sym) {
		return locals.symbol(sym)
	}

	g.mu.RLock()
	s, ok := g.cache[sym]
	g.mu.RUnlock()
	if ok {
		return s
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.cache[sym]; ok {
		return s
	}
	s = g.encode(sym, locals)
	g.cache[sym] = s
	return s
}

// encode builds the descriptor chain owner-first. Caller holds the write
// lock.
func (g *GlobalCache) encode(sym *frontend.Symbol, locals *LocalCache) string {
	owner := RootPackage
	if sym.Owner != nil {
		if s, ok := g.cache[sym.Owner]; ok {
			owner = s
		} else {
			owner = g.encode(sym.Owner, locals)
			g.cache[sym.Owner] = owner
		}
	}

	switch sym.Kind {
	case frontend.SymPackage:
		return strings.ReplaceAll(sym.Name, ".", "/") + "/"
	case frontend.SymClass, frontend.SymInterface, frontend.SymEnum, frontend.SymAnnotationType:
		return owner + sym.Name + "#"
	case frontend.SymMethod, frontend.SymConstructor:
		// The disambiguator comes from the declaration itself, so the
		// string does not depend on which file was encoded first.
		if sym.Overload == 0 {
			return owner + sym.Name + "()."
		}
		return fmt.Sprintf("%s%s(+%d).", owner, sym.Name, sym.Overload)
	case frontend.SymField, frontend.SymEnumConstant:
		return owner + sym.Name + "."
	case frontend.SymTypeParameter:
		return owner + "[" + sym.Name + "]"
	case frontend.SymParameter:
		return owner + "(" + sym.Name + ")"
	default:
		return None
	}
}

// isLocal reports whether sym has no stable global name: locals, and
// anything enclosed in a nameless (anonymous) declaration.
func isLocal(sym *frontend.Symbol) bool {
	if sym.Kind == frontend.SymLocal {
		return true
	}
	for s := sym; s != nil; s = s.Owner {
		if s.Kind != frontend.SymPackage && s.Name == "" {
			return true
		}
	}
	return false
}

// LocalCache numbers the symbols of a single file. Not safe for concurrent
// use; each file gets its own.
type LocalCache struct {
	cache map[*frontend.Symbol]string
	next  int
}

// NewLocalCache creates an empty per-file cache.
func NewLocalCache() *LocalCache {
	return &LocalCache{cache: make(map[*frontend.Symbol]string)}
}

func (l *LocalCache) symbol(sym *frontend.Symbol) string {
	if s, ok := l.cache[sym]; ok {
		return s
	}
	s := fmt.Sprintf("local%d", l.next)
	l.next++
	l.cache[sym] = s
	return s
}

// Size returns how many local symbols have been numbered so far.
func (l *LocalCache) Size() int { return len(l.cache) }
