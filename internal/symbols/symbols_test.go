package symbols

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semdex/internal/frontend"
)

// Test Plan for symbol naming:
// - Packages encode dots as slashes with a trailing slash
// - Types, methods, fields, type parameters, and parameters get their
//   SemanticDB descriptor suffixes
// - Method overloads on the same owner are numbered (+1), (+2), ...
//   by their declaration-order index
// - Encoding the same declarations again through fresh symbol pointers
//   yields identical strings
// - Files without a package declaration fall under _empty_/
// - The same *Symbol always yields the same string
// - Locals and members of anonymous classes get per-file localN names
// - Concurrent lookups of global symbols are safe and agree

func pkg(name string) *frontend.Symbol {
	return &frontend.Symbol{Kind: frontend.SymPackage, Name: name}
}

func TestGlobalCache_Descriptors(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()
	l := NewLocalCache()

	p := pkg("com.example")
	cls := &frontend.Symbol{Kind: frontend.SymClass, Name: "Widget", Owner: p}
	iface := &frontend.Symbol{Kind: frontend.SymInterface, Name: "Closer", Owner: p}
	method := &frontend.Symbol{Kind: frontend.SymMethod, Name: "resize", Owner: cls}
	ctor := &frontend.Symbol{Kind: frontend.SymConstructor, Name: "<init>", Owner: cls}
	field := &frontend.Symbol{Kind: frontend.SymField, Name: "width", Owner: cls}
	tparam := &frontend.Symbol{Kind: frontend.SymTypeParameter, Name: "T", Owner: cls}
	param := &frontend.Symbol{Kind: frontend.SymParameter, Name: "w", Owner: method}

	// Test: each symbol kind carries its descriptor suffix
	assert.Equal(t, "com/example/", g.Symbol(p, l))
	assert.Equal(t, "com/example/Widget#", g.Symbol(cls, l))
	assert.Equal(t, "com/example/Closer#", g.Symbol(iface, l))
	assert.Equal(t, "com/example/Widget#resize().", g.Symbol(method, l))
	assert.Equal(t, "com/example/Widget#<init>().", g.Symbol(ctor, l))
	assert.Equal(t, "com/example/Widget#width.", g.Symbol(field, l))
	assert.Equal(t, "com/example/Widget#[T]", g.Symbol(tparam, l))
	assert.Equal(t, "com/example/Widget#resize().(w)", g.Symbol(param, l))
}

func TestGlobalCache_NestedTypes(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()
	l := NewLocalCache()

	p := pkg("a.b")
	outer := &frontend.Symbol{Kind: frontend.SymClass, Name: "Outer", Owner: p}
	inner := &frontend.Symbol{Kind: frontend.SymClass, Name: "Inner", Owner: outer}
	field := &frontend.Symbol{Kind: frontend.SymField, Name: "x", Owner: inner}

	// Test: descriptors chain owner-first through nested types
	assert.Equal(t, "a/b/Outer#Inner#x.", g.Symbol(field, l))
}

func TestGlobalCache_Overloads(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()
	l := NewLocalCache()

	cls := &frontend.Symbol{Kind: frontend.SymClass, Name: "Box", Owner: pkg("p")}
	m1 := &frontend.Symbol{Kind: frontend.SymMethod, Name: "put", Owner: cls}
	m2 := &frontend.Symbol{Kind: frontend.SymMethod, Name: "put", Owner: cls, Overload: 1}
	m3 := &frontend.Symbol{Kind: frontend.SymMethod, Name: "put", Owner: cls, Overload: 2}

	// Test: overloads are numbered by their declaration-order index
	assert.Equal(t, "p/Box#put().", g.Symbol(m1, l))
	assert.Equal(t, "p/Box#put(+1).", g.Symbol(m2, l))
	assert.Equal(t, "p/Box#put(+2).", g.Symbol(m3, l))

	// Test: repeated lookups return the cached string
	assert.Equal(t, "p/Box#put().", g.Symbol(m1, l))
	assert.Equal(t, "p/Box#put(+1).", g.Symbol(m2, l))
}

func TestGlobalCache_StableAcrossReencoding(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()

	// A reparse hands the cache fresh pointers for the same declarations.
	encode := func() []string {
		p := pkg("p")
		cls := &frontend.Symbol{Kind: frontend.SymClass, Name: "A", Owner: p}
		m := &frontend.Symbol{Kind: frontend.SymMethod, Name: "m", Owner: cls}
		m2 := &frontend.Symbol{Kind: frontend.SymMethod, Name: "m", Owner: cls, Overload: 1}
		l := NewLocalCache()
		return []string{g.Symbol(m, l), g.Symbol(m2, l)}
	}

	// Test: the second encoding of the same file agrees with the first
	first := encode()
	second := encode()
	assert.Equal(t, []string{"p/A#m().", "p/A#m(+1)."}, first)
	assert.Equal(t, first, second)
}

func TestGlobalCache_NoPackage(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()
	l := NewLocalCache()

	cls := &frontend.Symbol{Kind: frontend.SymClass, Name: "Main"}

	// Test: a nil owner falls under the _empty_/ root package
	assert.Equal(t, "_empty_/Main#", g.Symbol(cls, l))
}

func TestGlobalCache_NilSymbol(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()
	l := NewLocalCache()

	// Test: nil yields the None sentinel
	assert.Equal(t, None, g.Symbol(nil, l))
}

func TestLocalCache_Numbering(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()
	l := NewLocalCache()

	method := &frontend.Symbol{Kind: frontend.SymMethod, Name: "run", Owner: &frontend.Symbol{Kind: frontend.SymClass, Name: "App"}}
	a := &frontend.Symbol{Kind: frontend.SymLocal, Name: "a", Owner: method}
	b := &frontend.Symbol{Kind: frontend.SymLocal, Name: "b", Owner: method}

	// Test: locals are numbered in first-seen order and stay stable
	assert.Equal(t, "local0", g.Symbol(a, l))
	assert.Equal(t, "local1", g.Symbol(b, l))
	assert.Equal(t, "local0", g.Symbol(a, l))
	assert.Equal(t, 2, l.Size())

	// Test: a fresh per-file cache restarts numbering
	l2 := NewLocalCache()
	assert.Equal(t, "local0", g.Symbol(b, l2))
}

func TestGlobalCache_AnonymousMembersAreLocal(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()
	l := NewLocalCache()

	anon := &frontend.Symbol{Kind: frontend.SymClass, Owner: pkg("p")}
	method := &frontend.Symbol{Kind: frontend.SymMethod, Name: "call", Owner: anon}

	// Test: members enclosed in a nameless class have no global name
	assert.Equal(t, "local0", g.Symbol(anon, l))
	assert.Equal(t, "local1", g.Symbol(method, l))
}

func TestGlobalCache_Concurrent(t *testing.T) {
	t.Parallel()

	g := NewGlobalCache()
	cls := &frontend.Symbol{Kind: frontend.SymClass, Name: "Shared", Owner: pkg("p")}
	method := &frontend.Symbol{Kind: frontend.SymMethod, Name: "go", Owner: cls}

	// Test: concurrent files resolving the same globals agree on one name
	results := make([]string, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.Symbol(method, NewLocalCache())
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, "p/Shared#go().", r)
	}
}
