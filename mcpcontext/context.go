// Package mcpcontext implements the typed, type-indexed shared-state
// container described in §4.G: an immutable map built once at server
// construction, from which tool handlers project the shared resources they
// declare by parameter type.
package mcpcontext

import (
	"fmt"
	"reflect"
)

// Shared is a cloneable, reference-counted-in-spirit handle over a value of
// type T. Go has no Arc, but a pointer already gives the properties the
// spec asks for: cheap copies, and equality meaning identity of the
// referent rather than structural equality of T.
type Shared[T any] struct {
	ptr *T
}

// NewShared wraps v so it can be inserted into a Context and injected into
// tool handlers by type.
func NewShared[T any](v T) Shared[T] {
	p := new(T)
	*p = v
	return Shared[T]{ptr: p}
}

// Get returns the underlying value. Callers relying on interior mutability
// (e.g. a struct containing a sync.Mutex) should store that mutability in T
// itself, per spec §3.
func (s Shared[T]) Get() *T {
	return s.ptr
}

// Builder accumulates state to be frozen into a Context. Last insert for a
// given type wins, matching spec §4.G ("no removal, no overwrite semantics
// need be defined beyond last-insert-wins at build time").
type Builder struct {
	values map[reflect.Type]any
}

// NewBuilder starts an empty context builder.
func NewBuilder() *Builder {
	return &Builder{values: make(map[reflect.Type]any)}
}

// Insert records value, keyed by the wrapper type Shared[T] (per spec §9,
// resolving the source's Inject<T>/data.rs vs context.rs duplication in
// favor of keying by the wrapper type so lookups by Shared[T] are exact).
func Insert[T any](b *Builder, value Shared[T]) *Builder {
	b.values[reflect.TypeOf(value)] = value
	return b
}

// Build freezes the accumulated state into an immutable Context.
func (b *Builder) Build() *Context {
	frozen := make(map[reflect.Type]any, len(b.values))
	for k, v := range b.values {
		frozen[k] = v
	}
	return &Context{values: frozen}
}

// Context is an immutable, type-indexed map of shared resources, built once
// at server construction and read-only thereafter.
type Context struct {
	values map[reflect.Type]any
}

// Get retrieves the Shared[T] entry for T, if present.
func Get[T any](ctx *Context) (Shared[T], bool) {
	var zero Shared[T]
	key := reflect.TypeOf(zero)
	v, ok := ctx.values[key]
	if !ok {
		return zero, false
	}
	return v.(Shared[T]), true
}

// MustGet retrieves the Shared[T] entry for T, aborting the process with a
// clear diagnostic if it is absent. Per spec §4.G, a missing injected type
// is a programmer error, not a condition tool handlers should have to
// recover from.
func MustGet[T any](ctx *Context) Shared[T] {
	value, ok := Get[T](ctx)
	if !ok {
		var zero T
		panic(fmt.Sprintf("mcpcontext: tried to inject %T but it was not registered in the MCPServer's state", zero))
	}
	return value
}
