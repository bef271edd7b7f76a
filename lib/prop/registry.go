// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"fmt"

	"github.com/redforge/savetree/lib/stringpool"
)

// Factory constructs an empty node for a type name, ready for Decode.
// The name handle is the interned form of the wire type name.
type Factory func(typeName stringpool.Name) Property

// Registry maps exact type names to node constructors. It is built
// once at bootstrap, injected into the session context, and read-only
// during decoding — no synchronization is needed at resolve time.
//
// Resolution never fails: a name nobody registered resolves to the
// Unknown capsule constructor, so an unmodeled kind costs structural
// insight, not data.
type Registry struct {
	entries map[string]registration
}

type registration struct {
	kind    Kind
	factory Factory
}

// NewRegistry returns an empty registry. Most callers want
// DefaultRegistry and then Register for any save-specific names.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register binds a wire type name to a kind tag and constructor.
// Matching is exact — no prefixes, no patterns. Registering a name
// twice is a bootstrap bug and returns an error.
func (r *Registry) Register(name string, kind Kind, factory Factory) error {
	if name == "" {
		return fmt.Errorf("registering kind %s: empty type name", kind)
	}
	if existing, ok := r.entries[name]; ok {
		return fmt.Errorf("registering %q as %s: already registered as %s", name, kind, existing.kind)
	}
	r.entries[name] = registration{kind: kind, factory: factory}
	return nil
}

// Resolve returns the constructor for name, falling back to the
// Unknown capsule constructor for names nobody registered.
func (r *Registry) Resolve(name string) Factory {
	if entry, ok := r.entries[name]; ok {
		return entry.factory
	}
	return func(typeName stringpool.Name) Property {
		return NewUnknown(typeName)
	}
}

// Lookup reports the kind registered for name, if any. Used by
// inspection tooling; the decode path goes through Resolve.
func (r *Registry) Lookup(name string) (Kind, bool) {
	entry, ok := r.entries[name]
	return entry.kind, ok
}

// Len returns the number of registered names.
func (r *Registry) Len() int { return len(r.entries) }

// DefaultRegistry returns a registry preloaded with the canonical wire
// names for every modeled kind. Save-specific aliases (the format
// reuses layouts under many type names) are added on top via Register,
// typically from the tool configuration.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, binding := range []struct {
		name    string
		kind    Kind
		factory Factory
	}{
		{"Bool", KindBool, func(n stringpool.Name) Property { return NewBool(n) }},
		{"Int32", KindInteger, func(n stringpool.Name) Property { return NewInteger(n) }},
		{"Float", KindFloat, func(n stringpool.Name) Property { return NewFloat(n) }},
		{"Double", KindDouble, func(n stringpool.Name) Property { return NewDouble(n) }},
		{"Combo", KindCombo, func(n stringpool.Name) Property { return NewCombo(n) }},
		{"Array", KindArray, func(n stringpool.Name) Property { return NewArray(n) }},
		{"DynArray", KindDynArray, func(n stringpool.Name) Property { return NewDynArray(n) }},
		{"Handle", KindHandle, func(n stringpool.Name) Property { return NewHandle(n) }},
		{"Object", KindObject, func(n stringpool.Name) Property { return NewObject(n) }},
		{"TweakDBID", KindTweakDBID, func(n stringpool.Name) Property { return NewTweakDBID(n) }},
		{"CName", KindCName, func(n stringpool.Name) Property { return NewCName(n) }},
		{"NodeRef", KindNodeRef, func(n stringpool.Name) Property { return NewNodeRef(n) }},
	} {
		// Names are distinct literals; Register cannot fail here.
		if err := r.Register(binding.name, binding.kind, binding.factory); err != nil {
			panic("prop: default registry bootstrap: " + err.Error())
		}
	}
	return r
}

// RegisterAlias binds an additional wire name to an already-modeled
// kind, using the same constructor the canonical name uses. Unknown
// kinds cannot be aliased — they are the fallback already.
func (r *Registry) RegisterAlias(name string, kind Kind) error {
	var factory Factory
	switch kind {
	case KindBool:
		factory = func(n stringpool.Name) Property { return NewBool(n) }
	case KindInteger:
		factory = func(n stringpool.Name) Property { return NewInteger(n) }
	case KindFloat:
		factory = func(n stringpool.Name) Property { return NewFloat(n) }
	case KindDouble:
		factory = func(n stringpool.Name) Property { return NewDouble(n) }
	case KindCombo:
		factory = func(n stringpool.Name) Property { return NewCombo(n) }
	case KindArray:
		factory = func(n stringpool.Name) Property { return NewArray(n) }
	case KindDynArray:
		factory = func(n stringpool.Name) Property { return NewDynArray(n) }
	case KindHandle:
		factory = func(n stringpool.Name) Property { return NewHandle(n) }
	case KindObject:
		factory = func(n stringpool.Name) Property { return NewObject(n) }
	case KindTweakDBID:
		factory = func(n stringpool.Name) Property { return NewTweakDBID(n) }
	case KindCName:
		factory = func(n stringpool.Name) Property { return NewCName(n) }
	case KindNodeRef:
		factory = func(n stringpool.Name) Property { return NewNodeRef(n) }
	default:
		return fmt.Errorf("aliasing %q: kind %s has no concrete constructor", name, kind)
	}
	return r.Register(name, kind, factory)
}
