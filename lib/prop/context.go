// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"github.com/redforge/savetree/lib/objgraph"
	"github.com/redforge/savetree/lib/stringpool"
)

// Context carries the session-scoped state threaded through every
// decode and encode call: the string pool, the external object-handle
// table, the kind registry, and the format version selecting which
// wire-layout quirks apply.
//
// A context belongs to one load→edit→save session. It is passed by
// pointer through the recursion and never copied; name handles and
// object indices resolved through it stay valid until the session
// ends, because both tables only grow. A session abandoned mid-load is
// discarded together with its context, never resumed.
type Context struct {
	// Names is the session string pool. The outer container layer
	// preloads it with the save's name table before property decode
	// begins; encode may grow it (indices never move).
	Names *stringpool.Pool

	// Graph is the external object-handle table. Handle and NodeRef
	// properties hold indices into it, never ownership.
	Graph *objgraph.Graph

	// Registry resolves type names to node constructors. Read-only
	// for the duration of the session.
	Registry *Registry

	// Version is the save format version. Kind decoders consult it
	// for layout variants (NodeRef stores a path string in version 1
	// and a path hash from version 2 on).
	Version uint32
}

// NewContext returns a session context with a fresh string pool and
// object graph. Callers integrating with an existing object-graph
// manager assign Graph directly after construction.
func NewContext(registry *Registry, version uint32) *Context {
	return &Context{
		Names:    stringpool.NewPool(),
		Graph:    objgraph.NewGraph(),
		Registry: registry,
		Version:  version,
	}
}
