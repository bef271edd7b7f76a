// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"sync/atomic"

	"github.com/redforge/savetree/lib/stream"
	"github.com/redforge/savetree/lib/stringpool"
)

// Property is one node in the decoded save tree. The implementation
// set is closed over the Kind enumeration: the unexported base method
// keeps external packages from adding variants the framing logic has
// never seen.
//
// Decode consumes exactly the bytes belonging to the property from its
// cursor and returns a recoverable error on failure — never a panic.
// When the enclosing container supplied a declared length, the
// container (not the node) guarantees sibling parsing is unaffected by
// substituting an Unknown capsule over the declared range; see
// DecodeElement.
//
// Encode on a clean node reproduces the exact bytes previously
// decoded. Encode on a dirty node re-encodes from current state in the
// node's own binary layout.
type Property interface {
	// Kind returns the node's tag, fixed at construction.
	Kind() Kind

	// TypeName returns the interned handle of the node's type name,
	// valid against the session pool that decoded it.
	TypeName() stringpool.Name

	// ID returns the node's stable integer identity, assigned at
	// construction. Event payloads carry this id instead of a
	// reference to the node.
	ID() uint64

	// Decode consumes the property's bytes from c, advancing it to the
	// first byte past them.
	Decode(c *stream.Cursor, ctx *Context) error

	// Encode writes the property's bytes to s.
	Encode(s *stream.Sink, ctx *Context) error

	// Subscribe registers an observer for modification events and
	// returns the token that removes it. The node does not own the
	// observer.
	Subscribe(o Observer) Token

	// Unsubscribe removes a previously registered observer. Unknown
	// tokens are ignored.
	Unsubscribe(t Token)

	// NotifyModified marks the node dirty, synchronously dispatches
	// EventModified to its observers, and bubbles to the owning
	// container chain.
	NotifyModified()

	// IsSkippable reports whether encoding may replay the node's
	// originally loaded bytes. False once the node — or, for
	// containers, any descendant — has been modified.
	IsSkippable() bool

	base() *node
}

// nodeSerial issues stable node identities. Atomic only so that
// independent sessions on different goroutines can construct nodes;
// within a session everything is single-threaded.
var nodeSerial atomic.Uint64

// node carries the state shared by every property kind: the fixed
// kind tag, the interned type name, the stable identity, the dirty
// flag, the owning container back-pointer, the subscriber set, and the
// originally captured payload bytes for clean replay.
type node struct {
	kind     Kind
	typeName stringpool.Name
	id       uint64

	dirty  bool
	parent Property

	observers map[Token]Observer
	nextToken Token

	captured []byte
}

func newNode(kind Kind, typeName stringpool.Name) node {
	return node{
		kind:     kind,
		typeName: typeName,
		id:       nodeSerial.Add(1),
	}
}

func (n *node) Kind() Kind                { return n.kind }
func (n *node) TypeName() stringpool.Name { return n.typeName }
func (n *node) ID() uint64                { return n.id }
func (n *node) base() *node               { return n }

// IsSkippable on the base covers leaf kinds. Container kinds shadow it
// to aggregate over their children.
func (n *node) IsSkippable() bool { return !n.dirty }

// Subscribe registers o and returns its removal token.
func (n *node) Subscribe(o Observer) Token {
	if n.observers == nil {
		n.observers = make(map[Token]Observer)
	}
	n.nextToken++
	token := n.nextToken
	n.observers[token] = o
	return token
}

// Unsubscribe removes the subscription identified by t.
func (n *node) Unsubscribe(t Token) {
	delete(n.observers, t)
}

// NotifyModified sets the dirty flag, dispatches to the current
// subscriber set, and bubbles to the owning container. The subscriber
// set is snapshotted before dispatch so an observer may subscribe or
// unsubscribe reentrantly without disturbing the iteration.
func (n *node) NotifyModified() {
	n.dirty = true

	if len(n.observers) > 0 {
		snapshot := make([]Observer, 0, len(n.observers))
		for _, o := range n.observers {
			snapshot = append(snapshot, o)
		}
		for _, o := range snapshot {
			o.OnPropertyEvent(n.id, EventModified)
		}
	}

	if n.parent != nil {
		n.parent.NotifyModified()
	}
}

// attach records the owning container. Containers call this when a
// child is decoded into or inserted under them.
func (n *node) attach(parent Property) { n.parent = parent }

// setCaptured records the exact payload bytes the node was decoded
// from. The copy decouples the node from the caller's load buffer.
func (n *node) setCaptured(payload []byte) {
	n.captured = make([]byte, len(payload))
	copy(n.captured, payload)
}

func (n *node) hasCaptured() bool { return n.captured != nil }

// writeCaptured replays the originally loaded bytes.
func (n *node) writeCaptured(s *stream.Sink) error {
	return s.Write(n.captured)
}
