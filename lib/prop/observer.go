// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

// Event identifies what happened to a property node. There is a
// single event today; the type exists so the wire to editor widgets
// and undo trackers does not change when more are added.
type Event uint8

const (
	// EventModified means the node's value or children changed and it
	// may no longer match its originally loaded bytes.
	EventModified Event = iota
)

// Observer receives modification events from property nodes it has
// subscribed to. The node passes its stable integer identity rather
// than a reference to itself, so observers can be destroyed without
// leaving dangling back-references into the tree.
//
// Dispatch is synchronous on the mutating goroutine. An observer may
// itself mutate other nodes (triggering further notifications) —
// dispatch is a plain call stack with no locks, so reentrancy is safe.
type Observer interface {
	OnPropertyEvent(id uint64, event Event)
}

// Token identifies one subscription on one node. Unsubscribing with a
// token that was already removed is a no-op.
type Token uint64

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(id uint64, event Event)

// OnPropertyEvent calls f.
func (f ObserverFunc) OnPropertyEvent(id uint64, event Event) { f(id, event) }
