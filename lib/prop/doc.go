// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package prop is the polymorphic property-tree serialization engine
// for RED save system blobs. It decodes a byte buffer into a tree of
// kind-tagged property nodes, lets callers inspect and mutate them,
// and re-encodes the tree back to bytes.
//
// The format is only partially documented, so the engine is built
// around one guarantee: any subtree untouched since load re-encodes to
// bit-identical output. Every node captures the exact payload bytes it
// was decoded from; a clean node replays them verbatim on encode, and
// type names the registry does not recognize decode into an opaque
// Unknown capsule instead of failing the load.
//
// Mutations go through node mutators, which call NotifyModified. That
// sets the dirty flag, synchronously notifies subscribed observers,
// and bubbles up through the owning containers, so IsSkippable turns
// false along the whole ancestor path. Dirty is permanent for the
// session: even an edit reverted to the original value forfeits the
// byte-replay optimization for that subtree (a guaranteed superset of
// the necessary re-encodes).
//
// The engine is single-threaded by design. A tree, its Context, and
// its string pool belong to one load→edit→save session on one
// goroutine; observer dispatch is a plain call stack with no locks, so
// reentrant notification cannot deadlock.
package prop
