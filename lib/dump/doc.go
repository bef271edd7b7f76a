// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package dump turns a decoded property tree into a snapshot file:
// a deterministic CBOR rendering of every node, wrapped in a small
// binary envelope carrying the save format version, a BLAKE3 digest of
// the source blob, and an optional compression layer (lz4 or zstd).
//
// Snapshots are derived artifacts for inspection and diffing — the
// save itself always round-trips through lib/prop byte-for-byte. The
// digest ties a snapshot to the exact bytes it was taken from, so a
// diff between two snapshots is meaningful evidence of what an edit
// changed.
package dump
