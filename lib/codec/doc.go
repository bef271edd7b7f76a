// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides savetree's standard CBOR encoding
// configuration.
//
// The save format itself is decoded and re-encoded byte-for-byte by
// lib/prop and never passes through this package. CBOR is used for
// derived artifacts: snapshot dumps of a decoded property tree
// (lib/dump) and any on-disk tool state. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. Same logical tree
// always produces identical snapshot bytes, which is what makes
// snapshots diffable across tool runs.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (snapshot files):
//
//	encoder := codec.NewEncoder(file)
//	decoder := codec.NewDecoder(file)
//
// Types serialized as CBOR carry `cbor` struct tags. Diagnose renders
// encoded data in RFC 8949 diagnostic notation for the CLI's snapshot
// inspection output.
package codec
