// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package stream provides the byte cursor and sink used by the
// property serialization engine. A Cursor reads sequentially from an
// in-memory buffer supplied by the outer container layer (which owns
// record framing, indices, and decompression — none of that is modeled
// here). A Sink accumulates encoded output.
//
// All multi-byte scalars are little-endian, matching the save format.
//
// Short reads return ErrBufferUnderrun rather than panicking; the
// property layer treats underruns as recoverable and degrades the
// affected range to an opaque capsule.
package stream
