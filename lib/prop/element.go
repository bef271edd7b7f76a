// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"fmt"
	"math"

	"github.com/redforge/savetree/lib/stream"
)

// Element framing is the container side of every property record:
//
//	u16 type-name length, type-name bytes,
//	u32 payload length, payload bytes.
//
// The payload length is declared by the container, not self-described
// by the node. That declaration is what makes the defensive decode
// policy possible: a failing or misbehaving decoder is discarded and
// the declared range is preserved as an Unknown capsule, so siblings
// parse unaffected and the original bytes survive the round trip.

// DecodeElement reads one property record from c. Recoverable decode
// problems inside the payload (underruns, unknown layouts, a decoder
// consuming a different byte count than declared) degrade to an
// Unknown capsule over the payload; an error return means the record
// framing itself is unreadable, which the caller surfaces as a
// whole-session load failure.
func DecodeElement(c *stream.Cursor, ctx *Context) (Property, error) {
	typeName, err := c.ReadString()
	if err != nil {
		return nil, fmt.Errorf("reading property type name: %w", err)
	}
	declared, err := c.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading declared length of %q: %w", typeName, err)
	}

	// A declared length past the end of the buffer is recoverable:
	// whatever bytes are actually present become the capsule payload,
	// and the remainder of the buffer is not parsed further.
	length := int(declared)
	if length > c.Remaining() {
		length = c.Remaining()
	}
	payload, err := c.Read(length)
	if err != nil {
		return nil, fmt.Errorf("reading %d payload bytes of %q: %w", length, typeName, err)
	}

	name := ctx.Names.Intern(typeName)
	property := ctx.Registry.Resolve(typeName)(name)

	body := stream.NewCursor(payload)
	if decodeErr := property.Decode(body, ctx); decodeErr != nil || body.Remaining() != 0 {
		// Discard the structural result and keep the declared range
		// opaque, so siblings parse unaffected and the bytes survive
		// the round trip.
		if decodeErr == nil {
			decodeErr = fmt.Errorf("%q consumed %d of %d declared bytes: %w",
				typeName, body.Pos(), len(payload), ErrStructuralMismatch)
		}
		capsule := NewUnknown(name)
		capsule.raw = make([]byte, len(payload))
		copy(capsule.raw, payload)
		capsule.reason = decodeErr
		property = capsule
	}

	property.base().setCaptured(payload)
	return property, nil
}

// EncodeElement writes one property record to s. A skippable node with
// captured bytes replays them verbatim; a dirty node is re-encoded
// into a scratch sink first so the length header reflects its current
// size. Adjusting the length header here — not in the node — is what
// lets an Unknown capsule carry raw edits of a different size.
func EncodeElement(s *stream.Sink, p Property, ctx *Context) error {
	typeName, err := ctx.Names.Resolve(p.TypeName())
	if err != nil {
		return fmt.Errorf("resolving type name of node %d: %w", p.ID(), err)
	}
	if err := s.WriteString(typeName); err != nil {
		return fmt.Errorf("writing type name %q: %w", typeName, err)
	}

	if p.IsSkippable() && p.base().hasCaptured() {
		captured := p.base().captured
		if err := s.WriteUint32(uint32(len(captured))); err != nil {
			return err
		}
		return p.base().writeCaptured(s)
	}

	body := stream.NewSink()
	if err := p.Encode(body, ctx); err != nil {
		return fmt.Errorf("encoding %q node %d: %w", typeName, p.ID(), err)
	}
	payload := body.Bytes()
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("encoding %q node %d: payload of %d bytes exceeds u32 length header", typeName, p.ID(), len(payload))
	}
	if err := s.WriteUint32(uint32(len(payload))); err != nil {
		return err
	}
	return s.Write(payload)
}
