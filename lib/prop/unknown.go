// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"github.com/redforge/savetree/lib/stream"
	"github.com/redforge/savetree/lib/stringpool"
)

// UnknownProperty is the byte-exact capsule for kinds the engine does
// not model structurally. It owns the declared-length byte range
// exactly as read and replays it verbatim on encode — the safety net
// that makes the engine viable against an incompletely documented
// format.
type UnknownProperty struct {
	node
	raw    []byte
	reason error
}

// NewUnknown returns an empty capsule for the given type name.
func NewUnknown(typeName stringpool.Name) *UnknownProperty {
	return &UnknownProperty{node: newNode(KindUnknown, typeName)}
}

// RawData returns the capsule's bytes. The slice is the capsule's own
// storage; use SetRawData to modify it.
func (p *UnknownProperty) RawData() []byte { return p.raw }

// Reason reports why this capsule exists: nil when the type name was
// simply not registered, ErrStructuralMismatch (wrapped) when a
// concrete decoder consumed a different byte count than declared, or
// the decoder's own error when it failed outright. Inspection tooling
// surfaces this; the engine itself never acts on it.
func (p *UnknownProperty) Reason() error { return p.reason }

// SetRawData replaces the capsule's bytes with a copy of raw. The
// enclosing container adjusts its length header on encode; the capsule
// itself has no length to maintain.
func (p *UnknownProperty) SetRawData(raw []byte) {
	p.raw = make([]byte, len(raw))
	copy(p.raw, raw)
	p.NotifyModified()
}

// Decode captures the declared-length byte range as an opaque
// sequence. The enclosing container supplies the range by slicing the
// cursor, so everything remaining belongs to this capsule.
func (p *UnknownProperty) Decode(c *stream.Cursor, ctx *Context) error {
	raw, err := c.Read(c.Remaining())
	if err != nil {
		return err
	}
	p.raw = make([]byte, len(raw))
	copy(p.raw, raw)
	return nil
}

// Encode writes the captured bytes verbatim — or, after SetRawData,
// the edited bytes.
func (p *UnknownProperty) Encode(s *stream.Sink, ctx *Context) error {
	return s.Write(p.raw)
}
