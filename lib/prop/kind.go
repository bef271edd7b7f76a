// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import "fmt"

// Kind tags a property node with the decode/encode rules that apply to
// it. The set is closed: one implementation per tag, plus the Unknown
// capsule that every unrecognized type name falls back to. A node's
// kind is fixed at construction and never changes.
type Kind uint8

const (
	// KindUnknown is the byte-exact fallback for type names the
	// registry does not model structurally.
	KindUnknown Kind = iota

	// KindBool is a one-byte boolean.
	KindBool

	// KindInteger is a little-endian int32.
	KindInteger

	// KindFloat is a little-endian IEEE 754 float32.
	KindFloat

	// KindDouble is a little-endian IEEE 754 float64.
	KindDouble

	// KindCombo is an enumerated choice: a selected index plus the
	// option names it selects among.
	KindCombo

	// KindArray is a fixed-count container (u16 count header).
	KindArray

	// KindDynArray is a growable container (u32 count header).
	KindDynArray

	// KindHandle is a non-owning index into the session's object
	// handle table.
	KindHandle

	// KindObject is a named-field container.
	KindObject

	// KindTweakDBID is a 64-bit tweak database record id.
	KindTweakDBID

	// KindCName is a pooled name reference (u16 index into the
	// session string pool's table).
	KindCName

	// KindNodeRef is a world-node reference; its wire form depends on
	// the format version (path string in v1, path hash in v2+).
	KindNodeRef
)

// String returns the display name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindBool:
		return "Bool"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindCombo:
		return "Combo"
	case KindArray:
		return "Array"
	case KindDynArray:
		return "DynArray"
	case KindHandle:
		return "Handle"
	case KindObject:
		return "Object"
	case KindTweakDBID:
		return "TweakDBID"
	case KindCName:
		return "CName"
	case KindNodeRef:
		return "NodeRef"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}
