// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

// Savetree inspects RED save system blobs. It decodes a raw property
// blob (extracted from the save container by other tooling — container
// framing and compression are not handled here), and either writes a
// snapshot dump of the tree or verifies that the blob re-encodes
// byte-identically.
//
// Usage:
//
//	savetree dump --in system.bin [--out system.rfsd] [--compress zstd] [--config savetree.yaml]
//	savetree verify --in system.bin [--config savetree.yaml]
//	savetree show --in system.rfsd
//
// Exit codes:
//
//	0  success (verify: blob round-trips byte-identically)
//	1  verify found re-encode drift
//	2  error (unreadable input, bad arguments, broken framing)
package main
