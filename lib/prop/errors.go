// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import "errors"

// ErrStructuralMismatch is returned when a concrete decoder consumed a
// different byte count than the enclosing container declared for it.
// The decode result is discarded and the declared range is preserved
// as an Unknown capsule — the defensive policy that keeps the engine
// loadable against format variants it has never seen.
var ErrStructuralMismatch = errors.New("structural mismatch: decoder consumed a different byte count than declared")
