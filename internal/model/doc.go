// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the typed, in-memory representation of a data model
// document. Each section is decoded independently so that a broken section
// or item is recorded and reported by the phase that owns it while the rest
// of the document stays usable.
//
// # Core Concepts
//
//   - Model: the root container aggregating every decoded section.
//   - Problem: a decoding failure scoped to one item of a section.
//   - Section errors: failures that invalidate a whole section, such as a
//     version mismatch or a missing required list.
package model
