// Package datamodel is the Data Model Accessor: safe traversal of the
// tool-authored JSON document with presence and version checks.
//
// The document is decoded into a yaml.v3 node tree rather than into Go maps so
// that every value keeps its source line and its literal text. Expressions
// such as "1e-6" must reach the generators exactly as authored.
package datamodel
