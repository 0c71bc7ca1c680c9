// Package dag holds a small directed dependency graph used to order generated
// definitions. Nodes keep their insertion order so that every traversal, and
// therefore every generated program, is deterministic.
package dag
