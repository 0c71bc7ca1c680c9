// Package expr tokenizes arithmetic and function-call expressions found in the
// data model and rewrites them for one of the two output notations.
//
// The scanner has three states (default, in-identifier, in-number). Completed
// identifiers are looked up in a fixed cross-notation function table;
// unrecognized identifiers are copied untouched because they are parameter
// references valid in both notations.
package expr
