// Package generr defines the error taxonomy used across a generation run.
//
// Every failure is classified into one of four kinds so the phase runner can
// decide whether to continue:
//
//   - [ErrStructural]: missing required field or data model version mismatch
//   - [ErrSyntax]: malformed mini-language text (reaction sides, counts)
//   - [ErrSemantic]: undefined identifier, duplicate name, circular dependency
//   - [ErrIO]: output cannot be written; fatal for the whole run
//
// Callers classify with errors.Is, e.g. errors.Is(err, generr.ErrSyntax).
package generr
