/*
Package ident maps human-authored data model names onto identifiers that are
valid in both target notations and tracks every identifier bound during one
generation run.

Sanitize is a pure, idempotent function driven by a character-class table:
operators and punctuation become fixed words (`+` becomes `_plus_`),
separators become underscores, alphanumerics pass through and everything else
is dropped. Registry binds each sanitized identifier to exactly one
(category, source name) pair.
*/
package ident
