// Package program is the Program Assembler. It collects generated statements
// into named procedural units and the sections of the declarative rule file,
// resolves cross-unit imports, and renders and writes the output files.
package program
