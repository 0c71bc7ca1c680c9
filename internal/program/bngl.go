package program

import (
	"fmt"
	"strings"
)

// Declarative file block names in file order.
const (
	BlockParameters    = "parameters"
	BlockMoleculeTypes = "molecule types"
	BlockCompartments  = "compartments"
	BlockSeedSpecies   = "seed species"
	BlockReactionRules = "reaction rules"
	BlockObservables   = "observables"
)

var blockOrder = []string{
	BlockParameters, BlockMoleculeTypes, BlockCompartments,
	BlockSeedSpecies, BlockReactionRules, BlockObservables,
}

// BNGL is the declarative rule file under construction.
type BNGL struct {
	blocks map[string][]string
	used   bool
}

func newBNGL() *BNGL {
	return &BNGL{blocks: make(map[string][]string)}
}

// Line appends one formatted line to block.
func (b *BNGL) Line(block, format string, args ...any) {
	b.blocks[block] = append(b.blocks[block], fmt.Sprintf(format, args...))
}

// Comment appends comment lines to block.
func (b *BNGL) Comment(block, text string) {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		b.blocks[block] = append(b.blocks[block], strings.TrimRight("# "+l, " "))
	}
}

// MarkUsed records that a construct was routed declaratively, so the file
// must be written and loaded.
func (b *BNGL) MarkUsed() { b.used = true }

// Used reports whether any construct was routed declaratively.
func (b *BNGL) Used() bool { return b.used }

func (b *BNGL) render() string {
	var sb strings.Builder
	first := true
	for _, name := range blockOrder {
		lines := b.blocks[name]
		if len(lines) == 0 {
			continue
		}
		if !first {
			sb.WriteByte('\n')
		}
		first = false
		sb.WriteString("begin " + name + "\n")
		for _, l := range lines {
			sb.WriteString("  " + l + "\n")
		}
		sb.WriteString("end " + name + "\n")
	}
	return sb.String()
}
