// Package notation names the two output notations a construct can be routed to.
package notation

// Notation selects the output notation for a construct.
type Notation int

const (
	// Procedural is the ordered constructor/method statement API (MCell4 Python).
	Procedural Notation = iota
	// Declarative is the rule notation consumed without statements (BNGL).
	Declarative
)

func (n Notation) String() string {
	switch n {
	case Procedural:
		return "procedural"
	case Declarative:
		return "declarative"
	}
	return "unknown"
}
