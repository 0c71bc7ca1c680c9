package program

import (
	"fmt"
	"strings"
)

// Unit names in file order. The orchestration unit imports every other one.
const (
	Parameters    = "parameters"
	Subsystem     = "subsystem"
	Geometry      = "geometry"
	Instantiation = "instantiation"
	Observables   = "observables"
	Model         = "model"
)

var unitOrder = []string{Parameters, Subsystem, Geometry, Instantiation, Observables, Model}

// unitDeps lists, per unit, the units its statements may reference.
var unitDeps = map[string][]string{
	Parameters:    nil,
	Subsystem:     {Parameters},
	Geometry:      {Parameters, Subsystem},
	Instantiation: {Parameters, Subsystem, Geometry},
	Observables:   {Parameters, Subsystem, Geometry},
	Model:         {Parameters, Subsystem, Geometry, Instantiation, Observables},
}

// Unit is one procedural program file under construction.
type Unit struct {
	name    string
	modules []string
	lines   []string
	// pending is a section title not yet written.
	pending string
}

// Name is the unit name, e.g. "subsystem".
func (u *Unit) Name() string { return u.name }

// Module adds a plain `import <name>` line to the unit.
func (u *Unit) Module(name string) {
	for _, m := range u.modules {
		if m == name {
			return
		}
	}
	u.modules = append(u.modules, name)
}

// Line appends one formatted line.
func (u *Unit) Line(format string, args ...any) {
	u.append(fmt.Sprintf(format, args...))
}

// Raw appends s verbatim; a multi-line s becomes several lines.
func (u *Unit) Raw(s string) {
	u.append(strings.Split(s, "\n")...)
}

// Blank appends an empty line. It is dropped while a section banner is
// pending, since the banner brings its own spacing.
func (u *Unit) Blank() {
	if u.pending != "" {
		return
	}
	u.lines = append(u.lines, "")
}

// Comment appends text as comment lines prefixed with indent.
func (u *Unit) Comment(indent, text string) {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		u.append(strings.TrimRight(indent+"# "+l, " "))
	}
}

// Section starts a section. Its banner is written just before the next
// line, so a section that receives no lines leaves nothing behind.
func (u *Unit) Section(title string) {
	u.pending = title
}

func (u *Unit) append(lines ...string) {
	if u.pending != "" {
		if len(u.lines) > 0 {
			u.lines = append(u.lines, "")
		}
		u.lines = append(u.lines, "# ---- "+u.pending+" ----", "")
		u.pending = ""
	}
	u.lines = append(u.lines, lines...)
}

// Error records an error comment in place of a statement.
func (u *Unit) Error(item string, err error) {
	msg := err.Error()
	if item != "" && !strings.Contains(msg, item) {
		msg = item + ": " + msg
	}
	u.Comment("", "ERROR: "+msg)
}

// Len is the number of body lines.
func (u *Unit) Len() int { return len(u.lines) }
