package program

import (
	"strings"
)

// Version is reported in generated headers outside testing mode.
const Version = "0.4.0"

// FailureWarning heads every file of a run that reported errors.
const FailureWarning = "WARNING: errors were reported while generating this file; it is best-effort output and may contain errors."

// File is one rendered output file.
type File struct {
	Name    string
	Content string
}

// Program is the complete generated output of one run.
type Program struct {
	prefix string
	units  map[string]*Unit
	bngl   *BNGL
}

// New creates an empty program whose files are named after prefix.
func New(prefix string) *Program {
	p := &Program{prefix: prefix, units: make(map[string]*Unit), bngl: newBNGL()}
	for _, name := range unitOrder {
		p.units[name] = &Unit{name: name}
	}
	return p
}

// Prefix is the output name prefix.
func (p *Program) Prefix() string { return p.prefix }

// Unit returns the named procedural unit. It panics on unknown names.
func (p *Program) Unit(name string) *Unit {
	u, ok := p.units[name]
	if !ok {
		panic("program: unknown unit " + name)
	}
	return u
}

// BNGL returns the declarative file.
func (p *Program) BNGL() *BNGL { return p.bngl }

// FileName returns the file name of a unit.
func (p *Program) FileName(unit string) string {
	return p.prefix + "_" + unit + ".py"
}

// ModuleName returns the import name of a unit.
func (p *Program) ModuleName(unit string) string {
	return p.prefix + "_" + unit
}

// BNGLFileName is the name of the declarative file.
func (p *Program) BNGLFileName() string {
	return p.prefix + ".bngl"
}

// FileNames lists the files Render produces, in the same order.
func (p *Program) FileNames() []string {
	names := make([]string, 0, len(unitOrder)+1)
	for _, name := range unitOrder {
		names = append(names, p.FileName(name))
	}
	if p.bngl.Used() {
		names = append(names, p.BNGLFileName())
	}
	return names
}

// RenderOptions control file headers.
type RenderOptions struct {
	Failed  bool
	Testing bool
}

func (p *Program) header(sb *strings.Builder, opts RenderOptions) {
	if opts.Failed {
		sb.WriteString("# " + FailureWarning + "\n")
	}
	if opts.Testing {
		sb.WriteString("# Generated by dm2mcell.\n")
	} else {
		sb.WriteString("# Generated by dm2mcell " + Version + ".\n")
	}
	sb.WriteString("\n")
}

// Render returns the output files in a fixed order. The declarative file is
// included only when some construct used it.
func (p *Program) Render(opts RenderOptions) []File {
	var files []File
	for _, name := range unitOrder {
		u := p.units[name]
		var sb strings.Builder
		p.header(&sb, opts)
		for _, mod := range u.modules {
			sb.WriteString("import " + mod + "\n")
		}
		sb.WriteString("import mcell as m\n")
		if deps := unitDeps[name]; len(deps) > 0 {
			sb.WriteString("\n")
			for _, dep := range deps {
				sb.WriteString("from " + p.ModuleName(dep) + " import *\n")
			}
		}
		if len(u.lines) > 0 {
			sb.WriteString("\n")
			for _, l := range u.lines {
				sb.WriteString(l + "\n")
			}
		}
		files = append(files, File{Name: p.FileName(name), Content: sb.String()})
	}
	if p.bngl.Used() {
		var sb strings.Builder
		p.header(&sb, opts)
		sb.WriteString(p.bngl.render())
		files = append(files, File{Name: p.BNGLFileName(), Content: sb.String()})
	}
	return files
}
