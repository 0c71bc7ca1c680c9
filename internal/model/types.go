// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file declares the typed constructs of the data model.
package model

// Parameter is a named expression.
type Parameter struct {
	Name        string
	Expr        string
	Units       string
	Description string
}

// Initialization holds the simulation-wide constants. Values are expressions.
type Initialization struct {
	Iterations            string
	TimeStep              string
	TimeStepMax           string
	SpaceStep             string
	InteractionRadius     string
	SurfaceGridDensity    string
	VacancySearchDistance string
	RadialDirections      string
	RadialSubdivisions    string
	Accurate3DReactions   bool
	CenterMoleculesOnGrid bool
	Partitions            *Partitions
}

// Partitions is the optional spatial partitioning of the world.
type Partitions struct {
	XStart, XEnd, XStep string
	YStart, YEnd, YStep string
	ZStart, ZEnd, ZStep string
}

// Component is a molecule component with an optional finite state set.
type Component struct {
	Name   string
	States []string
}

// Species is a molecule type.
type Species struct {
	Name            string
	Surface         bool
	Diffusion       string
	CustomTimeStep  string
	CustomSpaceStep string
	TargetOnly      bool
	Description     string
	Components      []Component
}

// Simple reports whether the species has no components.
func (s Species) Simple() bool { return len(s.Components) == 0 }

// PropertyType is the behavior of a surface class towards affected molecules.
type PropertyType int

const (
	Reflective PropertyType = iota
	Transparent
	Absorptive
	ConcentrationClamp
	FluxClamp
	Reactive
)

// Wildcards accepted as the affected species of a surface class property.
const (
	AllMolecules        = "ALL_MOLECULES"
	AllVolumeMolecules  = "ALL_VOLUME_MOLECULES"
	AllSurfaceMolecules = "ALL_SURFACE_MOLECULES"
)

// SurfaceClassProperty is one behavior of a surface class.
type SurfaceClassProperty struct {
	Type PropertyType
	// Affected is a species name or one of the wildcards.
	Affected    string
	Orientation Orientation
	ClampValue  string
}

// SurfaceClass is a named set of surface properties.
type SurfaceClass struct {
	Name        string
	Description string
	Properties  []SurfaceClassProperty
}

// Orientation is a per-species membrane orientation mark.
type Orientation int

const (
	NoOrientation Orientation = iota
	Up
	Down
	Any
)

// ParseOrientation maps the data model marks "'", ",", ";" (or the words
// UP, DOWN, ANY) to an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "":
		return NoOrientation, true
	case "'", "UP", "up":
		return Up, true
	case ",", "DOWN", "down":
		return Down, true
	case ";", "ANY", "any":
		return Any, true
	}
	return NoOrientation, false
}

// RatePoint is one row of a variable-rate table.
type RatePoint struct {
	Time string
	Rate string
}

// ReactionRule is a reaction with its rate representation.
type ReactionRule struct {
	Index        int
	Name         string
	Reactants    string
	Products     string
	FwdRate      string
	RevRate      string
	Reversible   bool
	VariableRate []RatePoint
	Description  string
}

// Label is the name used in messages: the rule name or its equation.
func (r ReactionRule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	arrow := " -> "
	if r.Reversible {
		arrow = " <-> "
	}
	return r.Reactants + arrow + r.Products
}

// Region is a named subset of an object's faces.
type Region struct {
	Name  string
	Faces []int
}

// GeometryObject is a triangulated mesh.
type GeometryObject struct {
	Name     string
	Vertices [][3]float64
	Faces    [][3]int
	Regions  []Region
}

// ModelObject carries the compartment links of a geometry object.
type ModelObject struct {
	Name        string
	Parent      string
	Membrane    string
	Description string
}

// ModificationKind selects what a surface region modification does.
type ModificationKind int

const (
	AssignSurfaceClass ModificationKind = iota
	InitialNumber
	InitialDensity
)

// SurfaceModification assigns a surface class or initial surface molecules to
// a whole object or to one of its regions.
type SurfaceModification struct {
	Name         string
	Object       string
	Region       string // empty means the whole object
	Kind         ModificationKind
	SurfaceClass string
	Molecule     string
	Orientation  Orientation
	Quantity     string
}

// ReleasePattern is a timed release train.
type ReleasePattern struct {
	Name           string
	Delay          string
	Interval       string
	TrainDuration  string
	TrainInterval  string
	NumberOfTrains string
	Description    string
}

// Shape is the geometry of a release site.
type Shape string

const (
	ShapeCubic       Shape = "CUBIC"
	ShapeSpherical   Shape = "SPHERICAL"
	ShapeEllipsoidal Shape = "ELLIPSOIDAL"
	ShapeObject      Shape = "OBJECT"
	ShapeList        Shape = "LIST"
)

// QuantityType selects how a release site's quantity is interpreted.
type QuantityType string

const (
	NumberToRelease       QuantityType = "NUMBER_TO_RELEASE"
	GaussianReleaseNumber QuantityType = "GAUSSIAN_RELEASE_NUMBER"
	Density               QuantityType = "DENSITY"
)

// ReleaseSite describes where, when and how many molecules are released.
type ReleaseSite struct {
	Index        int
	Name         string
	Molecule     string
	Shape        Shape
	Orientation  Orientation
	ObjectExpr   string
	Location     [3]string
	Diameter     string
	QuantityType QuantityType
	Quantity     string
	Stddev       string
	Probability  string
	Pattern      string
	Points       [][3]float64
	Description  string
}

// OutputKind is the type of a reaction data output item.
type OutputKind string

const (
	OutputMolecule  OutputKind = "Molecule"
	OutputReaction  OutputKind = "Reaction"
	OutputMDLString OutputKind = "MDLString"
	OutputFile      OutputKind = "File"
)

// CountLocation is where a Molecule or Reaction output item counts.
type CountLocation string

const (
	CountWorld  CountLocation = "World"
	CountObject CountLocation = "Object"
	CountRegion CountLocation = "Region"
)

// OutputItem is one requested observable.
type OutputItem struct {
	Index       int
	Name        string
	Kind        OutputKind
	Molecule    string
	Reaction    string
	Object      string
	Region      string
	Location    CountLocation
	MDLString   string
	Granularity string
	Description string
}

// Output is the reaction data output section.
type Output struct {
	Step  string
	Items []OutputItem
}

// Viz is the visualization output request.
type Viz struct {
	AllIterations bool
	Start         string
	End           string
	Step          string
	ExportAll     bool
}
