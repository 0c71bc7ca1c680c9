// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file declares the root container and the section bookkeeping.
package model

// Section names a top-level sub-tree of the document.
type Section string

const (
	SectionParameters     Section = "parameter_system"
	SectionInitialization Section = "initialization"
	SectionMolecules      Section = "define_molecules"
	SectionSurfaceClasses Section = "define_surface_classes"
	SectionReactions      Section = "define_reactions"
	SectionGeometry       Section = "geometrical_objects"
	SectionModelObjects   Section = "model_objects"
	SectionModifications  Section = "modify_surface_regions"
	SectionPatterns       Section = "define_release_patterns"
	SectionReleases       Section = "release_sites"
	SectionOutput         Section = "reaction_data_output"
	SectionViz            Section = "viz_output"
)

// Expected data model version tags.
const (
	VersionMolecules      = "DM_2014_10_24_1638"
	VersionMoleculeItem   = "DM_2018_10_16_1632"
	VersionSurfaceClasses = "DM_2014_10_24_1638"
	VersionReactions      = "DM_2014_10_24_1638"
	VersionReactionItem   = "DM_2018_01_11_1330"
	VersionReleases       = "DM_2014_10_24_1638"
	VersionReleaseItem    = "DM_2018_01_11_1330"
	VersionOutput         = "DM_2016_03_15_1800"
)

// Problem is an item that could not be decoded.
type Problem struct {
	Section Section
	Index   int
	Item    string
	Err     error
}

// Model is the decoded document.
type Model struct {
	Parameters     []Parameter
	Init           Initialization
	Species        []Species
	SurfaceClasses []SurfaceClass
	Reactions      []ReactionRule
	Objects        []GeometryObject
	ModelObjects   []ModelObject
	Modifications  []SurfaceModification
	Patterns       []ReleasePattern
	Releases       []ReleaseSite
	Output         Output
	Viz            *Viz

	Problems      []Problem
	SectionErrors map[Section]error
}

// ProblemsIn returns the item problems recorded for the given sections.
func (m *Model) ProblemsIn(sections ...Section) []Problem {
	var out []Problem
	for _, p := range m.Problems {
		for _, s := range sections {
			if p.Section == s {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// SectionError returns the first section-level error among sections.
func (m *Model) SectionError(sections ...Section) error {
	for _, s := range sections {
		if err := m.SectionErrors[s]; err != nil {
			return err
		}
	}
	return nil
}

// FindSpecies returns the species with the given source name.
func (m *Model) FindSpecies(name string) (Species, bool) {
	for _, s := range m.Species {
		if s.Name == name {
			return s, true
		}
	}
	return Species{}, false
}

// FindSurfaceClass reports whether name is a declared surface class.
func (m *Model) FindSurfaceClass(name string) (SurfaceClass, bool) {
	for _, sc := range m.SurfaceClasses {
		if sc.Name == name {
			return sc, true
		}
	}
	return SurfaceClass{}, false
}

// FindObject returns the geometry object with the given name.
func (m *Model) FindObject(name string) (GeometryObject, bool) {
	for _, o := range m.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return GeometryObject{}, false
}

// FindModelObject returns the compartment links of an object.
func (m *Model) FindModelObject(name string) (ModelObject, bool) {
	for _, o := range m.ModelObjects {
		if o.Name == name {
			return o, true
		}
	}
	return ModelObject{}, false
}
