// Package pattern parses the reaction-side and species-pattern text found in
// reactions and release sites, e.g. "A(x~P)' + B@IN", into typed complexes
// carrying their orientation mark and compartment annotation.
package pattern
