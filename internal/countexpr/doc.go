// Package countexpr parses observable expressions written with the count
// construct, e.g. "(COUNT[a,Scene.Cube[top]] + COUNT[b',WORLD]) / 2", into
// typed terms and a residual combining expression that references them.
package countexpr
