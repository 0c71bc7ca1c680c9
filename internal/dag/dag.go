package dag

import (
	"errors"
	"fmt"
)

// ErrCycle is returned when the graph contains a dependency cycle.
var ErrCycle = errors.New("cycle detected")

// CycleError names the node at which a cycle was found.
type CycleError struct {
	Node string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected involving node '%s'", e.Node)
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// Graph is a directed graph where an edge from A to B means B depends on A.
type Graph struct {
	nodes map[string]*node
	order []string
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// Has reports whether a node with the given ID exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Dependencies returns the IDs the given node depends on, in insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	deps := make([]string, 0, len(n.deps))
	for _, other := range g.order {
		if _, ok := n.deps[other]; ok {
			deps = append(deps, other)
		}
	}
	return deps, nil
}

// DetectCycles checks the graph for any cycles. It returns a *CycleError
// naming the first node found on a cycle.
func (g *Graph) DetectCycles() error {
	// permanent: fully visited, not on a cycle.
	// temporary: on the current recursion stack.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return &CycleError{Node: n.id}
		}
		temporary[n.id] = true

		for _, id := range g.order {
			dependent, ok := n.dependents[id]
			if !ok {
				continue
			}
			if err := visit(dependent); err != nil {
				return err
			}
		}

		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

// Order returns every node such that each appears after all of its
// dependencies. Among ready nodes, the earliest inserted is taken first, so
// an already-ordered input is returned unchanged.
func (g *Graph) Order() ([]string, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	emitted := make(map[string]bool, len(g.nodes))
	out := make([]string, 0, len(g.nodes))
	for len(out) < len(g.order) {
		for _, id := range g.order {
			if emitted[id] || !g.ready(id, emitted) {
				continue
			}
			emitted[id] = true
			out = append(out, id)
			break
		}
	}
	return out, nil
}

func (g *Graph) ready(id string, emitted map[string]bool) bool {
	for dep := range g.nodes[id].deps {
		if !emitted[dep] {
			return false
		}
	}
	return true
}
