// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological sorting
// and cycle detection. It orders the configuration extension graph (a
// configuration is visited after every configuration it extends) and the task
// graph (a task runs after every task it depends on).
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the nodes left with unresolved incoming edges; enough
		// to identify the problem, not necessarily a minimal cycle.
		Cycle []string
	}

	// UnknownNodeError is returned when a query names a node that was never added.
	UnknownNodeError struct {
		Node string
	}

	// Graph is a directed graph keyed by node name. An edge from A to B means
	// A comes before B.
	Graph struct {
		// successors maps each node to the nodes that come after it.
		successors map[string][]string
		// predecessors maps each node to the nodes that come before it.
		predecessors map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes   []string
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %q", e.Node)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		successors:   make(map[string][]string),
		predecessors: make(map[string][]string),
		nodeSet:      make(map[string]bool),
	}
}

// AddNode adds a node to the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// HasNode reports whether the node was added.
func (g *Graph) HasNode(name string) bool { return g.nodeSet[name] }

// AddEdge adds a directed edge from -> to, meaning "from" comes before "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.successors[from] = append(g.successors[from], to)
	g.predecessors[to] = append(g.predecessors[to], from)
}

// TopologicalSort returns a valid order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// Nodes at the same topological level appear in the order they were first added.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = len(g.predecessors[node])
	}

	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, next := range g.successors[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycleNodes []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}

// OrderFor returns node and everything that must come before it, in
// topological order, ending with node itself.
func (g *Graph) OrderFor(node string) ([]string, error) {
	if !g.nodeSet[node] {
		return nil, &UnknownNodeError{Node: node}
	}

	needed := map[string]bool{}
	stack := []string{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if needed[n] {
			continue
		}
		needed[n] = true
		stack = append(stack, g.predecessors[n]...)
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(needed))
	for _, n := range order {
		if needed[n] {
			result = append(result, n)
		}
	}
	return result, nil
}
