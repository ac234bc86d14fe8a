package workflow

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDuplicateNodeName = errors.New("duplicate node name")
	ErrDuplicateNodeID   = errors.New("duplicate node id")
	ErrDanglingEdge      = errors.New("connection references an unknown node")
	ErrCycle             = errors.New("connections form a cycle")
)

// NodeByName looks up a node by its name.
func (d *Document) NodeByName(name string) (Node, bool) {
	for _, node := range d.Nodes {
		if node.Name == name {
			return node, true
		}
	}

	return Node{}, false
}

// Validate checks the structural invariants of the document: unique node
// names and ids, connections that only reference existing nodes, and an
// acyclic graph.
func (d *Document) Validate() error {
	names := make(map[string]struct{}, len(d.Nodes))
	ids := make(map[string]struct{}, len(d.Nodes))

	for _, node := range d.Nodes {
		if _, ok := names[node.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeName, node.Name)
		}

		names[node.Name] = struct{}{}

		if _, ok := ids[node.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, node.ID)
		}

		ids[node.ID] = struct{}{}
	}

	for source := range d.Connections {
		if _, ok := names[source]; !ok {
			return fmt.Errorf("%w: source %s", ErrDanglingEdge, source)
		}

		for _, target := range d.Connections.Targets(source) {
			if _, ok := names[target]; !ok {
				return fmt.Errorf("%w: target %s", ErrDanglingEdge, target)
			}
		}
	}

	if _, err := d.TopologicalOrder(); err != nil {
		return err
	}

	return nil
}

// TopologicalOrder returns node names so that every source precedes its
// targets. Ties keep document order.
func (d *Document) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(d.Nodes))
	for _, node := range d.Nodes {
		for _, target := range d.Connections.Targets(node.Name) {
			indegree[target]++
		}
	}

	order := make([]string, 0, len(d.Nodes))
	queue := d.Sources()

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)

		for _, target := range d.Connections.Targets(name) {
			indegree[target]--
			if indegree[target] == 0 {
				queue = append(queue, target)
			}
		}
	}

	if len(order) != len(d.Nodes) {
		return nil, ErrCycle
	}

	return order, nil
}

// Sources returns the names of nodes without incoming connections.
func (d *Document) Sources() []string {
	incoming := make(map[string]bool, len(d.Nodes))

	for source := range d.Connections {
		for _, target := range d.Connections.Targets(source) {
			incoming[target] = true
		}
	}

	var sources []string

	for _, node := range d.Nodes {
		if !incoming[node.Name] {
			sources = append(sources, node.Name)
		}
	}

	return sources
}

// Sinks returns the names of nodes without outgoing connections, sorted.
func (d *Document) Sinks() []string {
	var sinks []string

	for _, node := range d.Nodes {
		if len(d.Connections.Targets(node.Name)) == 0 {
			sinks = append(sinks, node.Name)
		}
	}

	sort.Strings(sinks)

	return sinks
}
