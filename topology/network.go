// SPDX-License-Identifier: MIT

package topology

import (
	"fmt"
)

// Line is a directed transmission line between two zones.
type Line struct {
	ID   string
	From string
	To   string
}

// Network is a directed multigraph of zones and lines. Zones and lines keep
// insertion order; neighborhoods are undirected for connectivity queries.
type Network struct {
	zones []string
	index map[string]int
	lines []*Line
	ids   map[string]struct{}
	adj   map[string]map[string]struct{}
}

// NewNetwork returns a network holding zones.
func NewNetwork(zones ...string) *Network {
	n := &Network{
		index: make(map[string]int, len(zones)),
		ids:   make(map[string]struct{}),
		adj:   make(map[string]map[string]struct{}, len(zones)),
	}
	for _, z := range zones {
		n.AddZone(z)
	}

	return n
}

// AddZone inserts zone; adding an existing zone is a no-op.
// Complexity: O(1).
func (n *Network) AddZone(zone string) {
	if _, ok := n.index[zone]; ok {
		return
	}
	n.index[zone] = len(n.zones)
	n.zones = append(n.zones, zone)
	n.adj[zone] = make(map[string]struct{})
}

// HasZone reports whether zone is part of the network.
func (n *Network) HasZone(zone string) bool {
	_, ok := n.index[zone]
	return ok
}

// Connect adds line id from → to. Both zones must exist.
// Complexity: O(1).
func (n *Network) Connect(id, from, to string) error {
	if _, ok := n.ids[id]; ok {
		return fmt.Errorf("Connect(%q): %w", id, ErrDuplicateLine)
	}
	if !n.HasZone(from) {
		return fmt.Errorf("Connect(%q): origin %q: %w", id, from, ErrUnknownZone)
	}
	if !n.HasZone(to) {
		return fmt.Errorf("Connect(%q): destination %q: %w", id, to, ErrUnknownZone)
	}
	n.ids[id] = struct{}{}
	n.lines = append(n.lines, &Line{ID: id, From: from, To: to})
	n.adj[from][to] = struct{}{}
	n.adj[to][from] = struct{}{}

	return nil
}

// Zones returns the zones in insertion order.
func (n *Network) Zones() []string { return append([]string(nil), n.zones...) }

// Lines returns the lines in insertion order.
func (n *Network) Lines() []*Line { return append([]*Line(nil), n.lines...) }

// Degree returns the number of lines touching zone.
// Complexity: O(lines).
func (n *Network) Degree(zone string) (int, error) {
	if !n.HasZone(zone) {
		return 0, fmt.Errorf("Degree(%q): %w", zone, ErrUnknownZone)
	}
	d := 0
	for _, l := range n.lines {
		if l.From == zone {
			d++
		}
		if l.To == zone {
			d++
		}
	}

	return d, nil
}

// Neighbors returns the zones sharing a line with zone, in zone order.
// Complexity: O(V).
func (n *Network) Neighbors(zone string) ([]string, error) {
	nb, ok := n.adj[zone]
	if !ok {
		return nil, fmt.Errorf("Neighbors(%q): %w", zone, ErrUnknownZone)
	}
	out := make([]string, 0, len(nb))
	for _, z := range n.zones {
		if _, ok := nb[z]; ok {
			out = append(out, z)
		}
	}

	return out, nil
}

// Components returns the connected components of the undirected view of the
// network. Each component lists zones in breadth-first order from its first
// zone; components are ordered by their first zone.
//
// Implementation:
//   - Stage 1: walk zones in insertion order; every unvisited zone seeds a BFS.
//   - Stage 2: the BFS queue expands neighbors in zone order.
//
// Complexity: O(V + E) plus neighbor ordering O(V) per zone.
func (n *Network) Components() [][]string {
	visited := make(map[string]bool, len(n.zones))
	var out [][]string
	for _, start := range n.zones {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []string{start}
		var comp []string
		for len(queue) > 0 {
			z := queue[0]
			queue = queue[1:]
			comp = append(comp, z)
			nbrs, _ := n.Neighbors(z)
			for _, nb := range nbrs {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		out = append(out, comp)
	}

	return out
}
