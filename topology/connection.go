// SPDX-License-Identifier: MIT
// Package topology turns interconnection tables into the transmission
// network seen by the market-clearing model: it separates connections
// between simulated zones from connections to the rest of the world,
// aggregates the latter per zone, and derives the line/zone incidence matrix.
package topology

import (
	"fmt"
	"strings"
)

// RoW is the pseudo-zone standing for every zone outside the simulation.
const RoW = "RoW"

// Separator joins the two zones of a connection name.
const Separator = " -> "

// Mode selects how connection names are split.
type Mode uint8

const (
	// Strict splits on the exact separator " -> ".
	Strict Mode = iota
	// Loose splits on "->" and trims whitespace around each token.
	Loose
)

// Connection is a directed link between two zones.
type Connection struct {
	From, To string
}

// Name returns the canonical "<from> -> <to>" form.
func (c Connection) Name() string { return c.From + Separator + c.To }

// Involves reports whether zone is either endpoint.
func (c Connection) Involves(zone string) bool { return c.From == zone || c.To == zone }

// ParseConnection splits s into its origin and destination zones.
// Anything but exactly two non-empty tokens is ErrBadConnection.
func ParseConnection(s string, mode Mode) (Connection, error) {
	var parts []string
	if mode == Strict {
		parts = strings.Split(s, Separator)
	} else {
		parts = strings.Split(s, "->")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
	}
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Connection{}, fmt.Errorf("ParseConnection(%q): %w", s, ErrBadConnection)
	}

	return Connection{From: parts[0], To: parts[1]}, nil
}

// ExportName returns "<zone> -> RoW".
func ExportName(zone string) string { return Connection{From: zone, To: RoW}.Name() }

// ImportName returns "RoW -> <zone>".
func ImportName(zone string) string { return Connection{From: RoW, To: zone}.Name() }
