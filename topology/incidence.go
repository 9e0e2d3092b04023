// SPDX-License-Identifier: MIT

package topology

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/mcinput/tensor"
)

// Incidence builds the connections × zones incidence matrix: -1 at the
// origin zone, +1 at the destination zone of every connection.
//
// Implementation:
//   - Stage 1: index zones by position.
//   - Stage 2: parse each connection loosely; malformed names are fatal.
//   - Stage 3: a connection with an endpoint outside zones is warned about
//     and its row stays zero, so every row sums to zero.
//
// Complexity: O(C + Z) time, O(C × Z) memory.
func Incidence(connections, zones []string, log *zap.Logger) (*tensor.Tensor, error) {
	col := make(map[string]int, len(zones))
	for i, z := range zones {
		col[z] = i
	}
	m, err := tensor.New(len(connections), len(zones))
	if err != nil {
		return nil, fmt.Errorf("Incidence: %w", err)
	}

	for row, name := range connections {
		c, err := ParseConnection(name, Loose)
		if err != nil {
			return nil, fmt.Errorf("Incidence: %w", err)
		}
		from, okFrom := col[c.From]
		to, okTo := col[c.To]
		if !okFrom || !okTo {
			log.Warn("connection endpoint outside the zone set, row left empty", zap.String("line", name))
			continue
		}
		if from == to {
			continue
		}
		if err = m.Set(-1, row, from); err != nil {
			return nil, fmt.Errorf("Incidence: %w", err)
		}
		if err = m.Set(1, row, to); err != nil {
			return nil, fmt.Errorf("Incidence: %w", err)
		}
	}

	return m, nil
}
