// SPDX-License-Identifier: MIT

package topology

import "errors"

var (
	// ErrBadConnection is returned when a connection name does not split into
	// exactly two non-empty zone tokens.
	ErrBadConnection = errors.New("topology: malformed connection")

	// ErrDisjointIndex is returned when the capacity and flow tables share no timestamp.
	ErrDisjointIndex = errors.New("topology: capacity and flow indices do not overlap")

	// ErrUnknownZone indicates a line endpoint that is not a zone of the network.
	ErrUnknownZone = errors.New("topology: unknown zone")

	// ErrDuplicateLine is returned when a line identifier is added twice.
	ErrDuplicateLine = errors.New("topology: duplicate line")
)
