// SPDX-License-Identifier: MIT

package tensor

import "fmt"

// Sets is an ordered registry of named discrete sets.
// Member order within a set defines the positional index used by every
// tensor axis that references the set.
type Sets struct {
	labels  []string
	members map[string][]string
	index   map[string]map[string]int
}

// NewSets returns an empty registry.
func NewSets() *Sets {
	return &Sets{
		members: make(map[string][]string),
		index:   make(map[string]map[string]int),
	}
}

// Define registers label with the given ordered members.
// Stage 1 (Validate): label must be new and members unique.
// Stage 2 (Execute): store a private copy and the member→position index.
// Complexity: O(len(members)).
func (s *Sets) Define(label string, members []string) error {
	if _, ok := s.members[label]; ok {
		return fmt.Errorf("Sets.Define(%q): %w", label, ErrDuplicateSet)
	}
	pos := make(map[string]int, len(members))
	for i, m := range members {
		if _, ok := pos[m]; ok {
			return fmt.Errorf("Sets.Define(%q): member %q: %w", label, m, ErrDuplicateMember)
		}
		pos[m] = i
	}
	s.labels = append(s.labels, label)
	s.members[label] = append([]string{}, members...)
	s.index[label] = pos

	return nil
}

// Labels returns the set labels in definition order.
func (s *Sets) Labels() []string { return append([]string(nil), s.labels...) }

// Has reports whether label is defined.
func (s *Sets) Has(label string) bool {
	_, ok := s.members[label]
	return ok
}

// Members returns a copy of the members of label.
func (s *Sets) Members(label string) ([]string, error) {
	m, ok := s.members[label]
	if !ok {
		return nil, fmt.Errorf("Sets.Members(%q): %w", label, ErrUnknownSet)
	}

	return append([]string{}, m...), nil
}

// Card returns the cardinality of label.
func (s *Sets) Card(label string) (int, error) {
	m, ok := s.members[label]
	if !ok {
		return 0, fmt.Errorf("Sets.Card(%q): %w", label, ErrUnknownSet)
	}

	return len(m), nil
}

// Index returns the position of member inside label.
func (s *Sets) Index(label, member string) (int, error) {
	pos, ok := s.index[label]
	if !ok {
		return 0, fmt.Errorf("Sets.Index(%q): %w", label, ErrUnknownSet)
	}
	i, ok := pos[member]
	if !ok {
		return 0, fmt.Errorf("Sets.Index(%q, %q): %w", label, member, ErrUnknownMember)
	}

	return i, nil
}

// Shape resolves a signature into the cardinalities of its sets.
func (s *Sets) Shape(signature []string) ([]int, error) {
	shape := make([]int, len(signature))
	for i, label := range signature {
		n, err := s.Card(label)
		if err != nil {
			return nil, err
		}
		shape[i] = n
	}

	return shape, nil
}
