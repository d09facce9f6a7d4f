package tetmesh

import (
	"fmt"
	"strings"
)

// ConfigurationError reports input of the wrong shape or count, ids out of
// range or Builder methods called out of order. The input must be fixed by the caller.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "tetmesh: configuration: " + e.Msg
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// FormatError reports a malformed record in a mesh file.
type FormatError struct {
	// Line is the 1-based line of the record for line oriented formats, 0 otherwise.
	Line int
	// Index is the offset into the offending array for array formats, -1 otherwise.
	Index int
	Msg   string
}

func (e *FormatError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("tetmesh: format: line %d: %s", e.Line, e.Msg)
	case e.Index >= 0:
		return fmt.Sprintf("tetmesh: format: index %d: %s", e.Index, e.Msg)
	}
	return "tetmesh: format: " + e.Msg
}

// TopologyError reports a facet shared by more than two tetrahedra, meaning
// the input is not a valid simplicial complex.
type TopologyError struct {
	// Key is the sorted vertex triple of the offending facet.
	Key [3]int
	// Tets holds the ids of every tetrahedron containing the facet, ascending.
	Tets []int
	// Others is the number of additional non-manifold facets found.
	Others int
}

func (e *TopologyError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tetmesh: non-manifold face %v shared by %d tets %v", e.Key, len(e.Tets), e.Tets)
	if e.Others > 0 {
		fmt.Fprintf(&sb, " (%d more non-manifold faces)", e.Others)
	}
	return sb.String()
}
