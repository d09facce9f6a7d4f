// Package tetio reads and writes tetrahedral mesh files feeding tetmesh.Build.
//
// Two formats are supported: the line oriented ".t" format with Vertex, Tet
// and Edge records, and a Houdini style JSON ".geo" format holding flat
// position and index arrays. Malformed input is reported as a *tetmesh.FormatError.
package tetio

import (
	"fmt"

	"github.com/soypat/tetmesh"
)

// Source is mesh data read from a file, ready to be built.
type Source struct {
	// Positions holds consecutive xyz vertex coordinates.
	Positions []float64
	// Tets holds consecutive groups of four dense 0-based vertex ids.
	Tets []int
	// FileIDs maps a dense vertex id to the id used in the file. Nil when
	// the file format uses dense ids.
	FileIDs []int
	// Edges holds edges declared by the file using dense vertex ids. They
	// are informational; tetmesh derives edges from the tetrahedra.
	Edges [][2]int
}

// NumVertices returns the number of vertices in the source.
func (s *Source) NumVertices() int { return len(s.Positions) / 3 }

// NumTets returns the number of tetrahedra in the source.
func (s *Source) NumTets() int { return len(s.Tets) / 4 }

// Build constructs the mesh described by the source.
func (s *Source) Build(checkOrientation bool) (*tetmesh.Mesh, error) {
	return tetmesh.Build(s.Positions, s.Tets, checkOrientation)
}

// EdgeMismatch is a declared edge with no counterpart among the derived edges of a mesh.
type EdgeMismatch struct {
	// Record is the index of the edge in Source.Edges.
	Record int
	// Vertices are the dense vertex ids of the declared edge.
	Vertices [2]int
}

func (e EdgeMismatch) String() string {
	return fmt.Sprintf("declared edge %d (%d,%d) not found in mesh", e.Record, e.Vertices[0], e.Vertices[1])
}

// CheckEdges returns the declared edges that are not edges of m. Mismatches
// are not errors: the mesh topology is always derived from the tetrahedra.
func CheckEdges(m *tetmesh.Mesh, declared [][2]int) []EdgeMismatch {
	var mismatches []EdgeMismatch
	for i, e := range declared {
		if _, ok := m.EdgeBetween(e[0], e[1]); !ok {
			mismatches = append(mismatches, EdgeMismatch{Record: i, Vertices: e})
		}
	}
	return mismatches
}
