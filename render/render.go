package render

import (
	"github.com/soypat/tetmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Vertex order defines the normal direction
// following the right hand rule.
type Triangle3 [3]r3.Vec

// Renderer streams triangles of a surface. ReadTriangles follows io.Reader
// semantics: it returns io.EOF once all triangles have been read.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// Normal returns the unit normal of the triangle.
func (t Triangle3) Normal() r3.Vec {
	return r3.Unit(d3.TriangleNormal(t[0], t[1], t[2]))
}

// Degenerate returns true if two of the triangle's vertices are within tol of eachother.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t[0], t[1], tol) ||
		d3.EqualWithin(t[1], t[2], tol) ||
		d3.EqualWithin(t[2], t[0], tol)
}
