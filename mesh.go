// Package tetmesh builds half-face adjacency structures for tetrahedral meshes.
//
// A Mesh is constructed once from vertex positions and tetrahedron vertex ids,
// either through Build or step by step with a Builder, and is read-only afterwards.
// Faces and edges are identified by their sorted vertex ids so the resulting
// topology does not depend on the order tetrahedra are supplied in.
package tetmesh

import (
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a tetrahedral mesh with face, edge and half-face adjacency.
// All entities are stored by dense integer id. Absent references are -1.
// A Mesh returned by Build or Builder.Finalize is safe for concurrent reads.
type Mesh struct {
	// pos holds vertex positions as columns of a 3xN matrix.
	pos       *mat.Dense
	verts     []Vertex
	tets      []Tet
	halfFaces []HalfFace
	faces     []Face
	edges     []Edge

	maxVertexID int
	reoriented  int

	kdOnce sync.Once
	kd     *kdtree.Tree
}

// Vertex is a mesh node.
type Vertex struct {
	id       int
	mesh     *Mesh
	boundary bool
	// incident edge ids.
	edges []int
	// incident tetrahedron corners.
	tverts []TVertex
}

// TVertex is a tetrahedron corner: the vertex at local index Local of tet Tet.
type TVertex struct {
	Tet   int
	Local int
}

// Tet is a tetrahedron.
type Tet struct {
	id        int
	verts     [4]int
	halfFaces [4]int
	edges     [6]int
}

// HalfFace is the oriented triangular facet of a single tetrahedron.
// Side i of the half-face runs from vertex i to vertex (i+1)%3.
type HalfFace struct {
	id    int
	tet   int
	twin  int
	face  int
	verts [3]int
	edges [3]int
}

// Face is the unordered facet shared by one or two twinned half-faces.
type Face struct {
	id       int
	key      [3]int
	left     int
	right    int
	boundary bool
	edges    [3]int
}

// Edge is an unordered pair of vertices.
type Edge struct {
	id       int
	key      [2]int
	boundary bool
	faces    []int
}

func (v *Vertex) ID() int { return v.id }

// Boundary reports whether the vertex lies on a boundary edge.
func (v *Vertex) Boundary() bool { return v.boundary }

// Position returns the vertex coordinates.
func (v *Vertex) Position() r3.Vec { return v.mesh.position(v.id) }

// Edges returns ids of edges incident to the vertex. The returned slice must not be modified.
func (v *Vertex) Edges() []int { return v.edges }

// TVertices returns the tetrahedron corners at this vertex. The returned slice must not be modified.
func (v *Vertex) TVertices() []TVertex { return v.tverts }

func (t *Tet) ID() int { return t.id }

// Vertices returns the tetrahedron's vertex ids. If the mesh was built with
// orientation checking the order has non-negative signed volume.
func (t *Tet) Vertices() [4]int { return t.verts }

// HalfFaces returns the ids of the four half-faces of the tetrahedron.
// Half-face k does not contain local vertex 3-k.
func (t *Tet) HalfFaces() [4]int { return t.halfFaces }

// Edges returns ids of the tetrahedron's edges for local vertex pairs
// 01, 02, 03, 12, 13 and 23, in that order.
func (t *Tet) Edges() [6]int { return t.edges }

func (h *HalfFace) ID() int { return h.id }

// Tet returns the id of the tetrahedron owning the half-face.
func (h *HalfFace) Tet() int { return h.tet }

// Twin returns the id of the opposing half-face of the neighboring tetrahedron or -1.
func (h *HalfFace) Twin() int { return h.twin }

// Face returns the id of the face the half-face belongs to.
func (h *HalfFace) Face() int { return h.face }

// Vertices returns the half-face vertex ids in winding order.
func (h *HalfFace) Vertices() [3]int { return h.verts }

// Edges returns the edge ids of the half-face's sides. Edge i joins
// vertex i and vertex (i+1)%3.
func (h *HalfFace) Edges() [3]int { return h.edges }

func (f *Face) ID() int { return f.id }

// Key returns the sorted vertex ids identifying the face.
func (f *Face) Key() [3]int { return f.key }

// Left returns the id of the first half-face that generated this face. It is
// -1 only for faces whose sole owner is Right.
func (f *Face) Left() int { return f.left }

// Right returns the id of the twin of Left or -1 if the face is on the boundary.
func (f *Face) Right() int { return f.right }

// Boundary reports whether exactly one half-face owns the face.
func (f *Face) Boundary() bool { return f.boundary }

// Edges returns the face's edge ids.
func (f *Face) Edges() [3]int { return f.edges }

func (e *Edge) ID() int { return e.id }

// Vertices returns the edge's vertex ids, lower id first.
func (e *Edge) Vertices() [2]int { return e.key }

// Boundary reports whether any face incident to the edge is a boundary face.
func (e *Edge) Boundary() bool { return e.boundary }

// Faces returns ids of faces incident to the edge. The returned slice must not be modified.
func (e *Edge) Faces() []int { return e.faces }

func (m *Mesh) position(vid int) r3.Vec {
	return r3.Vec{X: m.pos.At(0, vid), Y: m.pos.At(1, vid), Z: m.pos.At(2, vid)}
}

func (m *Mesh) NumVertices() int  { return len(m.verts) }
func (m *Mesh) NumTets() int      { return len(m.tets) }
func (m *Mesh) NumHalfFaces() int { return len(m.halfFaces) }
func (m *Mesh) NumFaces() int     { return len(m.faces) }
func (m *Mesh) NumEdges() int     { return len(m.edges) }

// MaxVertexID returns the largest vertex id in the mesh.
func (m *Mesh) MaxVertexID() int { return m.maxVertexID }

// VertPos returns a copy of the vertex positions as a 3xN matrix, one column per vertex.
func (m *Mesh) VertPos() *mat.Dense { return mat.DenseCopyOf(m.pos) }
