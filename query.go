package tetmesh

import (
	"sort"

	"github.com/soypat/tetmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// VertexByID returns the vertex with id in [0, NumVertices).
func (m *Mesh) VertexByID(id int) (*Vertex, error) {
	if id < 0 || id >= len(m.verts) {
		return nil, configErrorf("vertex id %d outside [0,%d)", id, len(m.verts))
	}
	return &m.verts[id], nil
}

// TetByID returns the tetrahedron with id in [0, NumTets).
func (m *Mesh) TetByID(id int) (*Tet, error) {
	if id < 0 || id >= len(m.tets) {
		return nil, configErrorf("tet id %d outside [0,%d)", id, len(m.tets))
	}
	return &m.tets[id], nil
}

// HalfFaceByID returns the half-face with id in [0, NumHalfFaces).
func (m *Mesh) HalfFaceByID(id int) (*HalfFace, error) {
	if id < 0 || id >= len(m.halfFaces) {
		return nil, configErrorf("half-face id %d outside [0,%d)", id, len(m.halfFaces))
	}
	return &m.halfFaces[id], nil
}

// FaceByID returns the face with id in [0, NumFaces).
func (m *Mesh) FaceByID(id int) (*Face, error) {
	if id < 0 || id >= len(m.faces) {
		return nil, configErrorf("face id %d outside [0,%d)", id, len(m.faces))
	}
	return &m.faces[id], nil
}

// EdgeByID returns the edge with id in [0, NumEdges).
func (m *Mesh) EdgeByID(id int) (*Edge, error) {
	if id < 0 || id >= len(m.edges) {
		return nil, configErrorf("edge id %d outside [0,%d)", id, len(m.edges))
	}
	return &m.edges[id], nil
}

// EdgeBetween returns the id of the edge joining vertices a and b.
func (m *Mesh) EdgeBetween(a, b int) (int, bool) {
	if a < 0 || a >= len(m.verts) || b < 0 || b >= len(m.verts) {
		return -1, false
	}
	key := edgeKey(a, b)
	for _, eid := range m.verts[a].edges {
		if m.edges[eid].key == key {
			return eid, true
		}
	}
	return -1, false
}

// FaceOf returns the id of the face with vertices a, b and c in any order.
func (m *Mesh) FaceOf(a, b, c int) (int, bool) {
	eid, ok := m.EdgeBetween(a, b)
	if !ok {
		return -1, false
	}
	key := faceKey([3]int{a, b, c})
	for _, fid := range m.edges[eid].faces {
		if m.faces[fid].key == key {
			return fid, true
		}
	}
	return -1, false
}

// VertexFaces returns the ids of faces incident to vertex vid in ascending order.
func (m *Mesh) VertexFaces(vid int) ([]int, error) {
	v, err := m.VertexByID(vid)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]struct{})
	var faces []int
	for _, eid := range v.edges {
		for _, fid := range m.edges[eid].faces {
			if _, ok := seen[fid]; !ok {
				seen[fid] = struct{}{}
				faces = append(faces, fid)
			}
		}
	}
	sort.Ints(faces)
	return faces, nil
}

// Bounds returns the bounding box of all vertex positions.
func (m *Mesh) Bounds() r3.Box {
	bb := d3.Box{Min: m.position(0), Max: m.position(0)}
	for i := 1; i < len(m.verts); i++ {
		bb = bb.Include(m.position(i))
	}
	return r3.Box(bb)
}

// Summary holds entity counts of a mesh.
type Summary struct {
	Vertices, Tets, Faces, Edges int

	BoundaryVertices, BoundaryEdges, BoundaryFaces int
	// Reoriented is the number of tetrahedra reordered by orientation checking.
	Reoriented int
}

// Summary counts the mesh's entities.
func (m *Mesh) Summary() Summary {
	s := Summary{
		Vertices:   len(m.verts),
		Tets:       len(m.tets),
		Faces:      len(m.faces),
		Edges:      len(m.edges),
		Reoriented: m.reoriented,
	}
	for i := range m.verts {
		if m.verts[i].boundary {
			s.BoundaryVertices++
		}
	}
	for i := range m.edges {
		if m.edges[i].boundary {
			s.BoundaryEdges++
		}
	}
	for i := range m.faces {
		if m.faces[i].boundary {
			s.BoundaryFaces++
		}
	}
	return s
}
