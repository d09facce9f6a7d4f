package tetmesh

import "sort"

// halfFaceOrder lists the local vertices of each half-face in winding order.
// Half-face k omits local vertex 3-k. For a tetrahedron with positive signed
// volume every half-face normal points out of the tetrahedron.
var halfFaceOrder = [4][3]int{
	{0, 2, 1}, // omits v3
	{0, 1, 3}, // omits v2
	{0, 3, 2}, // omits v1
	{1, 2, 3}, // omits v0
}

// faceKey returns the vertex ids sorted ascending.
func faceKey(v [3]int) [3]int {
	if v[0] > v[1] {
		v[0], v[1] = v[1], v[0]
	}
	if v[1] > v[2] {
		v[1], v[2] = v[2], v[1]
	}
	if v[0] > v[1] {
		v[0], v[1] = v[1], v[0]
	}
	return v
}

func lessKey(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// indexHalfFaces generates the four half-faces of tet tid and pairs them with
// previously generated half-faces sharing the same vertex set.
func (b *Builder) indexHalfFaces(tid int) {
	m := b.mesh
	s := b.scratch
	tet := &m.tets[tid]
	for k, order := range halfFaceOrder {
		hid := 4*tid + k
		tet.halfFaces[k] = hid
		hf := &m.halfFaces[hid]
		*hf = HalfFace{id: hid, tet: tid, twin: -1, face: -1, edges: [3]int{-1, -1, -1}}
		for i, local := range order {
			hf.verts[i] = tet.verts[local]
		}
		key := faceKey(hf.verts)
		fid, ok := s.faceByKey[key]
		if !ok {
			fid = len(m.faces)
			m.faces = append(m.faces, Face{id: fid, key: key, left: hid, right: -1, edges: [3]int{-1, -1, -1}})
			s.faceByKey[key] = fid
			hf.face = fid
			continue
		}
		f := &m.faces[fid]
		if f.right >= 0 {
			// Third or later claim on a facet. Reported once all tets are seen.
			s.claims[fid] = append(s.claims[fid], tid)
			continue
		}
		f.right = hid
		hf.face = fid
		hf.twin = f.left
		m.halfFaces[f.left].twin = hid
	}
}

// nonManifoldError returns a TopologyError for the lowest keyed facet with
// more than two claims, or nil if every facet is manifold.
func (b *Builder) nonManifoldError() error {
	claims := b.scratch.claims
	if len(claims) == 0 {
		return nil
	}
	m := b.mesh
	worst := -1
	for fid := range claims {
		if worst < 0 || lessKey(m.faces[fid].key, m.faces[worst].key) {
			worst = fid
		}
	}
	f := &m.faces[worst]
	tets := []int{m.halfFaces[f.left].tet, m.halfFaces[f.right].tet}
	tets = append(tets, claims[worst]...)
	sort.Ints(tets)
	return &TopologyError{Key: f.key, Tets: tets, Others: len(claims) - 1}
}
