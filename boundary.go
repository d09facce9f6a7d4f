package tetmesh

// classifyBoundary marks faces with a single owner as boundary along with
// the edges and vertices of their owning half-face. Running it again yields
// the same flags.
func (m *Mesh) classifyBoundary() {
	for fid := range m.faces {
		f := &m.faces[fid]
		if (f.left < 0) == (f.right < 0) {
			continue
		}
		f.boundary = true
		hid := f.left
		if hid < 0 {
			hid = f.right
		}
		hf := &m.halfFaces[hid]
		for i := 0; i < 3; i++ {
			e := &m.edges[hf.edges[i]]
			e.boundary = true
			m.verts[e.key[0]].boundary = true
			m.verts[e.key[1]].boundary = true
		}
	}
}
