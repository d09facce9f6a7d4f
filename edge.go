package tetmesh

// tetEdgeLocal lists the local vertex pairs of a tetrahedron's six edges.
var tetEdgeLocal = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

func edgeKey(a, b int) [2]int {
	if a > b {
		return [2]int{b, a}
	}
	return [2]int{a, b}
}

// indexEdges derives the unique edges of every face. It must run after all
// faces of the mesh have been generated.
func (b *Builder) indexEdges() {
	m := b.mesh
	for fid := range m.faces {
		f := &m.faces[fid]
		for _, hid := range [2]int{f.left, f.right} {
			if hid < 0 {
				continue
			}
			hf := &m.halfFaces[hid]
			for i := 0; i < 3; i++ {
				hf.edges[i] = b.edgeOf(hf.verts[i], hf.verts[(i+1)%3])
			}
		}
		owner := f.left
		if owner < 0 {
			owner = f.right
		}
		f.edges = m.halfFaces[owner].edges
		for _, eid := range f.edges {
			m.edges[eid].faces = append(m.edges[eid].faces, fid)
		}
	}
	for tid := range m.tets {
		t := &m.tets[tid]
		for j, pair := range tetEdgeLocal {
			t.edges[j] = b.scratch.edgeByKey[edgeKey(t.verts[pair[0]], t.verts[pair[1]])]
		}
	}
}

// edgeOf returns the id of the edge joining a and b, creating it on first use.
func (b *Builder) edgeOf(va, vb int) int {
	m := b.mesh
	key := edgeKey(va, vb)
	if eid, ok := b.scratch.edgeByKey[key]; ok {
		return eid
	}
	eid := len(m.edges)
	m.edges = append(m.edges, Edge{id: eid, key: key})
	b.scratch.edgeByKey[key] = eid
	m.verts[key[0]].edges = append(m.verts[key[0]].edges, eid)
	m.verts[key[1]].edges = append(m.verts[key[1]].edges, eid)
	return eid
}
