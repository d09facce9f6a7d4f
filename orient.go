package tetmesh

import "github.com/soypat/tetmesh/internal/d3"

// orientTet returns the tetrahedron's vertex ids ordered so that its signed
// volume is non-negative and whether a swap was needed. Degenerate
// tetrahedra are returned unchanged.
func (m *Mesh) orientTet(v [4]int) ([4]int, bool) {
	vol := d3.TetraVolume6(m.position(v[0]), m.position(v[1]), m.position(v[2]), m.position(v[3]))
	if vol < 0 {
		v[2], v[3] = v[3], v[2]
		return v, true
	}
	return v, false
}

// TetVolume returns the signed volume of tetrahedron tid for its stored vertex order.
func (m *Mesh) TetVolume(tid int) (float64, error) {
	if tid < 0 || tid >= len(m.tets) {
		return 0, configErrorf("tet id %d outside [0,%d)", tid, len(m.tets))
	}
	v := m.tets[tid].verts
	return d3.TetraVolume6(m.position(v[0]), m.position(v[1]), m.position(v[2]), m.position(v[3])) / 6, nil
}

// Reoriented returns the number of tetrahedra whose vertex order was changed
// by orientation checking during the build.
func (m *Mesh) Reoriented() int { return m.reoriented }
