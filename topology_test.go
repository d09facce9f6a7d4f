package tetmesh_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/tetmesh"
	"github.com/soypat/tetmesh/helpers/tetgen"
	"gonum.org/v1/gonum/spatial/r3"
)

// latticeBlock returns a carved BCC block with mixed tet orientations.
func latticeBlock(t *testing.T) (positions []float64, tets []int) {
	t.Helper()
	box := r3.Box{Max: r3.Vec{X: 4, Y: 3, Z: 3}}
	nodes, tetras, err := tetgen.BCCLattice(box, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Carve out a corner so the boundary is not box shaped.
	nodes, tetras = tetgen.Carve(nodes, tetras, func(p r3.Vec) bool {
		return p.X < 2.5 || p.Y < 1.5
	})
	return tetgen.Flatten(nodes, tetras)
}

// topology is an order independent description of a mesh.
type topology struct {
	Summary        tetmesh.Summary
	Faces          map[[3]int]bool // face key to boundary flag.
	Edges          map[[2]int]bool // edge key to boundary flag.
	VertexBoundary []bool
}

func topologyOf(m *tetmesh.Mesh) topology {
	topo := topology{
		Summary: m.Summary(),
		Faces:   make(map[[3]int]bool),
		Edges:   make(map[[2]int]bool),
	}
	topo.Summary.Reoriented = 0
	for fid := 0; fid < m.NumFaces(); fid++ {
		f, _ := m.FaceByID(fid)
		topo.Faces[f.Key()] = f.Boundary()
	}
	for eid := 0; eid < m.NumEdges(); eid++ {
		e, _ := m.EdgeByID(eid)
		topo.Edges[e.Vertices()] = e.Boundary()
	}
	for vid := 0; vid < m.NumVertices(); vid++ {
		v, _ := m.VertexByID(vid)
		topo.VertexBoundary = append(topo.VertexBoundary, v.Boundary())
	}
	return topo
}

func TestBuildOrderIndependent(t *testing.T) {
	positions, tets := latticeBlock(t)
	m, err := tetmesh.Build(positions, tets, false)
	if err != nil {
		t.Fatal(err)
	}
	want := topologyOf(m)
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 4; trial++ {
		ntet := len(tets) / 4
		permuted := make([]int, 0, len(tets))
		for _, tid := range rng.Perm(ntet) {
			// Also rotate vertices within the tet, keeping it a valid 4-tuple.
			shift := rng.Intn(4)
			for k := 0; k < 4; k++ {
				permuted = append(permuted, tets[4*tid+(k+shift)%4])
			}
		}
		for _, orient := range []bool{false, true} {
			mp, err := tetmesh.Build(positions, permuted, orient)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, topologyOf(mp)); diff != "" {
				t.Fatalf("trial %d orient=%v: topology depends on tet order (-want +got):\n%s", trial, orient, diff)
			}
		}
	}
}

func TestBoundaryPropagation(t *testing.T) {
	positions, tets := latticeBlock(t)
	m, err := tetmesh.Build(positions, tets, true)
	if err != nil {
		t.Fatal(err)
	}
	s := m.Summary()
	if s.BoundaryFaces == 0 || s.BoundaryFaces == s.Faces {
		t.Fatalf("lattice should have interior and boundary faces: %+v", s)
	}
	for fid := 0; fid < m.NumFaces(); fid++ {
		f, _ := m.FaceByID(fid)
		owners := 0
		if f.Left() >= 0 {
			owners++
		}
		if f.Right() >= 0 {
			owners++
		}
		if owners == 0 {
			t.Fatalf("face %d has no owner", fid)
		}
		if f.Boundary() != (owners == 1) {
			t.Errorf("face %d with %d owners has boundary=%v", fid, owners, f.Boundary())
		}
	}
	for eid := 0; eid < m.NumEdges(); eid++ {
		e, _ := m.EdgeByID(eid)
		boundaryFaces := 0
		for _, fid := range e.Faces() {
			f, _ := m.FaceByID(fid)
			if f.Boundary() {
				boundaryFaces++
			}
		}
		if e.Boundary() != (boundaryFaces > 0) {
			t.Errorf("edge %d with %d boundary faces has boundary=%v", eid, boundaryFaces, e.Boundary())
		}
		// The boundary of a tet complex is closed.
		if boundaryFaces%2 != 0 {
			t.Errorf("edge %d has odd number of boundary faces %d", eid, boundaryFaces)
		}
	}
	for vid := 0; vid < m.NumVertices(); vid++ {
		v, _ := m.VertexByID(vid)
		boundaryEdges := 0
		for _, eid := range v.Edges() {
			e, _ := m.EdgeByID(eid)
			if e.Boundary() {
				boundaryEdges++
			}
		}
		if v.Boundary() != (boundaryEdges > 0) {
			t.Errorf("vertex %d with %d boundary edges has boundary=%v", vid, boundaryEdges, v.Boundary())
		}
	}
}

func TestTetAdjacencyConsistent(t *testing.T) {
	positions, tets := latticeBlock(t)
	m, err := tetmesh.Build(positions, tets, false)
	if err != nil {
		t.Fatal(err)
	}
	if m.NumHalfFaces() != 4*m.NumTets() {
		t.Fatalf("got %d half-faces for %d tets", m.NumHalfFaces(), m.NumTets())
	}
	for tid := 0; tid < m.NumTets(); tid++ {
		tet, _ := m.TetByID(tid)
		v := tet.Vertices()
		for k, hid := range tet.HalfFaces() {
			hf, _ := m.HalfFaceByID(hid)
			if hf.Tet() != tid {
				t.Fatalf("half-face %d of tet %d owned by tet %d", hid, tid, hf.Tet())
			}
			for _, vid := range hf.Vertices() {
				if vid == v[3-k] {
					t.Fatalf("half-face %d of tet %d contains omitted vertex %d", k, tid, vid)
				}
			}
			if hf.Twin() >= 0 {
				twin, _ := m.HalfFaceByID(hf.Twin())
				if twin.Twin() != hid || twin.Face() != hf.Face() {
					t.Fatalf("half-face %d and twin %d disagree", hid, hf.Twin())
				}
			}
			for i, eid := range hf.Edges() {
				e, _ := m.EdgeByID(eid)
				want := [2]int{hf.Vertices()[i], hf.Vertices()[(i+1)%3]}
				if want[0] > want[1] {
					want[0], want[1] = want[1], want[0]
				}
				if e.Vertices() != want {
					t.Fatalf("half-face %d side %d is edge %v, want %v", hid, i, e.Vertices(), want)
				}
			}
		}
		seen := make(map[int]bool)
		for _, eid := range tet.Edges() {
			if seen[eid] {
				t.Fatalf("tet %d references edge %d twice", tid, eid)
			}
			seen[eid] = true
		}
	}
}

func TestOrientationFixup(t *testing.T) {
	// Negative signed volume order of the unit corner tet.
	flipped, err := tetmesh.Build(cornerPositions[:12], []int{0, 1, 3, 2}, true)
	if err != nil {
		t.Fatal(err)
	}
	if flipped.Reoriented() != 1 {
		t.Errorf("got %d reoriented tets, want 1", flipped.Reoriented())
	}
	tet, _ := flipped.TetByID(0)
	if tet.Vertices() != [4]int{0, 1, 2, 3} {
		t.Errorf("got vertex order %v, want [0 1 2 3]", tet.Vertices())
	}
	vol, err := flipped.TetVolume(0)
	if err != nil {
		t.Fatal(err)
	}
	if vol <= 0 {
		t.Errorf("reoriented tet has volume %g", vol)
	}
	positive := tetmesh.MustBuild(cornerPositions[:12], []int{0, 1, 2, 3}, false)
	if diff := cmp.Diff(topologyOf(positive), topologyOf(flipped)); diff != "" {
		t.Errorf("orientation fix-up changed topology (-want +got):\n%s", diff)
	}
	unchecked := tetmesh.MustBuild(cornerPositions[:12], []int{0, 1, 3, 2}, false)
	tet, _ = unchecked.TetByID(0)
	if tet.Vertices() != [4]int{0, 1, 3, 2} || unchecked.Reoriented() != 0 {
		t.Error("tet reordered without orientation checking")
	}
}

func TestOrientedHalfFacesPointOutward(t *testing.T) {
	positions, tets := latticeBlock(t)
	m, err := tetmesh.Build(positions, tets, true)
	if err != nil {
		t.Fatal(err)
	}
	if m.Reoriented() == 0 {
		t.Fatal("lattice fixture expected to contain negatively oriented tets")
	}
	pos := func(vid int) r3.Vec {
		v, _ := m.VertexByID(vid)
		return v.Position()
	}
	for tid := 0; tid < m.NumTets(); tid++ {
		vol, _ := m.TetVolume(tid)
		if vol <= 0 {
			t.Fatalf("tet %d has volume %g after orientation check", tid, vol)
		}
		tet, _ := m.TetByID(tid)
		for k, hid := range tet.HalfFaces() {
			hf, _ := m.HalfFaceByID(hid)
			v := hf.Vertices()
			n := r3.Cross(r3.Sub(pos(v[1]), pos(v[0])), r3.Sub(pos(v[2]), pos(v[0])))
			opposite := pos(tet.Vertices()[3-k])
			if r3.Dot(n, r3.Sub(opposite, pos(v[0]))) >= 0 {
				t.Fatalf("half-face %d of tet %d points inward", k, tid)
			}
			if hf.Twin() < 0 {
				continue
			}
			twin, _ := m.HalfFaceByID(hf.Twin())
			if !reversedWinding(v, twin.Vertices()) {
				t.Fatalf("half-face %d %v and twin %v wound the same way", hid, v, twin.Vertices())
			}
		}
	}
}

// reversedWinding reports whether b traverses the triangle a in the opposite direction.
func reversedWinding(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if b[i] == a[0] {
			return b[(i+1)%3] == a[2] && b[(i+2)%3] == a[1]
		}
	}
	return false
}

func TestBoundarySurface(t *testing.T) {
	positions, tets := latticeBlock(t)
	m, err := tetmesh.Build(positions, tets, true)
	if err != nil {
		t.Fatal(err)
	}
	surface := m.BoundarySurface()
	if len(surface) != m.Summary().BoundaryFaces {
		t.Fatalf("got %d surface triangles, want %d", len(surface), m.Summary().BoundaryFaces)
	}
	// Divergence theorem: a closed outward surface encloses the mesh volume.
	var volume, enclosed float64
	for tid := 0; tid < m.NumTets(); tid++ {
		vol, _ := m.TetVolume(tid)
		volume += vol
	}
	for _, tri := range surface {
		enclosed += r3.Dot(tri[0], r3.Cross(tri[1], tri[2])) / 6
	}
	if math.Abs(volume-enclosed) > 1e-9 {
		t.Errorf("surface encloses %g, tets add up to %g", enclosed, volume)
	}
}

func TestNearestVertex(t *testing.T) {
	m := tetmesh.MustBuild(cornerPositions[:15], []int{0, 1, 2, 3, 1, 2, 3, 4}, false)
	for _, test := range []struct {
		p    r3.Vec
		want int
	}{
		{p: r3.Vec{X: 0.9, Y: 0.1}, want: 1},
		{p: r3.Vec{X: -1, Y: -1, Z: -1}, want: 0},
		{p: r3.Vec{X: 0.1, Y: 0.1, Z: 0.7}, want: 3},
		{p: r3.Vec{X: 5, Y: 5, Z: 5}, want: 4},
	} {
		got, dist := m.NearestVertex(test.p)
		if got != test.want {
			t.Errorf("nearest to %v: got vertex %d, want %d", test.p, got, test.want)
		}
		v, _ := m.VertexByID(got)
		if d := r3.Norm(r3.Sub(v.Position(), test.p)); math.Abs(d-dist) > 1e-12 {
			t.Errorf("nearest to %v: got distance %g, want %g", test.p, dist, d)
		}
	}
	bb := m.Bounds()
	if bb.Min != (r3.Vec{}) || bb.Max != (r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("got bounds %v", bb)
	}
	pos := m.VertPos()
	if r, c := pos.Dims(); r != 3 || c != 5 {
		t.Errorf("got position matrix %dx%d, want 3x5", r, c)
	}
	if pos.At(2, 3) != 1 {
		t.Errorf("got z of vertex 3 %g, want 1", pos.At(2, 3))
	}
}
